package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

const dateLayout = "2006-01-02"

// StatementService is what the handlers need from the ledger.
type StatementService interface {
	StatementJSON(ctx context.Context, q models.ReportQuery) ([]byte, error)
	Diagnose(ctx context.Context, q models.ReportQuery) (models.Diagnostics, error)
	IngestEntries(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, error)
	Invalidate(ctx context.Context, scope string) error
}

type Handler struct {
	svc    StatementService
	logger *zap.Logger
}

func NewHandler(svc StatementService, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	Error(w, status, err.Error())
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func parseDate(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, badRequest("%s must be YYYY-MM-DD", name)
	}
	return &t, nil
}

// parseQuery reads the common statement parameters. mes selects a whole
// calendar month and cannot be combined with inicio/fim.
func parseQuery(r *http.Request, statement models.StatementType) (models.ReportQuery, error) {
	params := r.URL.Query()
	q := models.ReportQuery{
		Statement:    statement,
		Scope:        params.Get("empresa"),
		VerticalBase: params.Get("base"),
	}
	if q.Scope == "" {
		return q, badRequest("empresa is required")
	}

	var err error
	if mes := params.Get("mes"); mes != "" {
		if params.Get("inicio") != "" || params.Get("fim") != "" {
			return q, badRequest("mes cannot be combined with inicio/fim")
		}
		start, end, err := models.ParseMonth(mes)
		if err != nil {
			return q, badRequest("mes must be YYYY-MM")
		}
		q.From, q.To = &start, &end
	} else {
		if q.From, err = parseDate("inicio", params.Get("inicio")); err != nil {
			return q, err
		}
		if q.To, err = parseDate("fim", params.Get("fim")); err != nil {
			return q, err
		}
		if q.From != nil && q.To != nil && q.To.Before(*q.From) {
			return q, badRequest("fim is before inicio")
		}
	}

	if q.Series, err = models.ParseSeriesSelection(params.Get("serie")); err != nil {
		return q, badRequest("%v", err)
	}
	if v := params.Get("detalhar"); v != "" {
		if q.Expand, err = strconv.ParseBool(v); err != nil {
			return q, badRequest("detalhar must be true or false")
		}
	}
	return q, nil
}

// GetStatement handles GET /api/v1/statements/{tipo}.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	statement, err := models.ParseStatementType(chi.URLParam(r, "tipo"))
	if err != nil {
		h.fail(w, r, badRequest("%v", err))
		return
	}
	q, err := parseQuery(r, statement)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data, err := h.svc.StatementJSON(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	Document(w, http.StatusOK, data)
}

// GetUnmapped handles GET /api/v1/diagnostics/unmapped.
func (h *Handler) GetUnmapped(w http.ResponseWriter, r *http.Request) {
	statement := models.StatementDRE
	if tipo := r.URL.Query().Get("tipo"); tipo != "" {
		var err error
		if statement, err = models.ParseStatementType(tipo); err != nil {
			h.fail(w, r, badRequest("%v", err))
			return
		}
	}
	q, err := parseQuery(r, statement)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	d, err := h.svc.Diagnose(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, d)
}

type entryRequest struct {
	ID             string          `json:"id"`
	Scope          string          `json:"empresa"`
	Classification string          `json:"classificacao"`
	Name           string          `json:"nome"`
	Amount         decimal.Decimal `json:"valor"`
	Date           string          `json:"data"`
	Origin         string          `json:"origem"`
}

type ingestRequest struct {
	Entries []entryRequest `json:"lancamentos"`
}

type ingestResponse struct {
	Ingested int      `json:"ingeridos"`
	IDs      []string `json:"ids"`
}

// IngestEntries handles POST /api/v1/ledger/entries.
func (h *Handler) IngestEntries(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entries := make([]models.LedgerEntry, 0, len(req.Entries))
	for i, e := range req.Entries {
		date, err := parseDate(fmt.Sprintf("lancamentos[%d].data", i), e.Date)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		entry := models.LedgerEntry{
			ID:             e.ID,
			Scope:          e.Scope,
			Classification: e.Classification,
			Name:           e.Name,
			Amount:         e.Amount,
			Origin:         e.Origin,
		}
		if date != nil {
			entry.Date = *date
		}
		entries = append(entries, entry)
	}

	stored, err := h.svc.IngestEntries(r.Context(), entries)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := ingestResponse{Ingested: len(stored), IDs: make([]string, 0, len(stored))}
	for _, e := range stored {
		resp.IDs = append(resp.IDs, e.ID)
	}
	JSON(w, http.StatusCreated, resp)
}

// InvalidateCache handles POST /api/v1/cache/invalidate.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("empresa")
	if scope == "" {
		h.fail(w, r, badRequest("empresa is required"))
		return
	}
	if err := h.svc.Invalidate(r.Context(), scope); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("cache invalidated", zap.String("scope", scope), zap.String("source", "api"))
	JSON(w, http.StatusOK, map[string]string{"empresa": scope})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
