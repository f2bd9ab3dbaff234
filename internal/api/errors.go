package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/sheikh-saqib/financial-statements-engine/internal/ledger"
	"github.com/sheikh-saqib/financial-statements-engine/internal/statement"
)

// errBadRequest marks malformed query parameters or bodies.
var errBadRequest = errors.New("bad request")

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, ledger.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, statement.ErrStructureNotFound):
		return http.StatusNotFound
	case errors.Is(err, statement.ErrInvalidStructure), errors.Is(err, statement.ErrCircularTotalizer):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
