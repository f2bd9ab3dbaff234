package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/lib/pq"

	interfaces "github.com/sheikh-saqib/financial-statements-engine/internal/interfaces"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
)

//go:embed schema.sql
var schema string

// PostgresStore serves ledger entries, structures and mappings from
// Postgres through database/sql and the lib/pq driver.
type PostgresStore struct {
	db *sql.DB // connection pool shared by every query
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
	}
}

// Open connects with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the tables the store reads from when they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// GetStructure returns every node of the statement, inactive ones included:
// the engine needs them to tell a retired dependency from a missing one.
func (p *PostgresStore) GetStructure(ctx context.Context, statement models.StatementType, scope string) ([]models.StructureNode, error) {
	const query = `SELECT id, statement, scope, level, code, name, description, operation_type,
	order_index, parent_id, active, dependency_ids, dependency_signs
	FROM structure_nodes
	WHERE statement = $1 AND scope = $2
	ORDER BY order_index, level`

	rows, err := p.db.QueryContext(ctx, query, string(statement), scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []models.StructureNode
	for rows.Next() {
		var (
			n         models.StructureNode
			statement string
			operation string
			parentID  sql.NullString
			depIDs    []string
			depSigns  []int64
		)
		err := rows.Scan(
			&n.ID,
			&statement,
			&n.Scope,
			&n.Level,
			&n.Code,
			&n.Name,
			&n.Description,
			&operation,
			&n.Order,
			&parentID,
			&n.Active,
			pq.Array(&depIDs),
			pq.Array(&depSigns),
		)
		if err != nil {
			return nil, err
		}
		n.Statement = models.StatementType(statement)
		n.Operation = models.OperationType(operation)
		n.ParentID = parentID.String // NULL parent means a root line

		// dependency_ids and dependency_signs are parallel arrays; a missing
		// or non-negative sign adds the dependency.
		for i, id := range depIDs {
			d := models.Dependency{NodeID: id, Sign: 1}
			if i < len(depSigns) && depSigns[i] < 0 {
				d.Sign = -1
			}
			n.Dependencies = append(n.Dependencies, d)
		}
		nodes = append(nodes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (p *PostgresStore) GetMappings(ctx context.Context, scope string) ([]models.AccountMapping, error) {
	const query = `SELECT scope, classification, account FROM account_mappings
	WHERE scope = $1 ORDER BY classification`

	rows, err := p.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []models.AccountMapping
	for rows.Next() {
		var m models.AccountMapping
		if err := rows.Scan(&m.Scope, &m.Classification, &m.Account); err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (p *PostgresStore) GetEntries(ctx context.Context, filter models.LedgerFilter) ([]models.LedgerEntry, error) {
	const query = `SELECT id, scope, classification, name, amount, entry_date, origin
	FROM ledger_entries
	WHERE scope = $1
	AND ($2::date IS NULL OR entry_date >= $2)
	AND ($3::date IS NULL OR entry_date <= $3)
	ORDER BY entry_date, id`

	// Open bounds are sent as NULL so one statement covers every filter shape.
	rows, err := p.db.QueryContext(ctx, query, filter.Scope, nullTime(filter.From), nullTime(filter.To))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Scope,
			&entry.Classification,
			&entry.Name,
			&entry.Amount,
			&entry.Date,
			&entry.Origin,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// SaveEntries stores a batch in one transaction; re-sent ids overwrite.
func (p *PostgresStore) SaveEntries(ctx context.Context, entries []models.LedgerEntry) (err error) {
	const query = `INSERT INTO ledger_entries (id, scope, classification, name, amount, entry_date, origin)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	ON CONFLICT (id) DO UPDATE SET scope = EXCLUDED.scope, classification = EXCLUDED.classification,
	name = EXCLUDED.name, amount = EXCLUDED.amount, entry_date = EXCLUDED.entry_date, origin = EXCLUDED.origin`

	// Begin a database transaction so the batch lands all or nothing
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Roll back on any error below; a nil err means Commit already ran
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	// Prepare once, execute per row
	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err = stmt.ExecContext(ctx, e.ID, e.Scope, e.Classification, e.Name, e.Amount, e.Date, e.Origin)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Compile-time check: ensure PostgresStore implements the store interfaces
var (
	_ interfaces.LedgerStore    = (*PostgresStore)(nil)
	_ interfaces.StructureStore = (*PostgresStore)(nil)
	_ interfaces.MappingStore   = (*PostgresStore)(nil)
)
