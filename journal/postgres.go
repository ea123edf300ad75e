package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	models "retail-inventory/model"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations.sql
var migrationSQL string

// PostgresJournal writes each settled order and its lines to Postgres.
type PostgresJournal struct {
	DB     *sql.DB
	logger *zap.Logger
}

func NewPostgresJournal(dsn string, logger *zap.Logger) (*PostgresJournal, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewPostgresJournalWithDB(db, logger), nil
}

// NewPostgresJournalWithDB wraps an already opened database.
func NewPostgresJournalWithDB(db *sql.DB, logger *zap.Logger) *PostgresJournal {
	return &PostgresJournal{DB: db, logger: logger}
}

func (j *PostgresJournal) Close() error { return j.DB.Close() }

// log tolerates journals built as a literal without a logger.
func (j *PostgresJournal) log() *zap.Logger {
	if j.logger == nil {
		return zap.NewNop()
	}
	return j.logger
}

// Migrate creates the orders and order_items tables if they are missing.
func (j *PostgresJournal) Migrate(ctx context.Context) error {
	if _, err := j.DB.ExecContext(ctx, migrationSQL); err != nil {
		return fmt.Errorf("running journal migrations: %w", err)
	}
	j.log().Debug("journal tables ready")
	return nil
}

// RecordOrder inserts the order and all of its lines in one transaction.
// Failed lines are stored with their error text and a zero amount.
func (j *PostgresJournal) RecordOrder(ctx context.Context, order models.Order) error {
	tx, err := j.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// ensure rollback on any early return
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, total, requested, fulfilled, created_at) VALUES ($1,$2,$3,$4,$5)`,
		order.ID.String(), order.Total.String(), order.Requested, order.Fulfilled, order.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting order %s: %w", order.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (order_id, product, quantity, amount, promotion, error) VALUES ($1,$2,$3,$4,$5,$6)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, line := range order.Lines {
		if _, err := stmt.ExecContext(ctx,
			order.ID.String(), line.Product, line.Quantity, line.Amount.String(),
			nullString(line.Promotion), errorText(line.Err),
		); err != nil {
			return fmt.Errorf("inserting line %s of order %s: %w", line.Product, order.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	j.log().Debug("order journaled", zap.String("order_id", order.ID.String()), zap.Int("lines", len(order.Lines)))
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func errorText(err error) sql.NullString {
	if err == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: err.Error(), Valid: true}
}
