package journal

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	models "retail-inventory/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func sampleOrder() models.Order {
	return models.Order{
		ID: uuid.MustParse("6f1c2a52-3d4e-4f6a-9b7c-1d2e3f4a5b6c"),
		Lines: []models.OrderLine{
			{Product: "Gadget", Quantity: 6, Amount: decimal.NewFromInt(200), Promotion: "Buy two, get one free"},
			{Product: "Widget", Quantity: 4, Amount: decimal.Zero, Err: models.NewOutOfStock("Widget", 1, 4)},
		},
		Total:     decimal.NewFromInt(200),
		Requested: 10,
		Fulfilled: 6,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

const (
	insertOrder = `INSERT INTO orders (id, total, requested, fulfilled, created_at) VALUES ($1,$2,$3,$4,$5)`
	insertLine  = `INSERT INTO order_items (order_id, product, quantity, amount, promotion, error) VALUES ($1,$2,$3,$4,$5,$6)`
)

func TestRecordOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	// built as a literal, without a logger
	j := &PostgresJournal{DB: db}
	order := sampleOrder()
	id := order.ID.String()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WithArgs(id, "200", 10, 6, order.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Prepare insert order_items, one exec per line
	mock.ExpectPrepare(regexp.QuoteMeta(insertLine))
	mock.ExpectExec(regexp.QuoteMeta(insertLine)).
		WithArgs(id, "Gadget", 6, "200", "Buy two, get one free", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertLine)).
		WithArgs(id, "Widget", 4, "0", nil, "Stock of Widget is insufficient (1) to buy 4").
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	if err := j.RecordOrder(context.Background(), order); err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordOrder_LineFailureRollsBack(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	j := &PostgresJournal{DB: db}
	order := sampleOrder()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(insertLine))
	mock.ExpectExec(regexp.QuoteMeta(insertLine)).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := j.RecordOrder(context.Background(), order)
	if !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("expected ErrConnDone, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordOrder_BeginFails(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	j := &PostgresJournal{DB: db}
	boom := errors.New("boom")
	mock.ExpectBegin().WillReturnError(boom)

	if err := j.RecordOrder(context.Background(), sampleOrder()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	j := &PostgresJournal{DB: db}
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS orders`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := j.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordOrder_LogsJournaledOrder(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	core, logs := observer.New(zapcore.DebugLevel)
	j := NewPostgresJournalWithDB(db, zap.New(core))
	order := sampleOrder()
	order.Lines = order.Lines[:1]

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(insertOrder)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectPrepare(regexp.QuoteMeta(insertLine))
	mock.ExpectExec(regexp.QuoteMeta(insertLine)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := j.RecordOrder(context.Background(), order); err != nil {
		t.Fatalf("RecordOrder failed: %v", err)
	}
	entries := logs.FilterMessage("order journaled").All()
	if len(entries) != 1 {
		t.Fatalf("expected one journaled log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["order_id"]; got != order.ID.String() {
		t.Fatalf("unexpected order_id field %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
