package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/datalyr/foresight-go/internal/telemetry"
)

// TracedDB wraps a pgx connection pool and records a client span per
// statement. It satisfies DatabasePool, so repositories can run over it
// without knowing about tracing.
type TracedDB struct {
	Pool *pgxpool.Pool
}

// NewTracedDB creates a new traced database connection.
func NewTracedDB(pool *pgxpool.Pool) *TracedDB {
	return &TracedDB{
		Pool: pool,
	}
}

func startStatementSpan(ctx context.Context, operation, sql string) (context.Context, trace.Span) {
	tracer := telemetry.GetDatabaseTracer()
	ctx, span := tracer.Start(ctx, operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", sql),
	)
	return ctx, span
}

func endStatementSpan(span trace.Span, start time.Time, err error) {
	span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Query executes a query that returns rows. The span covers the call, not
// the consumption of the returned rows.
func (db *TracedDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := startStatementSpan(ctx, "db.query", sql)
	start := time.Now()
	rows, err := db.Pool.Query(ctx, sql, args...)
	endStatementSpan(span, start, err)
	return rows, err
}

// QueryRow executes a query that returns a single row.
func (db *TracedDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := startStatementSpan(ctx, "db.query_row", sql)
	start := time.Now()
	row := db.Pool.QueryRow(ctx, sql, args...)
	endStatementSpan(span, start, nil)
	return row
}

// Exec executes a query without returning rows.
func (db *TracedDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := startStatementSpan(ctx, "db.exec", sql)
	start := time.Now()
	tag, err := db.Pool.Exec(ctx, sql, args...)
	if err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	}
	endStatementSpan(span, start, err)
	return tag, err
}

// Begin starts a transaction.
func (db *TracedDB) Begin(ctx context.Context) (pgx.Tx, error) {
	ctx, span := startStatementSpan(ctx, "db.begin", "BEGIN")
	start := time.Now()
	tx, err := db.Pool.Begin(ctx)
	endStatementSpan(span, start, err)
	if err != nil {
		return nil, err
	}
	return &TracedTx{Tx: tx}, nil
}

// BeginTx starts a transaction with options.
func (db *TracedDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	ctx, span := startStatementSpan(ctx, "db.begin_tx", "BEGIN")
	start := time.Now()
	tx, err := db.Pool.BeginTx(ctx, txOptions)
	endStatementSpan(span, start, err)
	if err != nil {
		return nil, err
	}
	return &TracedTx{Tx: tx}, nil
}

// Ping verifies the connection to the database.
func (db *TracedDB) Ping(ctx context.Context) error {
	ctx, span := startStatementSpan(ctx, "db.ping", "")
	start := time.Now()
	err := db.Pool.Ping(ctx)
	endStatementSpan(span, start, err)
	return err
}

// Close closes the database connection pool.
func (db *TracedDB) Close() {
	db.Pool.Close()
}

// TracedTx wraps a database transaction with per-statement spans.
type TracedTx struct {
	Tx pgx.Tx
}

// Query executes a query within the transaction.
func (tx *TracedTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := startStatementSpan(ctx, "db.tx.query", sql)
	start := time.Now()
	rows, err := tx.Tx.Query(ctx, sql, args...)
	endStatementSpan(span, start, err)
	return rows, err
}

// QueryRow executes a query that returns a single row within the transaction.
func (tx *TracedTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := startStatementSpan(ctx, "db.tx.query_row", sql)
	start := time.Now()
	row := tx.Tx.QueryRow(ctx, sql, args...)
	endStatementSpan(span, start, nil)
	return row
}

// Exec executes a query without returning rows within the transaction.
func (tx *TracedTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := startStatementSpan(ctx, "db.tx.exec", sql)
	start := time.Now()
	tag, err := tx.Tx.Exec(ctx, sql, args...)
	if err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	}
	endStatementSpan(span, start, err)
	return tag, err
}

// Commit commits the transaction.
func (tx *TracedTx) Commit(ctx context.Context) error {
	ctx, span := startStatementSpan(ctx, "db.tx.commit", "COMMIT")
	start := time.Now()
	err := tx.Tx.Commit(ctx)
	endStatementSpan(span, start, err)
	return err
}

// Rollback rolls back the transaction.
func (tx *TracedTx) Rollback(ctx context.Context) error {
	ctx, span := startStatementSpan(ctx, "db.tx.rollback", "ROLLBACK")
	start := time.Now()
	err := tx.Tx.Rollback(ctx)
	endStatementSpan(span, start, err)
	return err
}

// Begin starts a nested transaction.
func (tx *TracedTx) Begin(ctx context.Context) (pgx.Tx, error) {
	ctx, span := startStatementSpan(ctx, "db.tx.begin", "SAVEPOINT")
	start := time.Now()
	nestedTx, err := tx.Tx.Begin(ctx)
	endStatementSpan(span, start, err)
	if err != nil {
		return nil, err
	}
	return &TracedTx{Tx: nestedTx}, nil
}

// Conn returns the underlying connection.
func (tx *TracedTx) Conn() *pgx.Conn {
	return tx.Tx.Conn()
}

// CopyFrom copies data from a source into a table.
func (tx *TracedTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	ctx, span := startStatementSpan(ctx, "db.tx.copy_from", tableName.Sanitize())
	start := time.Now()
	rowsAffected, err := tx.Tx.CopyFrom(ctx, tableName, columnNames, rowSrc)
	if err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	}
	endStatementSpan(span, start, err)
	return rowsAffected, err
}

// LargeObjects returns the large object manager.
func (tx *TracedTx) LargeObjects() pgx.LargeObjects {
	return tx.Tx.LargeObjects()
}

// Prepare prepares a statement.
func (tx *TracedTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	ctx, span := startStatementSpan(ctx, "db.tx.prepare", sql)
	start := time.Now()
	stmt, err := tx.Tx.Prepare(ctx, name, sql)
	endStatementSpan(span, start, err)
	return stmt, err
}

// SendBatch sends a batch of queries.
func (tx *TracedTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	ctx, span := startStatementSpan(ctx, "db.tx.send_batch", "")
	span.SetAttributes(attribute.Int("db.batch_size", b.Len()))
	start := time.Now()
	results := tx.Tx.SendBatch(ctx, b)
	endStatementSpan(span, start, nil)
	return results
}

// RecordDatabaseError records a database error on the span in ctx, if any.
func RecordDatabaseError(ctx context.Context, err error, operation string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}
	span.SetAttributes(attribute.String("db.operation", operation))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddDatabaseSpanAttributes annotates the span in ctx with table metadata.
func AddDatabaseSpanAttributes(ctx context.Context, table string, rowsAffected int64) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String("db.table", table),
		attribute.Int64("db.rows_affected", rowsAffected),
	)
}
