package testutil

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
)

// MockPoolAdapter exposes a pgxmock pool through the query interface the
// repositories consume, so expectation-driven tests can stand in for a real
// pgxpool.
type MockPoolAdapter struct {
	mock pgxmock.PgxPoolIface
}

// NewMockPoolAdapter wraps a pgxmock pool. The returned adapter satisfies
// database.DatabasePool.
func NewMockPoolAdapter(mock pgxmock.PgxPoolIface) *MockPoolAdapter {
	return &MockPoolAdapter{mock: mock}
}

func (m *MockPoolAdapter) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return m.mock.QueryRow(ctx, sql, args...)
}

func (m *MockPoolAdapter) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	result, err := m.mock.Exec(ctx, sql, args...)
	if err == nil {
		rows := result.RowsAffected()
		return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", rows)), nil
	}
	return pgconn.CommandTag{}, err
}

func (m *MockPoolAdapter) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return m.mock.Query(ctx, sql, args...)
}
