package ledger

import (
	"context"

	"github.com/huangsam/seobench/internal/contract"
	"github.com/huangsam/seobench/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of LedgerStore for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.LedgerStore = &MockStore{} // Compile-time check

// RecordRun implements the LedgerStore interface.
func (m *MockStore) RecordRun(ctx context.Context, run schema.RunRecord, counts []schema.IssueCountRecord) error {
	args := m.Called(ctx, run, counts)
	return args.Error(0)
}

// ListRuns implements the LedgerStore interface.
func (m *MockStore) ListRuns(ctx context.Context) ([]schema.RunRecord, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// ListIssueCounts implements the LedgerStore interface.
func (m *MockStore) ListIssueCounts(ctx context.Context) ([]schema.IssueCountRecord, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]schema.IssueCountRecord)
	return counts, args.Error(1)
}

// GetStatus implements the LedgerStore interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.LedgerStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.LedgerStatus), args.Error(1)
}

// Clear implements the LedgerStore interface.
func (m *MockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the LedgerStore interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
