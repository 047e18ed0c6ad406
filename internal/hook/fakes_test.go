package hook

import (
	"context"
	"sync"

	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

type fakeReader struct {
	author       string
	authorErr    error
	changes      []domain.ChangeEntry
	changesErr   error
	authorCalls  int
	changesCalls int
}

func (f *fakeReader) Author(ctx context.Context, tx string) (string, error) {
	f.authorCalls++
	return f.author, f.authorErr
}

func (f *fakeReader) Changes(ctx context.Context, tx string) ([]domain.ChangeEntry, error) {
	f.changesCalls++
	return f.changes, f.changesErr
}

type fakeAuthority struct {
	allowed     bool
	reasons     []string
	checkErr    error
	errorsErr   error
	checkCalls  int
	errorsCalls int
	lastOp      *domain.CommitOperation
	lastItems   map[string]domain.OperationItem
}

func (f *fakeAuthority) HasWriteAccess(ctx context.Context, op *domain.CommitOperation, items map[string]domain.OperationItem) (bool, error) {
	f.checkCalls++
	f.lastOp = op
	f.lastItems = items
	return f.allowed, f.checkErr
}

func (f *fakeAuthority) AccessErrors(ctx context.Context) ([]string, error) {
	f.errorsCalls++
	return f.reasons, f.errorsErr
}

type fakeDecisions struct {
	mu        sync.Mutex
	created   []*domain.Decision
	createErr error
}

func (f *fakeDecisions) Create(ctx context.Context, d *domain.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, d)
	return nil
}

func (f *fakeDecisions) ListRecent(ctx context.Context, filter ports.DecisionFilter) ([]*domain.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, nil
}

type fakeMetrics struct {
	exported []*ports.DecisionMetrics
	closed   bool
}

func (f *fakeMetrics) ExportDecision(ctx context.Context, m *ports.DecisionMetrics) error {
	f.exported = append(f.exported, m)
	return nil
}

func (f *fakeMetrics) Close(ctx context.Context) error {
	f.closed = true
	return nil
}
