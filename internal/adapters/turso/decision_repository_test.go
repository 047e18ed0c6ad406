package turso_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/emiliopalmerini/xsvn/internal/adapters/turso"
	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

func TestDecisionRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewDecisionRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := []*domain.Decision{
		{RepositoryID: "repo", Transaction: "1-1", Username: "alice", Outcome: domain.OutcomeAllowed, ItemCount: 3, DecidedAt: base},
		{RepositoryID: "repo", Transaction: "2-1", Username: "bob", Outcome: domain.OutcomeDenied, ItemCount: 1,
			Reasons: []string{"no permission on trunk/bar"}, ExitCode: 6, DecidedAt: base.Add(time.Minute)},
		{RepositoryID: "other", Transaction: "3-2", Username: "alice", Outcome: domain.OutcomeAllowlisted, DecidedAt: base.Add(2 * time.Minute)},
	}
	for _, d := range seed {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if d.ID == "" {
			t.Error("expected Create to assign an ID")
		}
	}

	all, err := repo.ListRecent(ctx, ports.DecisionFilter{})
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(all))
	}
	if all[0].Transaction != "3-2" || all[2].Transaction != "1-1" {
		t.Errorf("expected newest first, got %s ... %s", all[0].Transaction, all[2].Transaction)
	}

	denied := all[1]
	if denied.Outcome != domain.OutcomeDenied || denied.ExitCode != 6 {
		t.Errorf("unexpected denied record: %#v", denied)
	}
	if len(denied.Reasons) != 1 || denied.Reasons[0] != "no permission on trunk/bar" {
		t.Errorf("unexpected reasons: %#v", denied.Reasons)
	}
	if !denied.DecidedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("unexpected decided_at: %v", denied.DecidedAt)
	}
	if all[2].Reasons == nil || len(all[2].Reasons) != 0 {
		t.Errorf("expected empty reasons, got %#v", all[2].Reasons)
	}

	byUser, err := repo.ListRecent(ctx, ports.DecisionFilter{Username: "alice", RepositoryID: "repo"})
	if err != nil {
		t.Fatalf("ListRecent by user failed: %v", err)
	}
	if len(byUser) != 1 || byUser[0].Transaction != "1-1" {
		t.Errorf("unexpected filtered result: %#v", byUser)
	}

	limited, err := repo.ListRecent(ctx, ports.DecisionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListRecent with limit failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 decisions, got %d", len(limited))
	}
}

func TestDecisionRepository_DecidedAtFractions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewDecisionRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(120 * time.Millisecond),
		base.Add(123456 * time.Microsecond),
		base.Add(time.Second + 100*time.Microsecond),
	}
	for i, at := range times {
		d := &domain.Decision{RepositoryID: "repo", Transaction: fmt.Sprintf("%d-1", i), Username: "alice", Outcome: domain.OutcomeAllowed, DecidedAt: at}
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.ListRecent(ctx, ports.DecisionFilter{})
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != len(times) {
		t.Fatalf("expected %d decisions, got %d", len(times), len(got))
	}
	for i, d := range got {
		want := times[len(times)-1-i]
		if !d.DecidedAt.Equal(want) {
			t.Errorf("decision %d: expected decided_at %v, got %v", i, want, d.DecidedAt)
		}
	}
}

func TestNewDB_LocalFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "audit.db")

	db, err := turso.NewDB(ctx, turso.Config{URL: "file:" + path})
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	defer db.Close()

	repo := turso.NewDecisionRepository(db.DB)
	if err := repo.Create(ctx, &domain.Decision{RepositoryID: "r", Transaction: "1-1", Username: "u", Outcome: domain.OutcomeAllowed}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestNewDB_RequiresURL(t *testing.T) {
	if _, err := turso.NewDB(context.Background(), turso.Config{}); err == nil {
		t.Fatal("expected error without URL")
	}
}
