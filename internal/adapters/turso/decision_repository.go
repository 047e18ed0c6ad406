package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

const defaultListLimit = 50

// decidedAtLayout has a fixed width so decided_at sorts chronologically as text.
const decidedAtLayout = "2006-01-02T15:04:05.000000Z"

type DecisionRepository struct {
	db *sql.DB
}

func NewDecisionRepository(db *sql.DB) *DecisionRepository {
	return &DecisionRepository{db: db}
}

// Create stores a decision. A missing ID or timestamp is filled in.
func (r *DecisionRepository) Create(ctx context.Context, d *domain.Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}

	reasons := d.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	reasonsJSON, err := json.Marshal(reasons)
	if err != nil {
		return fmt.Errorf("failed to encode reasons: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO decisions (
			id, repo_id, repo_path, transaction_name, username, outcome,
			item_count, reasons, exit_code, duration_ms, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.RepositoryID, d.RepoPath, d.Transaction, d.Username, string(d.Outcome),
		d.ItemCount, string(reasonsJSON), d.ExitCode, d.DurationMs, d.DecidedAt.UTC().Format(decidedAtLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

// ListRecent returns decisions newest first.
func (r *DecisionRepository) ListRecent(ctx context.Context, filter ports.DecisionFilter) ([]*domain.Decision, error) {
	var where []string
	var args []any
	if filter.RepositoryID != "" {
		where = append(where, "repo_id = ?")
		args = append(args, filter.RepositoryID)
	}
	if filter.Username != "" {
		where = append(where, "username = ?")
		args = append(args, filter.Username)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT id, repo_id, repo_path, transaction_name, username, outcome,
		item_count, reasons, exit_code, duration_ms, decided_at FROM decisions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY decided_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*domain.Decision
	for rows.Next() {
		var d domain.Decision
		var outcome, reasonsJSON, decidedAt string
		if err := rows.Scan(&d.ID, &d.RepositoryID, &d.RepoPath, &d.Transaction, &d.Username, &outcome,
			&d.ItemCount, &reasonsJSON, &d.ExitCode, &d.DurationMs, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}

		d.Outcome = domain.DecisionOutcome(outcome)
		if err := json.Unmarshal([]byte(reasonsJSON), &d.Reasons); err != nil {
			return nil, fmt.Errorf("failed to decode reasons of %s: %w", d.ID, err)
		}
		if d.DecidedAt, err = parseDecidedAt(decidedAt); err != nil {
			return nil, fmt.Errorf("failed to parse decided_at of %s: %w", d.ID, err)
		}
		decisions = append(decisions, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}
	return decisions, nil
}

// parseDecidedAt accepts the stored fixed-width text as well as the
// RFC3339Nano form the driver produces when it hands back a time value.
func parseDecidedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
