package domain

import "time"

type DecisionOutcome string

const (
	OutcomeAllowed     DecisionOutcome = "allowed"
	OutcomeAllowlisted DecisionOutcome = "allowlisted"
	OutcomeDenied      DecisionOutcome = "denied"
	OutcomeError       DecisionOutcome = "error"
)

// Decision is the audit record of one hook invocation.
type Decision struct {
	ID           string
	RepositoryID string
	RepoPath     string
	Transaction  string
	Username     string
	Outcome      DecisionOutcome
	ItemCount    int64
	Reasons      []string
	ExitCode     int
	DurationMs   int64
	DecidedAt    time.Time
}
