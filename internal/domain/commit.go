package domain

import "fmt"

// ChangeStatus is the kind of change svnlook reports for a path.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "added"
	StatusModified ChangeStatus = "modified"
	StatusDeleted  ChangeStatus = "deleted"
	StatusReplaced ChangeStatus = "replaced"
)

// ParseChangeStatus maps an svnlook status token ("A", "U", "_U", "UU", "D", "R")
// to a ChangeStatus. Only the first column (item status) is significant; a
// leading "_" means the item itself is untouched and only properties changed.
func ParseChangeStatus(token string) (ChangeStatus, error) {
	if token == "" || len(token) > 2 {
		return "", fmt.Errorf("invalid status %q", token)
	}
	if len(token) == 2 && token[1] != 'U' {
		return "", fmt.Errorf("invalid property status in %q", token)
	}

	switch token[0] {
	case 'A':
		return StatusAdded, nil
	case 'D':
		return StatusDeleted, nil
	case 'U', '_':
		return StatusModified, nil
	case 'R':
		return StatusReplaced, nil
	default:
		return "", fmt.Errorf("unknown status %q", token)
	}
}

// CopySource is the path and revision an added item was copied from.
type CopySource struct {
	Path     string
	Revision int64
}

// ChangeEntry is one changed path of a transaction.
type ChangeEntry struct {
	Path   string
	Status ChangeStatus
	// CopyFrom is only set when the reader asked for copy history and the
	// backend reported one for this path.
	CopyFrom *CopySource
}

type OperationType string

const OperationCommit OperationType = "commit"

type ItemType string

const (
	ItemFile      ItemType = "file"
	ItemDirectory ItemType = "directory"
)

// Label is a branch or tag attached to an operation. Commits checked by the
// pre-commit hook never carry labels yet.
type Label struct {
	Name string
	Type string // "branch" or "tag"
}

// SourceItem references the item a changed item was copied or renamed from.
type SourceItem struct {
	Path     string
	Revision int64
}

type OperationItem struct {
	Type        ItemType
	Path        string
	SourceItems []SourceItem
}

// CommitOperation is the normalized unit submitted to the policy authority.
type CommitOperation struct {
	Type         OperationType
	RepositoryID string
	Username     string
	Labels       []Label
	Items        map[string]OperationItem
}

// AccessVerdict is the outcome of a write-access check. Reasons is only
// meaningful when Allowed is false.
type AccessVerdict struct {
	Allowed bool
	Reasons []string
}
