package domain

import (
	"fmt"
	"slices"
	"strings"
)

// BuildOperation converts the changed paths of a transaction into a commit
// operation keyed by path. Paths ending in "/" are directories, as svnlook
// prints them.
func BuildOperation(repositoryID, username string, entries []ChangeEntry) (*CommitOperation, error) {
	items := make(map[string]OperationItem, len(entries))

	for _, entry := range entries {
		if _, exists := items[entry.Path]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, entry.Path)
		}
		items[entry.Path] = NewOperationItem(entry)
	}

	return &CommitOperation{
		Type:         OperationCommit,
		RepositoryID: repositoryID,
		Username:     username,
		Labels:       []Label{},
		Items:        items,
	}, nil
}

// NewOperationItem describes a single changed path.
func NewOperationItem(entry ChangeEntry) OperationItem {
	item := OperationItem{
		Type:        ItemFile,
		Path:        entry.Path,
		SourceItems: []SourceItem{},
	}
	if strings.HasSuffix(entry.Path, "/") {
		item.Type = ItemDirectory
	}
	if entry.CopyFrom != nil {
		item.SourceItems = append(item.SourceItems, SourceItem{
			Path:     entry.CopyFrom.Path,
			Revision: entry.CopyFrom.Revision,
		})
	}
	return item
}

// Paths returns the item paths of the operation, sorted.
func (op *CommitOperation) Paths() []string {
	paths := make([]string, 0, len(op.Items))
	for p := range op.Items {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
