package svnlook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

const copyMarker = "+"

// ParseChanged parses "svnlook changed" output. Each record is
// "<status><whitespace><path>"; the path is everything after the first run of
// whitespace, so paths may contain spaces. With --copy-info a "+" token
// follows the status and the next line reads "    (from <path>:r<rev>)";
// the marker is only recognized when copyInfo is set.
func ParseChanged(out string, copyInfo bool) ([]domain.ChangeEntry, error) {
	out = strings.TrimSuffix(out, "\n")
	out = strings.TrimSuffix(out, "\r")
	if out == "" {
		return []domain.ChangeEntry{}, nil
	}

	lines := strings.Split(out, "\n")
	entries := make([]domain.ChangeEntry, 0, len(lines))
	expectSource := false

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSuffix(raw, "\r")

		if expectSource {
			source, err := parseCopySource(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", domain.ErrParse, lineNo, err)
			}
			entries[len(entries)-1].CopyFrom = source
			expectSource = false
			continue
		}

		entry, hasSource, err := parseRecord(line, copyInfo)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrParse, lineNo, err)
		}
		entries = append(entries, entry)
		expectSource = hasSource
	}

	if expectSource {
		return nil, fmt.Errorf("%w: line %d: missing copy source", domain.ErrParse, len(lines)+1)
	}
	return entries, nil
}

func parseRecord(line string, copyInfo bool) (domain.ChangeEntry, bool, error) {
	if line == "" {
		return domain.ChangeEntry{}, false, fmt.Errorf("empty record")
	}
	if strings.HasPrefix(strings.TrimSpace(line), "(from ") {
		return domain.ChangeEntry{}, false, fmt.Errorf("copy source without a copied item: %q", line)
	}

	token, rest, ok := splitFirstField(line)
	if !ok {
		return domain.ChangeEntry{}, false, fmt.Errorf("expected <status> <path>, got %q", line)
	}

	status, err := domain.ParseChangeStatus(token)
	if err != nil {
		return domain.ChangeEntry{}, false, err
	}

	hasSource := false
	if copyInfo {
		if marker, path, ok := splitFirstField(rest); ok && marker == copyMarker {
			hasSource = true
			rest = path
		}
	}

	return domain.ChangeEntry{Path: rest, Status: status}, hasSource, nil
}

// splitFirstField splits s at its first run of spaces or tabs. The remainder
// is returned verbatim and must be non-empty.
func splitFirstField(s string) (string, string, bool) {
	idx := strings.IndexAny(s, " \t")
	if idx <= 0 {
		return "", "", false
	}
	rest := strings.TrimLeft(s[idx:], " \t")
	if rest == "" {
		return "", "", false
	}
	return s[:idx], rest, true
}

func parseCopySource(line string) (*domain.CopySource, error) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "(from ") || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("expected copy source, got %q", line)
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "(from "), ")")

	idx := strings.LastIndex(s, ":r")
	if idx <= 0 {
		return nil, fmt.Errorf("copy source without revision: %q", line)
	}
	rev, err := strconv.ParseInt(s[idx+2:], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid copy source revision in %q: %w", line, err)
	}
	return &domain.CopySource{Path: s[:idx], Revision: rev}, nil
}
