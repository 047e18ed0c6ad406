package hook

import (
	"errors"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

// Exit codes of the pre-commit hook. Subversion rejects the commit on any
// non-zero status; 3, 4 and 6 are kept stable for existing installations.
const (
	ExitAllowed       = 0
	ExitInternal      = 1
	ExitUsage         = 3
	ExitConfig        = 4
	ExitBackend       = 5
	ExitDenied        = 6
	ExitParse         = 7
	ExitDuplicatePath = 8
	ExitAuthority     = 9
)

// ExitCodeFor classifies a pipeline failure.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitAllowed
	case errors.Is(err, domain.ErrParse):
		return ExitParse
	case errors.Is(err, domain.ErrDuplicatePath):
		return ExitDuplicatePath
	case errors.Is(err, domain.ErrBackendUnavailable):
		return ExitBackend
	case errors.Is(err, domain.ErrAuthorityUnavailable):
		return ExitAuthority
	default:
		return ExitInternal
	}
}
