package lifecycle

import "errors"

// The three outcomes an authorization check can fail with. Services wrap
// these with context; handlers map them onto HTTP statuses with errors.Is.
// A check that fails must leave every record untouched.
var (
	// ErrNotFound means a referenced record is absent.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden means the actor lacks the required relationship to the record.
	ErrForbidden = errors.New("not authorized")
	// ErrConflict means the request is semantically invalid in the current state.
	ErrConflict = errors.New("conflicting request")
)
