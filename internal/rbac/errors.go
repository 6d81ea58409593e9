package rbac

import "errors"

var (
	// ErrNotFound covers unresolvable role codes, unknown ids and absent
	// bindings. Callers must not collapse it into a denied check; a missing
	// role is a misconfiguration, not a "forbidden".
	ErrNotFound = errors.New("not found")

	// ErrConflict covers duplicate permission names and duplicate role
	// names/codes.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument covers malformed inputs, e.g. an action or scope
	// outside the closed enumerations.
	ErrInvalidArgument = errors.New("invalid argument")
)
