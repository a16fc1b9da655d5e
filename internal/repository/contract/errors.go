package contract

import "errors"

var (
	// ErrDuplicate is returned when a write hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConditionFailed is returned when a guarded update matched no rows.
	ErrConditionFailed = errors.New("conditional update matched no rows")
)
