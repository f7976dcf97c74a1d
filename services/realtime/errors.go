package realtime

import "errors"

// Error taxonomy surfaced by the realtime services. Bulk dispatch never
// returns these for individual recipients; partial failures are reported
// through models.DispatchResult instead.
var (
	// ErrInvalidInput signals missing or malformed required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound signals a notification that does not exist or does not
	// belong to the calling user.
	ErrNotFound = errors.New("notification not found")
	// ErrInvalidState signals an operation that does not apply to the
	// notification, e.g. confirmation stats on one that never required
	// confirmation.
	ErrInvalidState = errors.New("notification does not require confirmation")
)
