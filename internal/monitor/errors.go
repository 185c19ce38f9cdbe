package monitor

import "errors"

// Sentinel errors for monitor operations.
var (
	ErrAlreadyRunning   = errors.New("monitor already running")
	ErrDuplicateLabel   = errors.New("label already registered")
	ErrNilRecord        = errors.New("status record is nil")
	ErrCounterUnderflow = errors.New("live-task counter would go negative")
	ErrReactionFault    = errors.New("reaction fault")
	ErrUnknownPollMode  = errors.New("unknown poll mode")
)
