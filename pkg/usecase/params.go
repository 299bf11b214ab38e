package usecase

import "time"

// Default engine parameters
const (
	DefaultSearchLimit        = 20
	DefaultDebounce           = 300 * time.Millisecond
	DefaultResolveConcurrency = 8

	// MinServerQueryLength is the rune count from which type-ahead queries go to the server
	MinServerQueryLength = 2
)

// Context keys for error values
const (
	CauseKey = "cause"
	QueryKey = "query"
)
