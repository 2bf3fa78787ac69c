package matching

import "errors"

// Sentinel kinds for matching errors.
var (
	ErrUnknownStrategy = errors.New("unknown ranking strategy")
	ErrUnknownMethod   = errors.New("unknown similarity method")
	ErrNoStore         = errors.New("ranker has no profile store")
)
