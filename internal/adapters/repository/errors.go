package repository

import "errors"

// Sentinel kinds for profile store errors.
var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidLimit   = errors.New("invalid profile limit")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrUnavailable    = errors.New("profile store unavailable")
)
