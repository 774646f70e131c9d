package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Infrastructure wraps these so callers can classify failures without leaking storage or transport details.
var (
	ErrNotFound            = errors.New("not found")
	ErrBadRequest          = errors.New("bad request")
	ErrInvalidVerification = errors.New("invalid verification state")
)
