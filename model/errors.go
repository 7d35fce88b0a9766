package model

import "github.com/pkg/errors"

// Domain error taxonomy. Handlers map these to HTTP statuses; everything
// else that comes out of the store is treated as ErrStoreUnavailable.
// Callers wrap with errors.Wrap for context and match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("invalid input")
	ErrForbidden        = errors.New("not authorized")
	ErrAlreadyFollowing = errors.New("already following")
	ErrStoreUnavailable = errors.New("store unavailable")
)
