package models

import "errors"

// Application-wide standard errors
var (
	// Common resource/store errors
	ErrNotFound         = errors.New("resource not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Input errors (rejected before any store call)
	ErrInvalidInput   = errors.New("invalid input data")
	ErrInvalidLabel   = errors.New("label must match [a-z0-9_]+ and be 1-100 characters")
	ErrMissingOpenID  = errors.New("openId is required")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidMessage = errors.New("invalid message type")
)
