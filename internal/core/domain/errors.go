package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrGameNotFound indicates the targeted catalog entry does not exist
	ErrGameNotFound = errors.New("game not found")

	// ErrInvalidOwnerURL indicates no handle could be extracted from the
	// entry's declared-owner URL
	ErrInvalidOwnerURL = errors.New("invalid owner url")

	// ErrHandleMismatch indicates the authenticated handle does not match
	// the declared owner
	ErrHandleMismatch = errors.New("handle mismatch")

	// ErrAlreadyClaimed indicates another identity won the claim first
	ErrAlreadyClaimed = errors.New("game already claimed")

	// ErrClaimFailed indicates the conditional claim write itself failed
	ErrClaimFailed = errors.New("claim update failed")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrTokenExpired indicates the session token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the session token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)
