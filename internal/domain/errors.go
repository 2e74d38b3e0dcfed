package domain

import "errors"

var (
	// ErrMalformedQuery signals a structurally invalid search request.
	ErrMalformedQuery = errors.New("malformed query")
	// ErrInvalidPage signals a page number that is not a positive integer.
	// Kept separate from ErrMalformedQuery: the two map to different response codes.
	ErrInvalidPage = errors.New("invalid page")
	// ErrIndexUnavailable signals that the search index failed to respond.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrNotFound signals a missing content record.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound signals a missing user profile.
	ErrUserNotFound = errors.New("user not found")
	// ErrUnauthorized signals an invalid or absent credential.
	ErrUnauthorized = errors.New("unauthorized")
)
