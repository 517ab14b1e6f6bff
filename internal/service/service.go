// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrStoreUnavailable = errors.New("database not available")
	ErrInvalidInput     = errors.New("invalid input")
)

// DefaultListLimit is the number of requests returned when no limit is given.
const DefaultListLimit = 20
