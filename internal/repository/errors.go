// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting SQL
// errors. For example, ErrTokenUsed signals that a confirmation token has
// already been consumed and the handler should answer 409 with the action
// previously recorded.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the caller's tenant. Handlers translate this into HTTP 404.
// Tenant scoping happens in the queries themselves, so another tenant's row
// is indistinguishable from a missing one.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering a user with an email address
// that is already taken. Handlers translate this into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenUsed is returned when a confirmation token has already been
// consumed. The losing side of a consumption race observes this error.
// Expiry is not a repository concern: handlers derive it from the row state
// before attempting consumption.
var ErrTokenUsed = errors.New("token already used")
