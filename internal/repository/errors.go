// Package repository implements data access over MySQL. Sentinel errors
// defined here let handlers distinguish failure classes without inspecting
// SQL details.
package repository

import "errors"

// ErrNotFound is returned when an entity does not exist or is not visible to
// the requesting account. Owner-scoped queries intentionally collapse
// "absent" and "owned by someone else" into this one error so that handlers
// cannot leak another owner's data.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering with an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")
