// Package repository holds typed front-ends over the document store.  The
// store only answers single-field equality, so compound queries (ranges,
// substrings, two-field ANDs) load the collection and filter in process.
package repository

import "errors"

// Collection names in the document store.
const (
	CarsCollection  = "cars"
	UsersCollection = "users"
)

// ErrCarNotFound is returned when no listing exists under the id.
var ErrCarNotFound = errors.New("car not found")

// ErrUserNotFound is returned when no user profile exists under the id or email.
var ErrUserNotFound = errors.New("user not found")
