package repositories

import "errors"

// ErrNotFound is returned when a record with the requested id does not exist.
// Callers distinguish it from other store failures with errors.Is.
var ErrNotFound = errors.New("record not found")
