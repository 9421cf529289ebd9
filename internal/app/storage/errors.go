package storage

import "errors"

// ErrNotFound is returned by every implementation when an update, get or
// delete names an id that does not exist. Callers branch with errors.Is.
var ErrNotFound = errors.New("record not found")
