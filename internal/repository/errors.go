package repository

import "errors"

// ErrNotFound is returned when a query for a single conversation finds nothing,
// or when an update or delete touches no row.
//
// The service layer translates it into app_errors.ErrNotFound so that neither
// sql.ErrNoRows nor redis.Nil leaks past the storage boundary.
var ErrNotFound = errors.New("repository: not found")
