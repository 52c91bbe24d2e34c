package repository

import "errors"

// ErrUnknownBackend is returned when a store backend name is not one of
// memory, redis or mongo.
var ErrUnknownBackend = errors.New("unknown store backend")
