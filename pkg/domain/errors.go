package domain

import "errors"

// ErrInvalidKey is returned when a request carries a missing or malformed node key.
var ErrInvalidKey = errors.New("invalid node key")

// ErrNodeNotFound is returned when the requested root entry does not exist.
// Missing entries deeper in the graph are pruned instead.
var ErrNodeNotFound = errors.New("dialogue node not found")

// ErrSourceUnavailable wraps failures of the backing dataset (connectivity, corruption).
var ErrSourceUnavailable = errors.New("dialogue source unavailable")
