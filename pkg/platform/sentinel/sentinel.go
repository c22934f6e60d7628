package sentinel

import "errors"

// Infrastructure facts returned by stores, caches and remote clients.
// Services translate them into coded domain errors; transports never see them
// directly.
//
//   - ErrNotFound: the row or cache entry does not exist
//   - ErrConflict: a uniqueness rule rejected the write
//   - ErrUnavailable: the backing system could not be reached
//   - ErrCacheMiss: the cache holds no snapshot; read through to the source
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
	ErrCacheMiss   = errors.New("cache miss")
)
