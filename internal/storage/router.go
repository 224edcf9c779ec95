package storage

import (
	"context"
	"errors"

	api "github.com/weak-head/bin2hex64/api/v1"
)

var (
	// ErrNoLocation happens when the object location is not provided.
	ErrNoLocation = errors.New("no location provided")

	// ErrNoStorageForKind happens when there is no backend
	// configured for the location kind.
	ErrNoStorageForKind = errors.New("no storage configured for the location kind")
)

// Backend stores and retrieves whole objects.
type Backend interface {
	Store(ctx context.Context, loc *api.Location, objectBytes []byte, contentType string) error
	Retrieve(ctx context.Context, loc *api.Location) ([]byte, error)
}

// Router dispatches the storage calls to the backend
// matching the location kind.
type Router struct {
	backends map[api.Location_Kind]Backend
}

// NewRouter creates a router over the given backends.
// Nil backends are skipped.
func NewRouter(backends map[api.Location_Kind]Backend) *Router {
	r := &Router{backends: make(map[api.Location_Kind]Backend, len(backends))}
	for kind, b := range backends {
		if b != nil {
			r.backends[kind] = b
		}
	}
	return r
}

// Store
func (r *Router) Store(ctx context.Context, loc *api.Location, objectBytes []byte, contentType string) error {
	b, err := r.backend(loc)
	if err != nil {
		return err
	}
	return b.Store(ctx, loc, objectBytes, contentType)
}

// Retrieve
func (r *Router) Retrieve(ctx context.Context, loc *api.Location) ([]byte, error) {
	b, err := r.backend(loc)
	if err != nil {
		return nil, err
	}
	return b.Retrieve(ctx, loc)
}

func (r *Router) backend(loc *api.Location) (Backend, error) {
	if loc == nil {
		return nil, ErrNoLocation
	}
	b, ok := r.backends[loc.Kind]
	if !ok {
		return nil, ErrNoStorageForKind
	}
	return b, nil
}
