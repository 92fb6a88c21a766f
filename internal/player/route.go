package player

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRouteBusy is returned when the audio route is already held by another owner
var ErrRouteBusy = errors.New("audio route busy")

// RouteOwnership tracks which component currently controls the audio output route.  At most one owner holds it.
type RouteOwnership struct {
	mu    sync.Mutex
	owner string
	token uint64
}

func NewRouteOwnership() *RouteOwnership {
	return &RouteOwnership{}
}

// Acquire claims the route for owner.  Re-acquiring by the current owner succeeds and invalidates the earlier
// release func.  The returned release is idempotent.
func (r *RouteOwnership) Acquire(owner string) (func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.owner != "" && r.owner != owner {
		return nil, fmt.Errorf("%w: held by %s", ErrRouteBusy, r.owner)
	}
	r.owner = owner
	r.token++
	token := r.token

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.token == token {
			r.owner = ""
		}
	}, nil
}

// Owner returns the current owner, or "" when the route is free
func (r *RouteOwnership) Owner() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner
}
