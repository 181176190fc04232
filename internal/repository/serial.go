package repository

import "context"

// Updater runs read-modify-write cycles against a store one at a time.
type Updater interface {
	Update(ctx context.Context, fn func(ctx context.Context) error) error
}

// Serial wraps a Store so that Update cycles never interleave. Plain loads and
// saves pass straight through.
type Serial struct {
	Store
	slot chan struct{}
}

var (
	_ Store   = (*Serial)(nil)
	_ Updater = (*Serial)(nil)
)

// NewSerial guards store.
func NewSerial(store Store) *Serial {
	return &Serial{Store: store, slot: make(chan struct{}, 1)}
}

// Update waits for any running cycle to finish, then runs fn. It gives up
// when ctx ends first.
func (s *Serial) Update(ctx context.Context, fn func(ctx context.Context) error) error {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.slot }()
	return fn(ctx)
}

// Update runs fn through store's Updater when it has one, otherwise directly.
func Update(ctx context.Context, store Store, fn func(ctx context.Context) error) error {
	if u, ok := store.(Updater); ok {
		return u.Update(ctx, fn)
	}
	return fn(ctx)
}
