package serializer

import (
	"context"
	"sync"

	"asyncrest/await"
)

// Bound is a serializer coupled to one instance. Its representation is
// computed once and can be retrieved either directly with Data or as an
// awaitable with DataAsync; both observe the same value.
type Bound[T any] struct {
	s   *Serializer[T]
	obj T

	mu      sync.Mutex
	promise *await.Promise[map[string]any]
}

// Instance returns the bound value.
func (b *Bound[T]) Instance() T { return b.obj }

// DataAsync returns the representation as an awaitable. Repeated calls share
// one computation.
func (b *Bound[T]) DataAsync(ctx context.Context) *await.Promise[map[string]any] {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.promise == nil {
		b.promise = await.Go(func() (map[string]any, error) {
			return b.s.Represent(ctx, b.obj)
		})
	}
	return b.promise
}

// Data returns the representation directly. It yields a value equal to
// awaiting DataAsync.
func (b *Bound[T]) Data(ctx context.Context) (map[string]any, error) {
	return b.DataAsync(ctx).Await(ctx)
}
