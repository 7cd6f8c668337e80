package generic

import (
	"context"
	"errors"

	"asyncrest/rest"
)

// Store is the persistence port generic views drive. Query execution lives
// behind it; views never see how rows are fetched.
//
// Get with an unknown or malformed key should return an error satisfying
// errors.Is(err, rest.ErrNotFound); GetOr404 normalizes anything else.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, pk string) (T, error)
	Create(ctx context.Context, obj T) (T, error)
	Update(ctx context.Context, pk string, obj T) (T, error)
	Delete(ctx context.Context, pk string) error
}

// GetOr404 fetches pk from the store, turning every lookup failure that is
// not already an API error into a 404. Malformed keys land here too.
func GetOr404[T any](ctx context.Context, store Store[T], pk string) (T, error) {
	obj, err := store.Get(ctx, pk)
	if err != nil {
		var apiErr *rest.APIError
		if errors.As(err, &apiErr) {
			return obj, err
		}
		return obj, rest.NotFound("no object matches %q", pk)
	}
	return obj, nil
}
