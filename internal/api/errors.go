package api

import (
	"context"
	"errors"

	"asyncrest/generic"
	"asyncrest/internal/domain"
	"asyncrest/rest"
)

// mappedStore translates domain errors into their HTTP renderings so the
// generic views can pass them straight through dispatch.
type mappedStore struct {
	generic.Store[domain.Article]
}

func mapDomainError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrArticleNotFound):
		return rest.NotFound("%s", err.Error())
	case errors.Is(err, domain.ErrTitleConflict):
		return rest.Conflict(err.Error())
	default:
		return err
	}
}

func (s mappedStore) Get(ctx context.Context, pk string) (domain.Article, error) {
	a, err := s.Store.Get(ctx, pk)
	return a, mapDomainError(err)
}

func (s mappedStore) Create(ctx context.Context, a domain.Article) (domain.Article, error) {
	created, err := s.Store.Create(ctx, a)
	return created, mapDomainError(err)
}

func (s mappedStore) Update(ctx context.Context, pk string, a domain.Article) (domain.Article, error) {
	updated, err := s.Store.Update(ctx, pk, a)
	return updated, mapDomainError(err)
}

func (s mappedStore) Delete(ctx context.Context, pk string) error {
	return mapDomainError(s.Store.Delete(ctx, pk))
}
