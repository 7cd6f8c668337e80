package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"asyncrest/internal/domain"
)

// MockArticleStore is a testify mock of generic.Store[domain.Article].
type MockArticleStore struct {
	mock.Mock
}

func (m *MockArticleStore) List(ctx context.Context) ([]domain.Article, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Article), args.Error(1)
}

func (m *MockArticleStore) Get(ctx context.Context, pk string) (domain.Article, error) {
	args := m.Called(ctx, pk)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockArticleStore) Create(ctx context.Context, a domain.Article) (domain.Article, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockArticleStore) Update(ctx context.Context, pk string, a domain.Article) (domain.Article, error) {
	args := m.Called(ctx, pk, a)
	return args.Get(0).(domain.Article), args.Error(1)
}

func (m *MockArticleStore) Delete(ctx context.Context, pk string) error {
	args := m.Called(ctx, pk)
	return args.Error(0)
}
