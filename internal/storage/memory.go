package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"asyncrest/internal/domain"
)

// MemoryStore is an in-memory article store used by tests and DB-less runs.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[uuid.UUID]domain.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{articles: make(map[uuid.UUID]domain.Article)}
}

func (s *MemoryStore) List(ctx context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, pk string) (domain.Article, error) {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return a, nil
}

func (s *MemoryStore) Create(ctx context.Context, a domain.Article) (domain.Article, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.articles {
		if existing.Title == a.Title {
			return domain.Article{}, domain.ErrTitleConflict
		}
	}
	s.articles[a.ID] = a
	return a, nil
}

func (s *MemoryStore) Update(ctx context.Context, pk string, a domain.Article) (domain.Article, error) {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.articles[id]
	if !ok {
		return domain.Article{}, domain.ErrArticleNotFound
	}

	existing.Title = a.Title
	existing.Body = a.Body
	existing.Author = a.Author
	existing.Published = a.Published
	existing.UpdatedAt = time.Now().UTC()
	s.articles[id] = existing
	return existing, nil
}

func (s *MemoryStore) Delete(ctx context.Context, pk string) error {
	id, err := uuid.Parse(pk)
	if err != nil {
		return domain.ErrArticleNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return domain.ErrArticleNotFound
	}
	delete(s.articles, id)
	return nil
}
