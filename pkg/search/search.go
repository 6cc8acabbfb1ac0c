// Package search runs product searches against an external index and
// makes sure a slow earlier query can never overwrite the result of a
// faster later one.
package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/dukapos/go-api/pkg/models"
)

const (
	// MinQueryLength is the shortest query the service will send to the
	// backend. Shorter input clears the result list instead.
	MinQueryLength = 2

	// DefaultPageSize matches the hit count shown on the sales screen.
	DefaultPageSize = 50
)

// ErrStale marks a response that was superseded by a newer query before it
// came back. Callers should drop it without touching their displayed
// results.
var ErrStale = errors.New("search response superseded by a newer query")

// Query is one request to the search backend.
type Query struct {
	Text       string
	ActiveOnly bool
	PageSize   int
}

// Backend is the external index the service queries. The backend is
// eventually consistent with the catalog and may lag recent writes.
type Backend interface {
	SearchProducts(ctx context.Context, q Query) ([]models.Product, error)
}

// Service tags every search invocation and discards responses that no
// longer match the latest tag. Completion order is not trusted: without
// the tag a slow query issued first could land after a fast one issued
// second and overwrite it.
type Service struct {
	backend Backend
	latest  atomic.Uint64
}

func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

// Search queries the backend for active products matching text. It returns
// ErrStale when a newer Search or Clear was issued while this one was in
// flight.
func (s *Service) Search(ctx context.Context, text string) ([]models.Product, error) {
	text = strings.TrimSpace(text)
	tag := s.latest.Add(1)

	if len([]rune(text)) < MinQueryLength {
		return nil, nil
	}

	hits, err := s.backend.SearchProducts(ctx, Query{
		Text:       text,
		ActiveOnly: true,
		PageSize:   DefaultPageSize,
	})
	if s.latest.Load() != tag {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// Clear supersedes any in-flight query so its response is discarded when
// it eventually arrives.
func (s *Service) Clear() {
	s.latest.Add(1)
}
