package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/go-api/pkg/models"
)

type backendFunc func(ctx context.Context, q Query) ([]models.Product, error)

func (f backendFunc) SearchProducts(ctx context.Context, q Query) ([]models.Product, error) {
	return f(ctx, q)
}

func namedProducts(names ...string) []models.Product {
	out := make([]models.Product, len(names))
	for i, n := range names {
		out[i] = models.Product{Name: n}
	}
	return out
}

func TestSearchPassesQueryShape(t *testing.T) {
	var got Query
	svc := NewService(backendFunc(func(_ context.Context, q Query) ([]models.Product, error) {
		got = q
		return namedProducts("Soda"), nil
	}))

	hits, err := svc.Search(context.Background(), "  soda  ")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "soda", got.Text)
	assert.True(t, got.ActiveOnly)
	assert.Equal(t, DefaultPageSize, got.PageSize)
}

func TestSearchShortQuerySkipsBackend(t *testing.T) {
	calls := 0
	svc := NewService(backendFunc(func(_ context.Context, _ Query) ([]models.Product, error) {
		calls++
		return namedProducts("Soda"), nil
	}))

	hits, err := svc.Search(context.Background(), "s")
	require.NoError(t, err)
	assert.Nil(t, hits)
	assert.Zero(t, calls)

	hits, err = svc.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, hits)
	assert.Zero(t, calls)
}

func TestSearchBackendError(t *testing.T) {
	boom := errors.New("index unreachable")
	svc := NewService(backendFunc(func(_ context.Context, _ Query) ([]models.Product, error) {
		return nil, boom
	}))

	hits, err := svc.Search(context.Background(), "soda")
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, hits)
}

func TestSlowEarlierQueryIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := NewService(backendFunc(func(_ context.Context, q Query) ([]models.Product, error) {
		if q.Text == "slow" {
			close(started)
			<-release
		}
		return namedProducts(q.Text), nil
	}))

	type result struct {
		hits []models.Product
		err  error
	}
	slowDone := make(chan result, 1)
	go func() {
		hits, err := svc.Search(context.Background(), "slow")
		slowDone <- result{hits, err}
	}()
	<-started

	// A second query issued while the first is still in flight.
	hits, err := svc.Search(context.Background(), "fast")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fast", hits[0].Name)

	close(release)
	slow := <-slowDone
	assert.ErrorIs(t, slow.err, ErrStale)
	assert.Nil(t, slow.hits)
}

func TestClearSupersedesInFlightQuery(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := NewService(backendFunc(func(_ context.Context, _ Query) ([]models.Product, error) {
		close(started)
		<-release
		return namedProducts("Soda"), nil
	}))

	type result struct {
		hits []models.Product
		err  error
	}
	done := make(chan result, 1)
	go func() {
		hits, err := svc.Search(context.Background(), "soda")
		done <- result{hits, err}
	}()
	<-started

	svc.Clear()
	close(release)

	r := <-done
	assert.ErrorIs(t, r.err, ErrStale)
	assert.Nil(t, r.hits)
}
