package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type windowRepo struct {
	entries []Entry
	err     error

	lastFilters Filters
	lastLimit   int
	lastOffset  int
}

func (r *windowRepo) Window(ctx context.Context, f Filters, limit, offset int) ([]Entry, error) {
	r.lastFilters = f
	r.lastLimit = limit
	r.lastOffset = offset
	if r.err != nil {
		return nil, r.err
	}
	if offset >= len(r.entries) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.entries) {
		end = len(r.entries)
	}
	return r.entries[offset:end], nil
}

func seedEntries(n int) []Entry {
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, Entry{
			ID:     fmt.Sprintf("entry-%02d", i),
			Actor:  "admin-1",
			Action: ActionCreate,
			Entity: "role",
			At:     time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	return entries
}

func TestQueryFirstPageHasNext(t *testing.T) {
	repo := &windowRepo{entries: seedEntries(25)}
	svc := NewService(repo)

	result, err := svc.Query(context.Background(), Filters{Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 20)
	assert.True(t, result.Paging.HasNext)
	assert.Equal(t, 2, result.Paging.NextPage)
	assert.Zero(t, result.Paging.PrevPage)
	assert.Equal(t, 21, repo.lastLimit, "one extra row probes the next page")
}

func TestQueryLastPage(t *testing.T) {
	repo := &windowRepo{entries: seedEntries(25)}
	svc := NewService(repo)

	result, err := svc.Query(context.Background(), Filters{Page: 2, PageSize: 20})
	require.NoError(t, err)

	assert.Len(t, result.Entries, 5)
	assert.False(t, result.Paging.HasNext)
	assert.Equal(t, 1, result.Paging.PrevPage)
	assert.Equal(t, 20, repo.lastOffset)
}

func TestQueryDefaultsAndClampsPageSize(t *testing.T) {
	repo := &windowRepo{}
	svc := NewService(repo)

	_, err := svc.Query(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, 21, repo.lastLimit)

	_, err = svc.Query(context.Background(), Filters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 51, repo.lastLimit, "page size clamps at 50")
}

func TestQueryPassesFiltersThrough(t *testing.T) {
	repo := &windowRepo{}
	svc := NewService(repo)
	from := time.Now().Add(-time.Hour)
	to := time.Now()

	_, err := svc.Query(context.Background(), Filters{Actor: "admin-1", Entity: "role", From: from, To: to})
	require.NoError(t, err)

	assert.Equal(t, "admin-1", repo.lastFilters.Actor)
	assert.Equal(t, "role", repo.lastFilters.Entity)
	assert.Equal(t, from, repo.lastFilters.From)
	assert.Equal(t, to, repo.lastFilters.To)
}

func TestQueryRepositoryError(t *testing.T) {
	boom := errors.New("relation does not exist")
	svc := NewService(&windowRepo{err: boom})

	_, err := svc.Query(context.Background(), Filters{})
	require.ErrorIs(t, err, boom)
}
