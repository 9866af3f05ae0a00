package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/expensetracker/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := New(time.Minute)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v")))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_BoundedEvictsClosestToExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c := NewBounded(time.Minute, 2)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1")))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "b", []byte("2")))
	now = now.Add(time.Second)
	require.NoError(t, c.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, c.Len())

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)

	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

type countingLookup struct {
	calls int
	users map[string]user.User
}

func (l *countingLookup) GetByID(_ context.Context, id string) (user.User, error) {
	l.calls++
	u, ok := l.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type recorder struct {
	results []string
}

func (r *recorder) CacheLookup(result string) {
	r.results = append(r.results, result)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("redis down")
}

func TestUsers_ReadThrough(t *testing.T) {
	ctx := context.Background()
	lookup := &countingLookup{users: map[string]user.User{
		"u1": {ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"},
	}}
	rec := &recorder{}

	c := NewUsers(lookup, New(time.Minute), rec, nil)

	first, err := c.GetByID(ctx, "u1")
	require.NoError(t, err)
	second, err := c.GetByID(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, []string{"miss", "hit"}, rec.results)
	assert.Equal(t, "Ada", second.Name)
	assert.Empty(t, first.PasswordHash)
	assert.Empty(t, second.PasswordHash)
}

func TestUsers_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	lookup := &countingLookup{users: map[string]user.User{}}

	c := NewUsers(lookup, New(time.Minute), nil, nil)

	_, err := c.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, user.ErrNotFound)
	_, err = c.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, user.ErrNotFound)

	assert.Equal(t, 2, lookup.calls)
}

func TestUsers_StoreFailureFallsThrough(t *testing.T) {
	lookup := &countingLookup{users: map[string]user.User{"u1": {ID: "u1", Name: "Ada"}}}
	rec := &recorder{}

	c := NewUsers(lookup, failingStore{}, rec, nil)

	u, err := c.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, []string{"error"}, rec.results)
}
