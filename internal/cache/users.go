package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/geocoder89/expensetracker/internal/domain/user"
)

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// LookupRecorder counts cache outcomes; *observability.Prom satisfies it.
type LookupRecorder interface {
	CacheLookup(result string)
}

// Users is a read-through cache in front of a user lookup. Users are never
// mutated after registration, so entries only expire by TTL. The password hash
// is not part of the cached JSON.
type Users struct {
	next    UserLookup
	store   Store
	metrics LookupRecorder
	log     *slog.Logger
}

func NewUsers(next UserLookup, store Store, metrics LookupRecorder, log *slog.Logger) *Users {
	if log == nil {
		log = slog.Default()
	}
	return &Users{next: next, store: store, metrics: metrics, log: log}
}

func UserKey(id string) string {
	return "users:profile:v1:id=" + id
}

func (c *Users) GetByID(ctx context.Context, id string) (user.User, error) {
	key := UserKey(id)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		// cache trouble must not lock users out
		c.record("error")
		c.log.WarnContext(ctx, "profile cache get failed", "err", err)
	case ok:
		var u user.User
		if err := json.Unmarshal(raw, &u); err == nil && u.ID == id {
			c.record("hit")
			return u, nil
		}
		c.record("error")
	default:
		c.record("miss")
	}

	u, err := c.next.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if b, err := json.Marshal(u); err == nil {
		if err := c.store.Set(ctx, key, b); err != nil {
			c.log.WarnContext(ctx, "profile cache set failed", "err", err)
		}
	}

	u.PasswordHash = ""
	return u, nil
}

func (c *Users) record(result string) {
	if c.metrics != nil {
		c.metrics.CacheLookup(result)
	}
}
