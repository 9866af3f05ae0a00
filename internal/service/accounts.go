// Package service holds the account and expense operations behind the HTTP
// handlers. Every expense operation is scoped to the caller's user id.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/expensetracker/internal/domain/user"
	"github.com/geocoder89/expensetracker/internal/security"
	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned for both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Session is what a successful register or login hands back.
type Session struct {
	User  user.User
	Token string
}

type Accounts struct {
	users  UserStore
	tokens TokenIssuer
	log    *slog.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccounts(users UserStore, tokens TokenIssuer, log *slog.Logger) *Accounts {
	if log == nil {
		log = slog.Default()
	}
	return &Accounts{
		users:  users,
		tokens: tokens,
		log:    log,
		now:    time.Now,
	}
}

func (a *Accounts) Register(ctx context.Context, name, email, password string) (Session, error) {
	_, err := a.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, user.ErrEmailTaken
	case !errors.Is(err, user.ErrNotFound):
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := a.now().UTC()

	// the unique index still catches a concurrent registration of the same email
	u, err := a.users.Create(ctx, user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	a.log.InfoContext(ctx, "user registered", "user_id", u.ID)

	return a.session(u)
}

func (a *Accounts) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := a.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// same bcrypt cost as a real comparison
			a.VerifyPassword(user.User{PasswordHash: a.dummy()}, password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if !a.VerifyPassword(u, password) {
		return Session{}, ErrInvalidCredentials
	}

	return a.session(u)
}

func (a *Accounts) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return a.users.GetByEmail(ctx, email)
}

func (a *Accounts) VerifyPassword(u user.User, candidate string) bool {
	return security.PasswordMatches(u.PasswordHash, candidate)
}

func (a *Accounts) Profile(ctx context.Context, userID string) (user.User, error) {
	return a.users.GetByID(ctx, userID)
}

func (a *Accounts) session(u user.User) (Session, error) {
	token, err := a.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	u.PasswordHash = ""
	return Session{User: u, Token: token}, nil
}

func (a *Accounts) dummy() string {
	a.dummyOnce.Do(func() {
		// error only on over-long input
		a.dummyHash, _ = security.HashPassword(uuid.NewString())
	})
	return a.dummyHash
}
