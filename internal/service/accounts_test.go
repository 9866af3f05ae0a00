package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/geocoder89/expensetracker/internal/auth"
	"github.com/geocoder89/expensetracker/internal/domain/user"
	"github.com/geocoder89/expensetracker/internal/repo/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAccounts(t *testing.T) (*Accounts, *auth.Manager) {
	t.Helper()
	tokens := auth.NewManager("test-secret")
	return NewAccounts(memory.NewUsersRepo(), tokens, discardLogger()), tokens
}

func TestRegister_IssuesTokenForNewUser(t *testing.T) {
	ctx := context.Background()
	accounts, tokens := newAccounts(t)

	s, err := accounts.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, s.User.ID)
	assert.Equal(t, "Ada", s.User.Name)
	assert.Empty(t, s.User.PasswordHash)

	userID, err := tokens.Verify(s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.User.ID, userID)

	stored, err := accounts.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, accounts.VerifyPassword(stored, "password123"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	first, err := accounts.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, "Imposter", "ada@example.com", "different-pass")
	require.ErrorIs(t, err, user.ErrEmailTaken)

	still, err := accounts.Profile(ctx, first.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", still.Name)
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	_, err := accounts.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, "Ada Upper", "Ada@example.com", "password123")
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newAccounts(t)

	reg, err := accounts.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	s, err := accounts.Login(ctx, "ada@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, s.User.ID)
	assert.NotEmpty(t, s.Token)

	_, wrongPassword := accounts.Login(ctx, "ada@example.com", "nope-nope")
	_, unknownEmail := accounts.Login(ctx, "ghost@example.com", "password123")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}
