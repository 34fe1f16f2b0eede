package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vocab-trainer/internal/config"
	"gorm.io/gorm"
)

type failingSeeder struct{}

func (failingSeeder) SeedIfShort(context.Context, uint, int) (int, error) {
	return 0, errors.New("seed failed")
}

func newAuth(f *fixture, seeder DeckSeeder) *AuthService {
	if seeder == nil {
		seeder = f.catalog(nil)
	}
	return NewAuthService(f.users, seeder, config.Default().JWT, f.logger)
}

func TestAuth_RegisterRejectsTakenNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuth(f, nil)

	_, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuth_RegisterLosesRaceOnEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuth(f, nil)

	// another registration claims the email between the checks and the insert
	userQueries := 0
	require.NoError(t, f.db.Callback().Query().After("gorm:query").Register("test:concurrent_register", func(tx *gorm.DB) {
		if tx.Statement.Table != "users" {
			return
		}
		userQueries++
		if userQueries == 2 {
			require.NoError(t, f.db.Exec(
				"INSERT INTO users (username, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				"mallory", "alice@example.com", "x", time.Now(), time.Now()).Error)
		}
	}))

	_, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, &RegisterRequest{Username: "mallory", Email: "m@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuth_RegisterSurvivesSeedFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := newAuth(f, failingSeeder{}).Register(ctx, &RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	n, err := f.cards.CountByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAuth_LoginAndValidateToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuth(f, nil)

	user, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	for _, login := range []string{"alice", "alice@example.com"} {
		tok, err := svc.Login(ctx, &LoginRequest{Username: login, Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", tok.TokenType)

		claims, err := svc.ValidateToken(tok.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	}

	_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := config.Default().JWT
	other.Secret = "another-secret"
	forged, err := NewAuthService(f.users, f.catalog(nil), other, f.logger).IssueToken(user)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := newAuth(f, nil)

	user, err := svc.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, &ChangePasswordRequest{OldPassword: "secret1", NewPassword: "secret2"}))

	_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &LoginRequest{Username: "alice", Password: "secret2"})
	assert.NoError(t, err)
}

// Register, study, hide one card, restore.
func TestAliceEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	catalog := f.catalog(nil)
	auth := NewAuthService(f.users, catalog, config.Default().JWT, f.logger)

	alice, err := auth.Register(ctx, &RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "wonderland"})
	require.NoError(t, err)

	cards, err := catalog.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, cards, 8)
	assertUniquePairs(t, cards)

	require.NoError(t, catalog.Hide(ctx, alice.ID, cards[3].ID))
	cards, err = catalog.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 7)

	_, err = catalog.RestoreAll(ctx, alice.ID)
	require.NoError(t, err)
	cards, err = catalog.ListVisible(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 8)
}
