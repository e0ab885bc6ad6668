package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/arulyan/cfauth/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedUser creates an account directly, bypassing the signup flow.
func seedUser(t *testing.T, svc *Service, db *gorm.DB, verified bool, nonce string) *models.User {
	t.Helper()
	hash, err := svc.HashPassword("12345678")
	require.NoError(t, err)

	user := &models.User{
		Name:               "Test User",
		Email:              "a@srmist.edu.in",
		Handle:             "abc",
		Password:           hash,
		Verified:           verified,
		PendingHandleNonce: nonce,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestService_SignIn(t *testing.T) {
	t.Run("empty credentials are rejected", func(t *testing.T) {
		svc, _, _, _ := setupAuthService(t)

		_, err := svc.SignIn(context.Background(), "  ", "")
		assert.ErrorIs(t, err, ErrEmptyCredentials)
	})

	t.Run("unknown email is invalid credentials", func(t *testing.T) {
		svc, _, _, _ := setupAuthService(t)

		_, err := svc.SignIn(context.Background(), "nobody@srmist.edu.in", "12345678")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unverified email blocks signin before the oracle runs", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		seedUser(t, svc, db, false, "x7f3k2")

		_, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		assert.ErrorIs(t, err, ErrNotVerified)
		oracle.AssertNotCalled(t, "LastName")
	})

	t.Run("nonce mismatch blocks signin with the expected nonce", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		seedUser(t, svc, db, true, "x7f3k2")
		oracle.On("LastName", mock.Anything, "abc").Return("Smith", nil)

		_, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		require.Error(t, err)

		var notVerified *HandleNotVerifiedError
		require.True(t, errors.As(err, &notVerified))
		assert.Equal(t, "x7f3k2", notVerified.ExpectedNonce)
	})

	t.Run("oracle failure never authorizes even with the correct password", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		seedUser(t, svc, db, true, "x7f3k2")
		oracle.On("LastName", mock.Anything, "abc").Return("", assert.AnError)

		user, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrOracleUnavailable)
	})

	t.Run("matching last name clears the nonce and signs in", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		seeded := seedUser(t, svc, db, true, "x7f3k2")
		oracle.On("LastName", mock.Anything, "abc").Return("x7f3k2", nil)

		user, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, user.ID)

		var stored models.User
		require.NoError(t, db.First(&stored, seeded.ID).Error)
		assert.Empty(t, stored.PendingHandleNonce)
	})

	t.Run("handle proof is a one-time gate", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		seedUser(t, svc, db, true, "x7f3k2")
		oracle.On("LastName", mock.Anything, "abc").Return("x7f3k2", nil).Once()

		_, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		require.NoError(t, err)

		// Second signin must not consult the oracle again.
		_, err = svc.SignIn(context.Background(), "a@srmist.edu.in", "12345678")
		require.NoError(t, err)
		oracle.AssertNumberOfCalls(t, "LastName", 1)
	})

	t.Run("wrong password fails after the gate authorizes", func(t *testing.T) {
		svc, db, _, _ := setupAuthService(t)
		seedUser(t, svc, db, true, "")

		_, err := svc.SignIn(context.Background(), "a@srmist.edu.in", "wrongpassword")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("credentials are trimmed before checks", func(t *testing.T) {
		svc, db, _, _ := setupAuthService(t)
		seedUser(t, svc, db, true, "")

		user, err := svc.SignIn(context.Background(), "  a@srmist.edu.in  ", " 12345678 ")
		require.NoError(t, err)
		assert.Equal(t, "a@srmist.edu.in", user.Email)
	})
}

func TestService_CheckHandleProof(t *testing.T) {
	t.Run("absent nonce authorizes unconditionally", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		user := seedUser(t, svc, db, true, "")

		state, err := svc.checkHandleProof(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, HandleProofAuthorized, state)
		oracle.AssertNotCalled(t, "LastName")
	})

	t.Run("rotated nonce is not cleared by a stale check", func(t *testing.T) {
		svc, db, _, oracle := setupAuthService(t)
		user := seedUser(t, svc, db, true, "old-nonce")
		oracle.On("LastName", mock.Anything, "abc").Return("old-nonce", nil)

		// Nonce rotates between the read and the oracle response.
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("pending_handle_nonce", "new-nonce").Error)

		state, err := svc.checkHandleProof(context.Background(), user)
		require.NoError(t, err)
		assert.Equal(t, HandleProofAuthorized, state)

		var stored models.User
		require.NoError(t, db.First(&stored, user.ID).Error)
		assert.Equal(t, "new-nonce", stored.PendingHandleNonce)
	})
}
