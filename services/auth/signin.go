package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arulyan/cfauth/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleProofState is the outcome of the handle-proof gate.
type HandleProofState int

const (
	HandleProofUnchecked HandleProofState = iota
	HandleProofAuthorized
	HandleProofNonceMismatch
	HandleProofOracleError
)

// checkHandleProof confirms the user renamed their Codeforces last name to
// the pending nonce. The gate is one-time: once the nonce is cleared, signin
// no longer consults the oracle. An unreachable oracle never authorizes.
func (s *Service) checkHandleProof(ctx context.Context, user *models.User) (HandleProofState, error) {
	if user.PendingHandleNonce == "" {
		return HandleProofAuthorized, nil
	}

	lastName, err := s.oracle.LastName(ctx, user.Handle)
	if err != nil {
		s.logger.Warn("handle proof lookup failed",
			zap.Error(err),
			zap.String("handle", user.Handle))
		return HandleProofOracleError, err
	}

	if lastName != user.PendingHandleNonce {
		return HandleProofNonceMismatch, nil
	}

	// Conditional update so a concurrent signin cannot clear a rotated nonce.
	err = s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND pending_handle_nonce = ?", user.ID, user.PendingHandleNonce).
		Update("pending_handle_nonce", "").Error
	if err != nil {
		return HandleProofOracleError, fmt.Errorf("failed to clear handle nonce: %w", err)
	}

	s.logger.Info("codeforces handle proven",
		zap.Uint("user_id", user.ID),
		zap.String("handle", user.Handle))
	user.PendingHandleNonce = ""
	return HandleProofAuthorized, nil
}

// SignIn authenticates by email and password, gated on email verification and
// the one-time handle proof. The oracle call and password comparison are
// independent; an oracle failure never falls through to the password check.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	state, err := s.checkHandleProof(ctx, &user)
	switch state {
	case HandleProofOracleError:
		return nil, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	case HandleProofNonceMismatch:
		return nil, &HandleNotVerifiedError{ExpectedNonce: user.PendingHandleNonce}
	}

	if err := s.VerifyPassword(user.Password, password); err != nil {
		s.logger.Warn("signin password mismatch", zap.String("email", email))
		return nil, err
	}

	s.logger.Info("signin successful", zap.Uint("user_id", user.ID))
	return &user, nil
}
