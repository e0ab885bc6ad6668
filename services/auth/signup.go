package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arulyan/cfauth/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	nameRegex       = regexp.MustCompile(`^[a-zA-Z ]+$`)
	handleRegex     = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
	emailLocalRegex = regexp.MustCompile(`^[a-zA-Z0-9.-]+$`)
)

type SignupRequest struct {
	Name     string
	Email    string
	Password string
	Handle   string
}

func (r *SignupRequest) trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.Handle = strings.TrimSpace(r.Handle)
}

// SignupResult is returned on a PENDING signup: the account exists but stays
// unverified until the emailed link is consumed, and signin stays blocked
// until the Codeforces last name matches HandleNonce.
type SignupResult struct {
	UserID      uint
	Email       string
	HandleNonce string
}

// validateSignup applies the signup rules in order; the first failing rule
// wins.
func (s *Service) validateSignup(req *SignupRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Handle == "" {
		return ErrEmptyFields
	}
	if !nameRegex.MatchString(req.Name) {
		return ErrInvalidName
	}
	if !s.emailDomainAllowed(req.Email) {
		return ErrInvalidEmail
	}
	if !handleRegex.MatchString(req.Handle) {
		return ErrInvalidHandle
	}
	if len(req.Password) < s.config.Auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) emailDomainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	local, domain := email[:at], email[at+1:]
	if !emailLocalRegex.MatchString(local) {
		return false
	}
	for _, allowed := range s.config.Auth.AllowedEmailDomains {
		if strings.EqualFold(domain, allowed) {
			return true
		}
	}
	return false
}

// SignUp validates the request, creates the unverified account with a fresh
// handle nonce, and issues the email challenge.
func (s *Service) SignUp(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	req.trim()

	if err := s.validateSignup(&req); err != nil {
		s.logger.Warn("signup rejected", zap.Error(err), zap.String("email", req.Email))
		return nil, err
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}

	nonce, err := s.generateHandleNonce()
	if err != nil {
		return nil, err
	}

	hashedPassword, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:               req.Name,
		Email:              req.Email,
		Handle:             req.Handle,
		Password:           hashedPassword,
		Verified:           false,
		PendingHandleNonce: nonce,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		s.logger.Error("failed to save user account", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("failed to save user account: %w", err)
	}

	if _, err := s.verification.IssueChallenge(ctx, user.ID, user.Email); err != nil {
		return nil, err
	}

	s.logger.Info("signup pending verification",
		zap.Uint("user_id", user.ID),
		zap.String("handle", user.Handle))
	return &SignupResult{
		UserID:      user.ID,
		Email:       user.Email,
		HandleNonce: nonce,
	}, nil
}

// ListHandles returns every account's Codeforces handle. Unauthenticated
// diagnostic data, as the original service exposed.
func (s *Service) ListHandles(ctx context.Context) ([]string, error) {
	var handles []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).Pluck("handle", &handles).Error; err != nil {
		return nil, fmt.Errorf("failed to list handles: %w", err)
	}
	return handles, nil
}
