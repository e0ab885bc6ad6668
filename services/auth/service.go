package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/services/codeforces"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/arulyan/cfauth/services/verification"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrEmptyFields           = errors.New("empty input fields")
	ErrInvalidName           = errors.New("invalid name entered")
	ErrInvalidEmail          = errors.New("invalid email entered")
	ErrInvalidHandle         = errors.New("invalid handle entered")
	ErrPasswordTooShort      = errors.New("password is too short")
	ErrEmailTaken            = errors.New("user with the provided email already exists")
	ErrEmptyCredentials      = errors.New("empty credentials supplied")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNotVerified           = errors.New("email has not been verified yet")
	ErrInvalidPassword       = errors.New("invalid password entered")
	ErrOracleUnavailable     = errors.New("codeforces profile lookup unavailable")
)

// HandleNotVerifiedError blocks signin until the user renames their
// Codeforces last name to ExpectedNonce.
type HandleNotVerifiedError struct {
	ExpectedNonce string
}

func (e *HandleNotVerifiedError) Error() string {
	return fmt.Sprintf("codeforces handle not verified, expected last name %q", e.ExpectedNonce)
}

type Service struct {
	config       *config.Config
	db           *gorm.DB
	verification *verification.Service
	oracle       codeforces.ProfileOracle
	logger       *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, verificationSvc *verification.Service, oracle codeforces.ProfileOracle, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:       cfg,
		db:           db,
		verification: verificationSvc,
		oracle:       oracle,
		logger:       logger,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// generateHandleNonce produces the random string the user must set as their
// Codeforces last name. Always from crypto/rand; nonces are never reused
// across accounts.
func (s *Service) generateHandleNonce() (string, error) {
	length := s.config.Auth.HandleNonceLength
	if length <= 0 {
		length = 6
	}
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate handle nonce: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
