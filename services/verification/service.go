package verification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/models"
	"github.com/arulyan/cfauth/services/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrNotifyFailed = errors.New("verification email could not be sent")

// Notifier delivers the out-of-band verification message.
type Notifier interface {
	SendHTML(to []string, subject, htmlBody string) error
}

// ProofResult is the outcome of consuming a verification link.
type ProofResult int

const (
	ProofNotFound ProofResult = iota
	ProofVerified
	ProofExpired
	ProofInvalid
)

func (r ProofResult) String() string {
	switch r {
	case ProofVerified:
		return "verified"
	case ProofExpired:
		return "expired"
	case ProofInvalid:
		return "invalid"
	default:
		return "not_found"
	}
}

// Service issues email challenges, validates proofs and expires stale
// signups. Only a bcrypt hash of the challenge token is persisted; the raw
// token exists solely inside the emailed link.
type Service struct {
	config   *config.Config
	db       *gorm.DB
	notifier Notifier
	logger   *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, notifier Notifier, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config:   cfg,
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// IssueChallenge stores a fresh hashed challenge for the account and emails
// the raw token as a verification link. If the email fails after the record
// is stored, the record is retained and ErrNotifyFailed returned; there is no
// automatic rollback or retry.
func (s *Service) IssueChallenge(ctx context.Context, userID uint, email string) (*models.UserVerification, error) {
	rawToken := uuid.NewString() + strconv.FormatUint(uint64(userID), 10)

	hashed, err := bcrypt.GenerateFromPassword([]byte(rawToken), s.config.Auth.BcryptCost)
	if err != nil {
		s.logger.Error("failed to hash verification token", zap.Error(err), zap.Uint("user_id", userID))
		return nil, fmt.Errorf("failed to hash verification token: %w", err)
	}

	challenge := &models.UserVerification{
		UserID:       userID,
		UniqueString: string(hashed),
		ExpiresAt:    time.Now().Add(s.config.Auth.VerificationExpiry),
	}

	if err := s.db.WithContext(ctx).Create(challenge).Error; err != nil {
		s.logger.Error("failed to store verification challenge", zap.Error(err), zap.Uint("user_id", userID))
		return nil, fmt.Errorf("failed to store verification challenge: %w", err)
	}

	link := fmt.Sprintf("%s/user/verify/%d/%s", s.config.App.URL, userID, rawToken)
	body := fmt.Sprintf(
		`<p>Verify your email address to complete the signup and login into your account.</p>`+
			`<p>This link <b>expires in %s</b>.</p>`+
			`<p>Press <a href=%q>here</a> to proceed.</p>`,
		s.config.Auth.VerificationExpiry, link)

	if err := s.notifier.SendHTML([]string{email}, "Verify Your Email", body); err != nil {
		s.logger.Error("verification email delivery failed; challenge retained",
			zap.Error(err),
			zap.Uint("user_id", userID))
		return nil, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	s.logger.Info("verification challenge issued",
		zap.Uint("user_id", userID),
		zap.Time("expires_at", challenge.ExpiresAt))
	return challenge, nil
}

// ConsumeProof validates the raw token from a verification link. Expired
// challenges cascade: both the challenge and the account are removed, so the
// user can sign up again.
func (s *Service) ConsumeProof(ctx context.Context, userID uint, rawToken string) (ProofResult, error) {
	result := ProofNotFound

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var challenge models.UserVerification
		if err := tx.Where("user_id = ?", userID).First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = ProofNotFound
				return nil
			}
			return fmt.Errorf("failed to look up verification challenge: %w", err)
		}

		if time.Now().After(challenge.ExpiresAt) {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.UserVerification{}).Error; err != nil {
				return fmt.Errorf("failed to delete expired challenge: %w", err)
			}
			if err := tx.Unscoped().Where("id = ?", userID).Delete(&models.User{}).Error; err != nil {
				return fmt.Errorf("failed to delete expired signup: %w", err)
			}
			result = ProofExpired
			return nil
		}

		if err := bcrypt.CompareHashAndPassword([]byte(challenge.UniqueString), []byte(rawToken)); err != nil {
			result = ProofInvalid
			return nil
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("verified", true).Error; err != nil {
			return fmt.Errorf("failed to mark user verified: %w", err)
		}
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.UserVerification{}).Error; err != nil {
			return fmt.Errorf("failed to delete consumed challenge: %w", err)
		}
		result = ProofVerified
		return nil
	})
	if err != nil {
		s.logger.Error("proof consumption failed", zap.Error(err), zap.Uint("user_id", userID))
		return ProofNotFound, err
	}

	s.logger.Info("proof consumed",
		zap.Uint("user_id", userID),
		zap.String("result", result.String()))
	return result, nil
}

// ResendChallenge rotates the account's challenge: all prior challenges are
// deleted before a fresh one is issued, so at most one live challenge exists.
// Account existence is intentionally not re-checked here.
func (s *Service) ResendChallenge(ctx context.Context, userID uint, email string) (*models.UserVerification, error) {
	if err := s.db.WithContext(ctx).Unscoped().Where("user_id = ?", userID).Delete(&models.UserVerification{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete prior challenges: %w", err)
	}

	return s.IssueChallenge(ctx, userID, email)
}

// CleanupExpired sweeps challenges past their deadline, removing each one
// together with its abandoned signup. Returns the number of accounts removed.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	var removed int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []models.UserVerification
		if err := tx.Where("expires_at < ?", time.Now()).Find(&expired).Error; err != nil {
			return fmt.Errorf("failed to list expired challenges: %w", err)
		}

		for _, challenge := range expired {
			if err := tx.Unscoped().Where("user_id = ?", challenge.UserID).Delete(&models.UserVerification{}).Error; err != nil {
				return fmt.Errorf("failed to delete expired challenge: %w", err)
			}
			if err := tx.Unscoped().Where("id = ?", challenge.UserID).Delete(&models.User{}).Error; err != nil {
				return fmt.Errorf("failed to delete expired signup: %w", err)
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		s.logger.Info("expired signups removed", zap.Int64("count", removed))
	}
	return removed, nil
}
