package models

import (
	"time"

	"gorm.io/gorm"
)

// UserVerification links an account to a pending email challenge. UniqueString
// is a bcrypt hash of the raw token; the raw token only ever travels inside the
// emailed link.
type UserVerification struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	UniqueString string    `json:"-" gorm:"not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
}

func (UserVerification) TableName() string {
	return "user_verifications"
}
