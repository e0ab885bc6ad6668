package models

import "gorm.io/gorm"

// User is an account created at signup. Verified flips true once the emailed
// verification link is consumed. PendingHandleNonce holds the random string the
// user must temporarily set as their Codeforces last name; it is cleared the
// first time the profile lookup confirms the match.
type User struct {
	gorm.Model
	Name               string `json:"name" gorm:"not null"`
	Email              string `json:"email" gorm:"uniqueIndex;not null"`
	Handle             string `json:"handle" gorm:"uniqueIndex;not null"`
	Password           string `json:"-" gorm:"not null"`
	Verified           bool   `json:"verified" gorm:"default:false"`
	PendingHandleNonce string `json:"-"`
}

func (User) TableName() string {
	return "users"
}
