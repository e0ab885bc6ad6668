package testutils

import (
	"time"

	"github.com/arulyan/cfauth/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "cfauth test",
			URL:  "http://localhost:3000",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "3000",
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		Auth: config.AuthConfig{
			MinPasswordLength:   8,
			BcryptCost:          bcrypt.MinCost,
			VerificationExpiry:  6 * time.Hour,
			AllowedEmailDomains: []string{"srmist.edu.in", "lnmiit.ac.in"},
			HandleNonceLength:   6,
		},
		Codeforces: config.CodeforcesConfig{
			BaseURL: "https://codeforces.com",
			Timeout: 10 * time.Second,
		},
	}
}

var TestSignups = struct {
	Valid struct {
		Name     string
		Email    string
		Password string
		Handle   string
	}
}{
	Valid: struct {
		Name     string
		Email    string
		Password string
		Handle   string
	}{
		Name:     "Test User",
		Email:    "a@srmist.edu.in",
		Password: "12345678",
		Handle:   "abc",
	},
}
