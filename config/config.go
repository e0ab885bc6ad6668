package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Database   DatabaseConfig   `envPrefix:"DATABASE_"`
	Mail       MailConfig       `envPrefix:"MAIL_"`
	Auth       AuthConfig       `envPrefix:"AUTH_"`
	Codeforces CodeforcesConfig `envPrefix:"CODEFORCES_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"cfauth"`
	// URL is the externally reachable base URL embedded in verification links.
	URL        string `env:"URL" envDefault:"http://localhost:3000"`
	Production bool   `env:"PRODUCTION" envDefault:"false"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"3000"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"cfauth.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	Host        string `env:"HOST" envDefault:"smtp.gmail.com"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME"`
}

type AuthConfig struct {
	MinPasswordLength  int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	VerificationExpiry time.Duration `env:"VERIFICATION_EXPIRY" envDefault:"6h"`
	// AllowedEmailDomains restricts signup to the given institutional domains.
	AllowedEmailDomains []string `env:"ALLOWED_EMAIL_DOMAINS" envSeparator:"," envDefault:"srmist.edu.in,lnmiit.ac.in"`
	HandleNonceLength   int      `env:"HANDLE_NONCE_LENGTH" envDefault:"6"`
}

type CodeforcesConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://codeforces.com"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
