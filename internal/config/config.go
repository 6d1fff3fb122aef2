package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting the API needs. Required values
// fail fast at startup instead of surfacing as 500s later.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8000"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`

	// Public base URL used when building referral links and Stripe
	// return/refresh URLs, e.g. https://dealshark.com
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://dealshark.com"`

	// Frontend origin Stripe onboarding redirects land on.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"https://dealshark.com"`

	// R2 / S3 object storage
	R2AccessKey     string `env:"R2_ACCESS_KEY,required"`
	R2SecretKey     string `env:"R2_SECRET_KEY,required"`
	R2Bucket        string `env:"R2_BUCKET_NAME,required"`
	R2Endpoint      string `env:"R2_ENDPOINT,required"`
	R2PublicBaseURL string `env:"R2_PUBLIC_BASE_URL,required"`

	// Stripe Connect
	StripeSecretKey     string `env:"STRIPE_SECRET_KEY,required"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	// SMTP for OTP and referral notification mail
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"DealShark <no-reply@dealshark.com>"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// Load reads .env in non-production environments, then parses the
// process environment into a Config.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
