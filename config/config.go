package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerConfig
	FirebaseConfig
	AuthConfig
	CloudinaryConfig
	SMTPConfig
	RecaptchaConfig
}

type ServerConfig struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	GinMode       string        `envconfig:"GIN_MODE" default:"release"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	Store         string        `envconfig:"APP_STORE" default:"firestore"`
	CORSOrigins   []string      `envconfig:"CORS_ORIGINS"`
	DraftTTL      time.Duration `envconfig:"DRAFT_TTL" default:"30m"`
	StatusPageURL string        `envconfig:"STATUS_PAGE_URL" default:"/registration-status"`
	// CertificateFont is a TrueType font for member certificates.
	CertificateFont string `envconfig:"CERTIFICATE_FONT_FILE"`
}

type FirebaseConfig struct {
	CredentialsFile   string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_1" masked:"true"`
	ProjectID         string `envconfig:"FIREBASE_PROJECT_ID"`
	NotificationDocID string `envconfig:"NOTIFICATION_DOC_ID" default:"iZyxBa9DvQc1RdmI2JXu"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"JWT_SECRET_KEY" masked:"true"`
	TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"60m"`
}

type CloudinaryConfig struct {
	CloudName    string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	APIKey       string `envconfig:"CLOUDINARY_API_KEY" masked:"true"`
	APISecret    string `envconfig:"CLOUDINARY_API_SECRET" masked:"true"`
	UploadPreset string `envconfig:"CLOUDINARY_UPLOAD_PRESET" default:"activity-photos"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     string `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME" masked:"true"`
	Password string `envconfig:"SMTP_PASSWORD" masked:"true"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

type RecaptchaConfig struct {
	ProjectID       string  `envconfig:"GOOGLE_CLOUD_PROJECT_ID"`
	SiteKey         string  `envconfig:"RECAPTCHA_SITE_KEY" masked:"true"`
	CredentialsFile string  `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_2" masked:"true"`
	MinScore        float32 `envconfig:"RECAPTCHA_MIN_SCORE" default:"0.5"`
}

func (c RecaptchaConfig) Enabled() bool {
	return c.ProjectID != "" && c.SiteKey != ""
}

// Load reads an optional .env file at path and then the process
// environment. A missing .env file is not an error.
func Load(path string) (*Config, bool, error) {
	loadedFile := true
	if err := godotenv.Load(path); err != nil {
		loadedFile = false
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, loadedFile, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.check(); err != nil {
		return nil, loadedFile, err
	}
	return &cfg, loadedFile, nil
}

func (c *Config) check() error {
	switch c.Store {
	case "firestore":
		if c.FirebaseConfig.CredentialsFile == "" {
			return fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown APP_STORE %q", c.Store)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("environment variable JWT_SECRET_KEY is not set")
	}
	return nil
}
