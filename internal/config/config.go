package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v9"
)

// Store backends.
const (
	BackendFirestore = "firestore"
	BackendSQL       = "sql"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Auth   AuthConfig
	CORS   CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" envDefault:"8080"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend string `env:"STORE_BACKEND" envDefault:"firestore"`

	// Firestore backend
	FirebaseProjectID   string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS"` // service account file; empty = ADC

	// SQL backend (self-hosted / local development)
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBDSN    string `env:"DB_DSN" envDefault:"data/school-flow.db"`
}

// AuthConfig holds identity-provider verification configuration.
type AuthConfig struct {
	// IssuerURL overrides the default Firebase issuer derived from the
	// project ID. Audience defaults to the project ID as well.
	IssuerURL string `env:"AUTH_ISSUER_URL"`
	Audience  string `env:"AUTH_AUDIENCE"`

	// DevMode swaps the OIDC verifier for the static "dev:" token verifier.
	// Never enable outside local development.
	DevMode bool `env:"AUTH_DEV_MODE" envDefault:"false"`
}

// CORSConfig holds cross-origin configuration for the browser frontend.
type CORSConfig struct {
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

// GetAllowedOrigins returns the allowed origins as a slice.
func (c *CORSConfig) GetAllowedOrigins() []string {
	origins := strings.Split(c.AllowedOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Store); err != nil {
		return nil, fmt.Errorf("parsing store config: %w", err)
	}
	if err := env.Parse(&cfg.Auth); err != nil {
		return nil, fmt.Errorf("parsing auth config: %w", err)
	}
	if err := env.Parse(&cfg.CORS); err != nil {
		return nil, fmt.Errorf("parsing cors config: %w", err)
	}

	return cfg, nil
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFirestore:
		if c.Store.FirebaseProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore backend")
		}
	case BackendSQL:
		if c.Store.DBDriver == "" || c.Store.DBDSN == "" {
			return fmt.Errorf("DB_DRIVER and DB_DSN are required for the sql backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if !c.Auth.DevMode {
		if c.Auth.IssuerURL == "" && c.Store.FirebaseProjectID == "" {
			return fmt.Errorf("AUTH_ISSUER_URL is required when FIREBASE_PROJECT_ID is unset (or set AUTH_DEV_MODE for local development)")
		}
	}

	return nil
}
