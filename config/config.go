package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"clearance/portal/models"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the portal
type Config struct {
	Port          string
	Env           string
	APIBaseURL    string
	APITimeout    time.Duration
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EncryptionKey string
	CSRFKey       string
	SecureCookies bool
	RoleNames     models.RoleNames
	DefaultRole   models.Role
	SweepInterval time.Duration
	AvatarMaxSide int
	CORSOrigins   string
}

// LoadEnv loads a .env file if present. Missing files are not an error.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println(".env file loaded")
	}
}

// Load reads the configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		Env:           getenv("ENV", "development"),
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8000"), "/"),
		APITimeout:    getenvDuration("API_TIMEOUT", 15*time.Second),
		DBPath:        getenv("DB_PATH", "./portal.db"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),
		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		CSRFKey:       os.Getenv("CSRF_KEY"),
		SecureCookies: getenvBool("SECURE_COOKIES", false),
		SweepInterval: getenvDuration("SESSION_SWEEP_INTERVAL", 0),
		AvatarMaxSide: getenvInt("AVATAR_MAX_SIDE", 512),
		CORSOrigins:   os.Getenv("CORS_ALLOWED_ORIGINS"),
	}

	names, err := models.ParseRoleNames(os.Getenv("ROLE_ALIASES"))
	if err != nil {
		return cfg, fmt.Errorf("invalid ROLE_ALIASES: %w", err)
	}
	cfg.RoleNames = names

	defaultRole := getenv("DEFAULT_ROLE", "student")
	role, ok := models.RoleFromSegment(defaultRole)
	if !ok {
		return cfg, fmt.Errorf("invalid DEFAULT_ROLE %q", defaultRole)
	}
	cfg.DefaultRole = role

	return cfg, nil
}

// IsDevelopment reports whether the portal runs outside production
func (c Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development" || c.Env == "dev"
}

// String renders the configuration with secrets masked
func (c Config) String() string {
	return fmt.Sprintf("port=%s env=%s api=%s timeout=%s db=%s redis=%q encryption_key=%s csrf_key=%s secure_cookies=%v default_role=%s sweep=%s",
		c.Port, c.Env, c.APIBaseURL, c.APITimeout, c.DBPath, c.RedisAddr,
		mask(c.EncryptionKey), mask(c.CSRFKey), c.SecureCookies, c.DefaultRole.Segment(), c.SweepInterval)
}

func mask(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "****"
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
