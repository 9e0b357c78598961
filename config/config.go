package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverFile     = "file"
	StoreDriverMySQL    = "mysql"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// DefaultDepartments is the department list offered by the request form.
var DefaultDepartments = []string{
	"Microbiología",
	"Bioquímica",
	"Biología Animal y Humana",
	"Biología Vegetal",
	"CEP",
	"Otro",
}

// Config is loaded once at process start and never mutated afterwards.
type Config struct {
	Port          string
	GinMode       string
	Environment   string
	DebugSQL      bool
	PublicBaseURL string
	MonitorToken  string
	Departments   []string

	// AllowedOrigins is the CORS allow list; empty allows any origin.
	AllowedOrigins []string

	Store   StoreConfig
	Uploads UploadConfig
	Reports ReportConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
}

type StoreConfig struct {
	Driver string
	// Path is the JSON file used by the file driver.
	Path string
	// Name is the blob key used by the database drivers.
	Name   string
	Branch string

	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	SQLitePath string

	MaxAttempts int
}

type UploadConfig struct {
	Path   string
	Prefix string
}

type ReportConfig struct {
	Dir          string
	TemplatePath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis write lock should be used.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// Enabled reports whether enough SMTP settings exist to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != ""
}

// Load reads the process environment.
func Load() (*Config, error) {
	return LoadFromEnv(os.Getenv)
}

// LoadFromEnv builds a Config using getenv as the variable source.
func LoadFromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		Port:          get("SERVER_PORT", "8080"),
		GinMode:       get("GIN_MODE", ""),
		Environment:   strings.ToLower(get("ENVIRONMENT", "development")),
		DebugSQL:      strings.ToLower(get("DEBUG_SQL", "")) == "true",
		PublicBaseURL: strings.TrimRight(get("PUBLIC_BASE_URL", ""), "/"),
		MonitorToken:  get("MONITOR_TOKEN", ""),
		Departments:   DefaultDepartments,
		Store: StoreConfig{
			Driver:     strings.ToLower(get("STORE_DRIVER", StoreDriverFile)),
			Path:       get("STORE_PATH", "data.json"),
			Name:       get("STORE_NAME", "data.json"),
			Branch:     get("STORE_BRANCH", "main"),
			DBHost:     get("DB_HOST", ""),
			DBPort:     get("DB_PORT", ""),
			DBDatabase: get("DB_DATABASE", ""),
			DBUsername: get("DB_USERNAME", ""),
			DBPassword: getenv("DB_PASSWORD"),
			SQLitePath: get("SQLITE_PATH", "web-requests.db"),
		},
		Uploads: UploadConfig{
			Path:   get("UPLOAD_PATH", "./uploads"),
			Prefix: strings.Trim(get("ATTACHMENT_PREFIX", "data"), "/"),
		},
		Reports: ReportConfig{
			Dir:          get("REPORT_DIR", "./reports"),
			TemplatePath: get("REPORT_TEMPLATE_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:     get("REDIS_ADDR", ""),
			Password: getenv("REDIS_PASSWORD"),
		},
		SMTP: SMTPConfig{
			Host:          get("SMTP_HOST", ""),
			User:          get("SMTP_USER", ""),
			Pass:          getenv("SMTP_PASS"),
			From:          get("SMTP_FROM", ""), // e.g. "Web FBio <no-reply@your.org>"
			SkipTLSVerify: getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		},
	}

	var err error
	if cfg.Store.MaxAttempts, err = atoiDefault(get("STORE_MAX_ATTEMPTS", ""), 3); err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_ATTEMPTS: %w", err)
	}
	if cfg.Store.MaxAttempts < 1 {
		return nil, errors.New("STORE_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.Redis.DB, err = atoiDefault(get("REDIS_DB", ""), 0); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.SMTP.Port, err = atoiDefault(get("SMTP_PORT", ""), 587); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	if raw := get("DEPARTMENTS", ""); raw != "" {
		departments := make([]string, 0)
		for _, part := range strings.Split(raw, ",") {
			if name := strings.TrimSpace(part); name != "" {
				departments = append(departments, name)
			}
		}
		if len(departments) == 0 {
			return nil, errors.New("DEPARTMENTS must list at least one department")
		}
		cfg.Departments = departments
	}

	for _, part := range strings.Split(get("CORS_ALLOWED_ORIGINS", ""), ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	switch cfg.Store.Driver {
	case StoreDriverFile, StoreDriverSQLite:
	case StoreDriverMySQL, StoreDriverPostgres:
		if cfg.Store.DBHost == "" || cfg.Store.DBDatabase == "" {
			return nil, fmt.Errorf("store driver %s requires DB_HOST and DB_DATABASE", cfg.Store.Driver)
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func atoiDefault(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
