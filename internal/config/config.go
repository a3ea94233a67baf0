package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
)

// APIURLEnvVar overrides apiBaseURL when set (directly or through a .env file)
const APIURLEnvVar = "GYMFLEX_API_URL"

const (
	defaultRequestTimeout = 30 * time.Second
	defaultListenAddr     = "127.0.0.1:8080"
)

// Closure is a recurring date the gym is closed, shown on calendar cells
type Closure struct {
	RRule string `yaml:"rrule" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// Config represents the application configuration
type Config struct {
	APIBaseURL            string    `yaml:"apiBaseURL" validate:"required,url"`
	RequestTimeoutSeconds int       `yaml:"requestTimeoutSeconds,omitempty" validate:"omitempty,min=1"`
	RequestsPerSecond     float64   `yaml:"requestsPerSecond,omitempty" validate:"omitempty,gt=0"`
	ForwardPlanningDays   int       `yaml:"forwardPlanningDays,omitempty" validate:"omitempty,min=1,max=365"`
	Timezone              string    `yaml:"timezone,omitempty"`
	Closures              []Closure `yaml:"closures,omitempty" validate:"dive"`
	AttendanceSheetID     string    `yaml:"attendanceSheetID,omitempty"`
	GoogleCredentialsFile string    `yaml:"googleCredentialsFile,omitempty" validate:"excluded_with=GoogleOAuthClientFile"`
	GoogleOAuthClientFile string    `yaml:"googleOAuthClientFile,omitempty"`
	WebListenAddr         string    `yaml:"webListenAddr,omitempty" validate:"omitempty,hostname_port"`
	CSRFKey               string    `yaml:"csrfKey,omitempty" validate:"omitempty,len=32"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads .env (if present) and then gymflex_config.<env>.yaml.
// It looks for the config file in the current directory first, then in the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	configPath, err := findConfigFile(configFileName(env))
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if apiURL := os.Getenv(APIURLEnvVar); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the closure rrules and the timezone
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.AttendanceSheetID != "" && cfg.GoogleCredentialsFile == "" && cfg.GoogleOAuthClientFile == "" {
		return fmt.Errorf("config validation failed: attendanceSheetID needs googleCredentialsFile or googleOAuthClientFile")
	}

	for i, closure := range cfg.Closures {
		if _, err := rrule.StrToRRule(closure.RRule); err != nil {
			return fmt.Errorf("invalid rrule in closures[%d]: %w", i, err)
		}
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	return nil
}

// RequestTimeout returns the HTTP client timeout
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// ForwardDays returns how far past the last session the calendar can navigate
func (c *Config) ForwardDays() int {
	if c.ForwardPlanningDays <= 0 {
		return calendar.DefaultForwardDays
	}
	return c.ForwardPlanningDays
}

// Location returns the gym's timezone, defaulting to the local zone
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		// Validate has already rejected unknown zones
		return time.Local
	}
	return loc
}

// ClosureRules compiles the configured closures
func (c *Config) ClosureRules() (calendar.Closures, error) {
	rules := make(calendar.Closures, 0, len(c.Closures))
	for i, closure := range c.Closures {
		rule, err := calendar.NewClosureRule(closure.RRule, closure.Label)
		if err != nil {
			return nil, fmt.Errorf("closures[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// ListenAddr returns the address for the serve command
func (c *Config) ListenAddr() string {
	if c.WebListenAddr == "" {
		return defaultListenAddr
	}
	return c.WebListenAddr
}

func configFileName(env string) string {
	return fmt.Sprintf("gymflex_config.%s.yaml", env)
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(configFileName string) (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
