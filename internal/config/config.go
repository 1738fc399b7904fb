package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Distance sources
const (
	DistanceSourceTable   = "table"
	DistanceSourceCommand = "command"
	DistanceSourceStatic  = "static"
)

const (
	defaultDistanceTimeout = 5 * time.Second
	defaultCacheSize       = 10000
	defaultHTTPAddr        = ":8080"
	defaultSubject         = "Your care shifts"
)

// DatabaseConfig selects the store and how to reach it
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=postgres sqlite"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// DistanceConfig configures the zip-to-zip distance source and its cache
type DistanceConfig struct {
	Source    string        `yaml:"source" validate:"required,oneof=table command static"`
	TablePath string        `yaml:"tablePath,omitempty" validate:"required_if=Source table"`
	Command   string        `yaml:"command,omitempty" validate:"required_if=Source command"`
	Args      []string      `yaml:"args,omitempty"`
	WorkDir   string        `yaml:"workDir,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty" validate:"min=0"`
	CacheSize int           `yaml:"cacheSize,omitempty" validate:"min=0"`
}

// SchedulingConfig tunes the assignment engine
type SchedulingConfig struct {
	// Timezone that weekdays and times of day are read in. Defaults to UTC.
	Timezone              string   `yaml:"timezone,omitempty"`
	ReleaseDeclined       bool     `yaml:"releaseDeclined,omitempty"`
	EnforceWeeklyCapacity bool     `yaml:"enforceWeeklyCapacity,omitempty"`
	ContinuityValues      []string `yaml:"continuityValues,omitempty" validate:"dive,required"`
	// AutoRunRRule schedules automatic runs while serving, e.g. "FREQ=DAILY;BYHOUR=6;BYMINUTE=0"
	AutoRunRRule string `yaml:"autoRunRRule,omitempty"`
}

// HTTPConfig configures the API server
type HTTPConfig struct {
	Addr           string   `yaml:"addr,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// GoogleConfig configures the Sheets and Gmail integrations
type GoogleConfig struct {
	ScheduleSheetID     string `yaml:"scheduleSheetID,omitempty"`
	GmailUserID         string `yaml:"gmailUserID,omitempty"`
	GmailSender         string `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
	NotificationSubject string `yaml:"notificationSubject,omitempty"`
}

// Config represents the application configuration
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Distance   DistanceConfig   `yaml:"distance"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
	HTTP       HTTPConfig       `yaml:"http"`
	Google     GoogleConfig     `yaml:"google"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from care_scheduler_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="prod" will look for "care_scheduler_config.prod.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
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

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Distance.Timeout == 0 {
		c.Distance.Timeout = defaultDistanceTimeout
	}
	if c.Distance.CacheSize == 0 {
		c.Distance.CacheSize = defaultCacheSize
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = defaultHTTPAddr
	}
	if c.Google.GmailUserID == "" {
		c.Google.GmailUserID = "me"
	}
	if c.Google.NotificationSubject == "" {
		c.Google.NotificationSubject = defaultSubject
	}
}

// Validate validates the configuration struct, the timezone and the auto-run rrule
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := cfg.Scheduling.Location(); err != nil {
		return err
	}

	if cfg.Scheduling.AutoRunRRule != "" {
		if _, err := rrule.StrToRRule(cfg.Scheduling.AutoRunRRule); err != nil {
			return fmt.Errorf("invalid rrule in scheduling.autoRunRRule: %w", err)
		}
	}

	return nil
}

// Location resolves the scheduling timezone
func (s SchedulingConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduling.timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// findConfigFile searches for the config file in current directory and home directory
// If env is provided, it adds it as an extension (e.g., "care_scheduler_config.prod.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "care_scheduler_config.yaml"
	if env != "" {
		configFileName = "care_scheduler_config." + env + ".yaml"
	}
	return findFile(configFileName)
}

// findFile looks for name in the current directory, then in the home directory
func findFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", name)
}
