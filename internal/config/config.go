package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// CoverageRule defines a recurring coverage requirement. When a schedule is
// planned, each rule is expanded over the schedule's date range into one
// shift slot per occurrence.
type CoverageRule struct {
	RRule     string `yaml:"rrule" validate:"required"`
	Role      string `yaml:"role" validate:"required"`
	ShiftType string `yaml:"shiftType" validate:"required,oneof=regular on_call"`
	StartTime string `yaml:"startTime" validate:"required,len=5"`
	EndTime   string `yaml:"endTime" validate:"required,len=5"`
}

// PlannerConfig holds the tunable planner parameters. Zero values fall back
// to the engine defaults.
type PlannerConfig struct {
	PreferredWeight     int `yaml:"preferredWeight" validate:"min=0"`
	NoPreferencePenalty int `yaml:"noPreferencePenalty" validate:"min=0"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL   string         `yaml:"databaseURL" validate:"required"`
	CoverageRules []CoverageRule `yaml:"coverageRules" validate:"dive"`
	Planner       PlannerConfig  `yaml:"planner"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from staff_rota_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
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

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	for i, rule := range cfg.CoverageRules {
		if _, err := rrule.StrToRRule(rule.RRule); err != nil {
			return fmt.Errorf("invalid rrule in coverageRules[%d]: %w", i, err)
		}
	}

	return nil
}

// findConfigFile searches for staff_rota_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "staff_rota_config.yaml"

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

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
