package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbrainhq/dbrain/pkg/models"
	"github.com/spf13/viper"
)

// ConfigurationManager defines the interface for loading and validating
// configuration from the .dbrain.yaml file.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file.
type viperConfigManager struct {
	// basePath is the root directory where .dbrain.yaml resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// defaultGlobalConfig returns a GlobalConfig populated with sensible defaults.
func defaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		DayCapacity:           DefaultDayCapacity,
		RescheduleHorizonDays: DefaultRescheduleHorizonDays,
		DuplicateRule:         DuplicateRuleContains,
	}
}

// LoadGlobalConfig reads the .dbrain.yaml file from the base path using
// Viper. If the file does not exist, sensible defaults are returned; the
// backend credential sections then stay empty and dispatch will fail with a
// configuration error rather than a fabricated request.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := defaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(".dbrain")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)

	// Credentials may also arrive from the environment, DBRAIN_ prefixed.
	v.SetEnvPrefix("dbrain")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("day_capacity", cfg.DayCapacity)
	v.SetDefault("reschedule_horizon_days", cfg.RescheduleHorizonDays)
	v.SetDefault("duplicate_rule", cfg.DuplicateRule)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .dbrain.yaml: %w", err)
	}

	cfg.Timezone = v.GetString("timezone")
	cfg.DayCapacity = v.GetInt("day_capacity")
	cfg.RescheduleHorizonDays = v.GetInt("reschedule_horizon_days")
	cfg.DuplicateRule = v.GetString("duplicate_rule")

	cfg.TickTick.AccessToken = v.GetString("ticktick.access_token")
	cfg.TickTick.ProjectID = v.GetString("ticktick.project_id")

	cfg.Planfix.Account = v.GetString("planfix.account")
	cfg.Planfix.Token = v.GetString("planfix.token")
	cfg.Planfix.DefaultProject = v.GetString("planfix.default_project")
	cfg.Planfix.Projects = v.GetStringMapString("planfix.projects")

	cfg.Calendar.CalendarID = v.GetString("calendar.calendar_id")

	cfg.Telegram.Enabled = v.GetBool("telegram.enabled")
	cfg.Telegram.BotToken = v.GetString("telegram.bot_token")
	cfg.Telegram.ChatID = v.GetString("telegram.chat_id")

	cfg.Routing.TeamKeywords = v.GetStringSlice("routing.team_keywords")
	cfg.Routing.PersonalKeywords = v.GetStringSlice("routing.personal_keywords")
	cfg.Routing.CalendarKeywords = v.GetStringSlice("routing.calendar_keywords")

	return cfg, nil
}

// ValidateConfig checks the provided configuration for invalid values and
// returns a clear error message identifying the problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.DayCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("day_capacity must be positive, got %d", cfg.DayCapacity))
	}

	if cfg.RescheduleHorizonDays <= 0 {
		errs = append(errs, fmt.Sprintf("reschedule_horizon_days must be positive, got %d", cfg.RescheduleHorizonDays))
	}

	if cfg.DuplicateRule != DuplicateRuleExact && cfg.DuplicateRule != DuplicateRuleContains {
		errs = append(errs, fmt.Sprintf(
			"duplicate_rule %q is invalid, must be one of: exact, contains",
			cfg.DuplicateRule,
		))
	}

	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("timezone %q is not a valid IANA zone", cfg.Timezone))
		}
	}

	if cfg.Planfix.Account != "" && strings.ContainsAny(cfg.Planfix.Account, "./") {
		errs = append(errs, fmt.Sprintf(
			"planfix.account %q must be the bare account name, not a URL",
			cfg.Planfix.Account,
		))
	}

	if cfg.Telegram.Enabled {
		if cfg.Telegram.BotToken == "" {
			errs = append(errs, "telegram.bot_token must be set when telegram.enabled is true")
		}
		if cfg.Telegram.ChatID == "" {
			errs = append(errs, "telegram.chat_id must be set when telegram.enabled is true")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
