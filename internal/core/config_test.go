package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbrainhq/dbrain/pkg/models"
)

func TestLoadGlobalConfigMissingFileReturnsDefaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}
	if cfg.DayCapacity != DefaultDayCapacity {
		t.Errorf("DayCapacity = %d, want %d", cfg.DayCapacity, DefaultDayCapacity)
	}
	if cfg.RescheduleHorizonDays != DefaultRescheduleHorizonDays {
		t.Errorf("RescheduleHorizonDays = %d, want %d", cfg.RescheduleHorizonDays, DefaultRescheduleHorizonDays)
	}
	if cfg.DuplicateRule != DuplicateRuleContains {
		t.Errorf("DuplicateRule = %q, want %q", cfg.DuplicateRule, DuplicateRuleContains)
	}
}

func TestLoadGlobalConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
timezone: Europe/Moscow
day_capacity: 5
duplicate_rule: exact
ticktick:
  access_token: tok
  project_id: inbox
planfix:
  account: acme
  token: pf-tok
  default_project: "100"
  projects:
    smmekalka: "101"
calendar:
  calendar_id: primary
routing:
  team_keywords:
    - клиент
`
	if err := os.WriteFile(filepath.Join(dir, ".dbrain.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig: %v", err)
	}

	if cfg.Timezone != "Europe/Moscow" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.DayCapacity != 5 {
		t.Errorf("DayCapacity = %d, want 5", cfg.DayCapacity)
	}
	// Unset keys keep their defaults.
	if cfg.RescheduleHorizonDays != DefaultRescheduleHorizonDays {
		t.Errorf("RescheduleHorizonDays = %d, want default", cfg.RescheduleHorizonDays)
	}
	if cfg.DuplicateRule != DuplicateRuleExact {
		t.Errorf("DuplicateRule = %q, want exact", cfg.DuplicateRule)
	}
	if cfg.TickTick.ProjectID != "inbox" || cfg.TickTick.AccessToken != "tok" {
		t.Errorf("TickTick = %+v", cfg.TickTick)
	}
	if cfg.Planfix.Projects["smmekalka"] != "101" {
		t.Errorf("Planfix.Projects = %v", cfg.Planfix.Projects)
	}
	if len(cfg.Routing.TeamKeywords) != 1 || cfg.Routing.TeamKeywords[0] != "клиент" {
		t.Errorf("Routing.TeamKeywords = %v", cfg.Routing.TeamKeywords)
	}
}

func TestValidateConfigAcceptsDefaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(defaultGlobalConfig()); err != nil {
		t.Errorf("ValidateConfig(defaults) = %v, want nil", err)
	}
}

func TestValidateConfigRejectsInvalidValues(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	tests := []struct {
		name    string
		mutate  func(*models.GlobalConfig)
		wantMsg string
	}{
		{
			name:    "zero capacity",
			mutate:  func(c *models.GlobalConfig) { c.DayCapacity = 0 },
			wantMsg: "day_capacity must be positive",
		},
		{
			name:    "negative horizon",
			mutate:  func(c *models.GlobalConfig) { c.RescheduleHorizonDays = -1 },
			wantMsg: "reschedule_horizon_days must be positive",
		},
		{
			name:    "unknown duplicate rule",
			mutate:  func(c *models.GlobalConfig) { c.DuplicateRule = "fuzzy" },
			wantMsg: `duplicate_rule "fuzzy" is invalid`,
		},
		{
			name:    "bad timezone",
			mutate:  func(c *models.GlobalConfig) { c.Timezone = "Mars/Olympus" },
			wantMsg: "not a valid IANA zone",
		},
		{
			name:    "planfix account as URL",
			mutate:  func(c *models.GlobalConfig) { c.Planfix.Account = "acme.planfix.com" },
			wantMsg: "must be the bare account name",
		},
		{
			name:    "telegram enabled without token",
			mutate:  func(c *models.GlobalConfig) { c.Telegram.Enabled = true; c.Telegram.ChatID = "1" },
			wantMsg: "telegram.bot_token must be set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultGlobalConfig()
			tt.mutate(cfg)
			err := cm.ValidateConfig(cfg)
			if err == nil {
				t.Fatal("ValidateConfig = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}
