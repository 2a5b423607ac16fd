package models

// GlobalConfig is the merged configuration loaded from .dbrain.yaml.
type GlobalConfig struct {
	// Timezone is the IANA zone name used when formatting dates for
	// backends. Empty means the system local zone.
	Timezone string `yaml:"timezone"`

	// DayCapacity is the per-day non-completed item budget used by the
	// workload balancer.
	DayCapacity int `yaml:"day_capacity"`
	// RescheduleHorizonDays bounds the balancer's forward scan.
	RescheduleHorizonDays int `yaml:"reschedule_horizon_days"`
	// DuplicateRule selects the title similarity rule: "exact" or "contains".
	DuplicateRule string `yaml:"duplicate_rule"`

	TickTick TickTickConfig `yaml:"ticktick"`
	Planfix  PlanfixConfig  `yaml:"planfix"`
	Calendar CalendarConfig `yaml:"calendar"`
	Telegram TelegramConfig `yaml:"telegram"`

	// Routing holds user-supplied keywords merged after the built-in rule
	// tables, so built-in evaluation order stays deterministic.
	Routing RoutingConfig `yaml:"routing"`
}

// TickTickConfig holds personal task store credentials and the target project.
type TickTickConfig struct {
	AccessToken string `yaml:"access_token"`
	ProjectID   string `yaml:"project_id"`
}

// PlanfixConfig holds team task store credentials and the per-company
// project map. DefaultProject receives team entries that match no company.
type PlanfixConfig struct {
	Account        string            `yaml:"account"`
	Token          string            `yaml:"token"`
	DefaultProject string            `yaml:"default_project"`
	Projects       map[string]string `yaml:"projects"`
}

// CalendarConfig identifies the target calendar.
type CalendarConfig struct {
	CalendarID string `yaml:"calendar_id"`
}

// TelegramConfig configures batch report delivery.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// RoutingConfig carries extra routing keywords per destination.
type RoutingConfig struct {
	TeamKeywords     []string `yaml:"team_keywords"`
	PersonalKeywords []string `yaml:"personal_keywords"`
	CalendarKeywords []string `yaml:"calendar_keywords"`
}
