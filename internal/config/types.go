package config

import "time"

// LogConfig controls the slog handler.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ClassifierConfig selects and tunes the external text-completion provider.
type ClassifierConfig struct {
	Provider         string        `mapstructure:"provider"          validate:"oneof=openai gemini"`
	APIKey           string        `mapstructure:"api_key"`
	BaseURL          string        `mapstructure:"base_url"          validate:"omitempty,url"`
	Model            string        `mapstructure:"model"             validate:"required"`
	Temperature      float32       `mapstructure:"temperature"       validate:"min=0,max=2"`
	Timeout          time.Duration `mapstructure:"timeout"           validate:"min=1s,max=10m"`
	MaxRetries       int           `mapstructure:"max_retries"       validate:"min=0,max=10"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"       validate:"min=0,max=1m"`
	BreakerFailures  int           `mapstructure:"breaker_failures"  validate:"min=0,max=100"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"  validate:"min=0,max=1h"`
	ReplyInstruction string        `mapstructure:"reply_instruction" validate:"required"`
}

// AnalysisConfig tunes the minimum-data gate and the history window.
type AnalysisConfig struct {
	MinWords    int    `mapstructure:"min_words"    validate:"min=1"`
	WindowLines int    `mapstructure:"window_lines" validate:"min=1,max=200"`
	Timezone    string `mapstructure:"timezone"     validate:"required"`
}

// Location resolves the configured time zone used for per-day counts.
// Validation guarantees it loads, so an error here falls back to UTC.
func (a AnalysisConfig) Location() *time.Location {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DialogueConfig holds the closed option sets of the authorization dialogue.
type DialogueConfig struct {
	AgeRanges            []string `mapstructure:"age_ranges" validate:"min=1,dive,required"`
	Genders              []string `mapstructure:"genders"    validate:"min=1,dive,required"`
	Countries            []string `mapstructure:"countries"  validate:"min=1,dive,required"`
	RequireAuthorization bool     `mapstructure:"require_authorization"`
}

// MessagesConfig holds every user-facing text.
type MessagesConfig struct {
	Intro             string `mapstructure:"intro"              validate:"required"`
	AskGender         string `mapstructure:"ask_gender"         validate:"required"`
	AskCountry        string `mapstructure:"ask_country"        validate:"required"`
	InvalidAge        string `mapstructure:"invalid_age"        validate:"required"`
	InvalidGender     string `mapstructure:"invalid_gender"     validate:"required"`
	InvalidCountry    string `mapstructure:"invalid_country"    validate:"required"`
	Completed         string `mapstructure:"completed"          validate:"required"`
	Cancelled         string `mapstructure:"cancelled"          validate:"required"`
	NothingToCancel   string `mapstructure:"nothing_to_cancel"  validate:"required"`
	AuthorizationNeed string `mapstructure:"authorization_need" validate:"required"`
	Help              string `mapstructure:"help"               validate:"required"`
	GeneralError      string `mapstructure:"general_error"      validate:"required"`
	Unauthorized      string `mapstructure:"unauthorized"       validate:"required"`
	UserIDUsage       string `mapstructure:"user_id_usage"      validate:"required"`
	ReanalyzeDone     string `mapstructure:"reanalyze_done"     validate:"required"`
}

// SchedulerConfig maps task names to their cron schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a scheduled task on a cron expression (seconds field optional).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// ReportConfig configures the read-only reporting HTTP API.
type ReportConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr"             validate:"required_if=Enabled true"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0,max=1m"`
}
