// Package config loads, defaults and validates the mentalxbot configuration.
// Values come from an optional YAML file, an optional .env file and
// MENTALX_* environment variables, in increasing order of precedence.
package config

import (
	"github.com/go-telegram/bot/models"
)

// Config is the complete application configuration. It is loaded once at
// startup and passed explicitly to the components that need it.
type Config struct {
	Log        LogConfig        `mapstructure:"log"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Dialogue   DialogueConfig   `mapstructure:"dialogue"`
	Messages   MessagesConfig   `mapstructure:"messages"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Report     ReportConfig     `mapstructure:"report"`
}

// TelegramConfig holds the bot credentials and the runtime bot identity.
type TelegramConfig struct {
	Token       string `mapstructure:"token"         validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"gte=0"`

	// BotInfo is filled in at startup from getMe, it is never read from the file.
	BotInfo *models.User `mapstructure:"-"`
}

// IsAdmin reports whether userID is the configured administrator.
func (t TelegramConfig) IsAdmin(userID int64) bool {
	return t.AdminUserID != 0 && userID == t.AdminUserID
}
