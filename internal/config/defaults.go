package config

import "time"

// Default values for optional configuration keys.
const (
	DefaultLogLevel = "info"
	DefaultDBPath   = "mentalx.db"

	DefaultClassifierProvider    = "openai"
	DefaultClassifierModel       = "gpt-3.5-turbo"
	DefaultClassifierTemperature = 0.7
	DefaultClassifierTimeout     = 2 * time.Minute
	DefaultClassifierMaxRetries  = 2
	DefaultClassifierRetryDelay  = 2 * time.Second
	DefaultBreakerFailures       = 5
	DefaultBreakerCooldown       = time.Minute
	DefaultReplyInstruction      = "You are a warm, supportive conversational companion. Answer briefly and kindly, and gently encourage the user to seek professional help when they describe serious distress."

	DefaultMinWords    = 50
	DefaultWindowLines = 10
	DefaultTimezone    = "UTC"

	DefaultReportAddr            = ":8080"
	DefaultReportShutdownTimeout = 5 * time.Second
)

// Default closed option sets of the authorization dialogue.
var (
	DefaultAgeRanges = []string{"0-6", "7-11", "11-14", "15-17", "18-24", "25-34", "35-44", "45-54", "55-64", "65+"}
	DefaultGenders   = []string{"Male", "Female"}
	DefaultCountries = []string{"Armenia", "Azerbaijan", "Belarus", "Kazakhstan", "Kyrgyzstan", "Moldova", "Russia", "Tajikistan", "Uzbekistan"}
)

// DefaultMessages holds the default user-facing texts.
var DefaultMessages = MessagesConfig{
	Intro:             "Hello! I'm your friendly assistant. Let's get started! Please select your age range:",
	AskGender:         "Great! Now, please select your gender:",
	AskCountry:        "Finally, please select your country:",
	InvalidAge:        "Please select a valid age range from the keyboard.",
	InvalidGender:     "Please select a valid gender from the keyboard.",
	InvalidCountry:    "Please select a valid country from the keyboard.",
	Completed:         "Authorization completed. Thank you!",
	Cancelled:         "Authorization process has been cancelled.",
	NothingToCancel:   "There is nothing to cancel.",
	AuthorizationNeed: "Please complete the short questionnaire first: send /start.",
	Help:              "Send /start to answer three short questions, /cancel to stop. After that just write to me.",
	GeneralError:      "Sorry, something went wrong. Please try again later.",
	Unauthorized:      "You are not authorized to use this command.",
	UserIDUsage:       "Usage: /%s <user_id>",
	ReanalyzeDone:     "Reanalysis finished.",
}

var defaults = map[string]any{
	"log.level": DefaultLogLevel,
	"log.json":  false,

	"telegram.token":         "",
	"telegram.admin_user_id": 0,

	"database.path": DefaultDBPath,

	"classifier.provider":          DefaultClassifierProvider,
	"classifier.api_key":           "",
	"classifier.base_url":          "",
	"classifier.model":             DefaultClassifierModel,
	"classifier.temperature":       DefaultClassifierTemperature,
	"classifier.timeout":           DefaultClassifierTimeout,
	"classifier.max_retries":       DefaultClassifierMaxRetries,
	"classifier.retry_delay":       DefaultClassifierRetryDelay,
	"classifier.breaker_failures":  DefaultBreakerFailures,
	"classifier.breaker_cooldown":  DefaultBreakerCooldown,
	"classifier.reply_instruction": DefaultReplyInstruction,

	"analysis.min_words":    DefaultMinWords,
	"analysis.window_lines": DefaultWindowLines,
	"analysis.timezone":     DefaultTimezone,

	"dialogue.age_ranges":            DefaultAgeRanges,
	"dialogue.genders":               DefaultGenders,
	"dialogue.countries":             DefaultCountries,
	"dialogue.require_authorization": false,

	"messages.intro":              DefaultMessages.Intro,
	"messages.ask_gender":         DefaultMessages.AskGender,
	"messages.ask_country":        DefaultMessages.AskCountry,
	"messages.invalid_age":        DefaultMessages.InvalidAge,
	"messages.invalid_gender":     DefaultMessages.InvalidGender,
	"messages.invalid_country":    DefaultMessages.InvalidCountry,
	"messages.completed":          DefaultMessages.Completed,
	"messages.cancelled":          DefaultMessages.Cancelled,
	"messages.nothing_to_cancel":  DefaultMessages.NothingToCancel,
	"messages.authorization_need": DefaultMessages.AuthorizationNeed,
	"messages.help":               DefaultMessages.Help,
	"messages.general_error":      DefaultMessages.GeneralError,
	"messages.unauthorized":       DefaultMessages.Unauthorized,
	"messages.user_id_usage":      DefaultMessages.UserIDUsage,
	"messages.reanalyze_done":     DefaultMessages.ReanalyzeDone,

	"scheduler.tasks": map[string]any{
		"sql_maintenance": map[string]any{"enabled": true, "schedule": "0 0 4 * * *"},
		"risk_reanalysis": map[string]any{"enabled": false, "schedule": "0 30 3 * * *"},
	},

	"report.enabled":          false,
	"report.addr":             DefaultReportAddr,
	"report.allow_origins":    []string{"http://localhost:3000"},
	"report.shutdown_timeout": DefaultReportShutdownTimeout,
}
