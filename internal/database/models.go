package database

import (
	"database/sql"
	"time"
)

// Chat is a Telegram chat seen at least once. Created on first message and
// never updated afterwards.
type Chat struct {
	ID          uint           `db:"id"`
	ChatID      int64          `db:"chat_id"`
	DisplayName sql.NullString `db:"display_name"`
	CreatedAt   time.Time      `db:"created_at"`
}

// Message is one inbound text message. Messages are append-only.
type Message struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	UserID    int64     `db:"user_id"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// DailyCount is the number of messages a user sent on one calendar date.
type DailyCount struct {
	UserID int64  `db:"user_id"`
	Date   string `db:"date"` // YYYY-MM-DD
	Count  int64  `db:"message_count"`
}

// Authorization holds the three demographic answers of a completed dialogue.
type Authorization struct {
	ID        uint      `db:"id"`
	UserID    int64     `db:"user_id"`
	AgeRange  string    `db:"age_range"`
	Gender    string    `db:"gender"`
	Country   string    `db:"country"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TextAnalysis is the latest concern-detection result for a user.
type TextAnalysis struct {
	UserID     int64     `db:"user_id"`
	ResultText string    `db:"result_text"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// RiskScore is the latest risk percentage and category for a user.
type RiskScore struct {
	UserID    int64     `db:"user_id"`
	Percent   float64   `db:"percent"`
	Category  string    `db:"category"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UserSummary joins a user's authorization with their latest risk score, if any.
type UserSummary struct {
	Authorization
	RiskPercent   sql.NullFloat64 `db:"risk_percent"`
	RiskCategory  sql.NullString  `db:"risk_category"`
	RiskUpdatedAt sql.NullTime    `db:"risk_updated_at"`
}

// DistributionEntry is one group of a demographic breakdown.
type DistributionEntry struct {
	Label string `db:"label" json:"label"`
	Count int64  `db:"total" json:"count"`
}

// DemographicColumn names an Authorization column that can be grouped on.
type DemographicColumn string

// Groupable demographic columns.
const (
	ColumnAgeRange DemographicColumn = "age_range"
	ColumnGender   DemographicColumn = "gender"
	ColumnCountry  DemographicColumn = "country"
)

// DemographicColumns lists every groupable column in display order.
var DemographicColumns = []DemographicColumn{ColumnAgeRange, ColumnGender, ColumnCountry}

// Valid reports whether c is one of the groupable columns.
func (c DemographicColumn) Valid() bool {
	switch c {
	case ColumnAgeRange, ColumnGender, ColumnCountry:
		return true
	}
	return false
}
