package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mentalx/mentalxbot/internal/logger"
)

// ErrInvalidColumn is returned when a distribution is requested for a column
// that is not a demographic column.
var ErrInvalidColumn = errors.New("invalid demographic column")

// Store defines the persistence operations. Every write is a single atomic
// statement; callers never read-then-write.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertChat records a chat the first time it is seen; later calls are no-ops.
	UpsertChat(ctx context.Context, chat *Chat) error

	// AppendMessage inserts a new message and sets its ID.
	AppendMessage(ctx context.Context, message *Message) error

	// IncrementDailyCount inserts a count of 1 for (userID, date) or adds 1 to it.
	IncrementDailyCount(ctx context.Context, userID int64, date string) error

	// UpsertAuthorization inserts or overwrites a user's demographic answers.
	UpsertAuthorization(ctx context.Context, auth *Authorization) error

	// UpsertTextAnalysis replaces a user's latest concern-detection result.
	UpsertTextAnalysis(ctx context.Context, analysis *TextAnalysis) error

	// UpsertRiskScore replaces a user's latest risk score.
	UpsertRiskScore(ctx context.Context, score *RiskScore) error

	// GetUserMessages returns all messages of a user ordered by time.
	GetUserMessages(ctx context.Context, userID int64) ([]*Message, error)

	// GetDailyCounts returns a user's per-day counts ordered by date.
	GetDailyCounts(ctx context.Context, userID int64) ([]*DailyCount, error)

	// GetAuthorization returns a user's authorization, or nil, nil if absent.
	GetAuthorization(ctx context.Context, userID int64) (*Authorization, error)

	// GetUserSummaries returns every authorized user with their latest risk score.
	GetUserSummaries(ctx context.Context) ([]*UserSummary, error)

	// GetTextAnalysis returns a user's latest analysis, or nil, nil if absent.
	GetTextAnalysis(ctx context.Context, userID int64) (*TextAnalysis, error)

	// GetRiskScore returns a user's latest risk score, or nil, nil if absent.
	GetRiskScore(ctx context.Context, userID int64) (*RiskScore, error)

	// GetDistribution counts authorizations grouped by a demographic column.
	GetDistribution(ctx context.Context, column DemographicColumn) ([]DistributionEntry, error)

	// GetMessageUserIDs returns the distinct IDs of users that sent messages.
	GetMessageUserIDs(ctx context.Context) ([]int64, error)

	// RunSQLMaintenance performs database maintenance (VACUUM).
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// exec runs a single-statement write and logs the outcome under op.
func (s *sqlxStore) exec(ctx context.Context, op string, userID int64, query string, arg any) (sql.Result, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result, err := s.db.NamedExecContext(ctx, query, arg)
	switch {
	case isContextErr(err):
		s.logger.WarnContext(ctx, "Context timeout or cancellation during write", "op", op, "user_id", userID, "error", err)
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Write failed", "op", op, "user_id", userID, "error", err)
		return nil, fmt.Errorf("%s failed for user %d: %w", op, userID, err)
	}

	s.logger.DebugContext(ctx, "Write succeeded", "op", op, "user_id", userID)
	return result, nil
}

func (s *sqlxStore) UpsertChat(ctx context.Context, chat *Chat) error {
	if chat == nil {
		return errors.New("cannot save nil chat")
	}
	if chat.ChatID == 0 {
		return errors.New("chat must have a non-zero chat_id")
	}
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = s.now()
	}

	query := `
        INSERT INTO chats (chat_id, display_name, created_at)
        VALUES (:chat_id, :display_name, :created_at)
        ON CONFLICT(chat_id) DO NOTHING;
    `
	_, err := s.exec(ctx, "upsert chat", 0, query, chat)
	return err
}

func (s *sqlxStore) AppendMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return errors.New("cannot save nil message")
	}
	if message.ChatID == 0 {
		return errors.New("message must have a non-zero chat_id")
	}
	if message.UserID == 0 {
		return errors.New("message must have a non-zero user_id")
	}
	if message.Content == "" {
		return errors.New("message must have non-empty content")
	}
	if message.Timestamp.IsZero() {
		return errors.New("message must have a non-zero timestamp")
	}
	message.Timestamp = message.Timestamp.UTC()

	query := `
        INSERT INTO messages (chat_id, user_id, content, timestamp)
        VALUES (:chat_id, :user_id, :content, :timestamp);
    `
	result, err := s.exec(ctx, "append message", message.UserID, query, message)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"chat_id", message.ChatID, "user_id", message.UserID, "error", err)
		return nil
	}
	message.ID = uint(id) //nolint:gosec // row ids are positive
	return nil
}

func (s *sqlxStore) IncrementDailyCount(ctx context.Context, userID int64, date string) error {
	if userID == 0 {
		return errors.New("daily count must have a non-zero user_id")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("invalid daily count date %q: %w", date, err)
	}

	query := `
        INSERT INTO daily_counts (user_id, date, message_count)
        VALUES (:user_id, :date, 1)
        ON CONFLICT(user_id, date) DO UPDATE SET message_count = message_count + 1;
    `
	_, err := s.exec(ctx, "increment daily count", userID, query, &DailyCount{UserID: userID, Date: date})
	return err
}

func (s *sqlxStore) UpsertAuthorization(ctx context.Context, auth *Authorization) error {
	if auth == nil {
		return errors.New("cannot save nil authorization")
	}
	if auth.UserID == 0 {
		return errors.New("authorization must have a non-zero user_id")
	}
	if auth.AgeRange == "" || auth.Gender == "" || auth.Country == "" {
		return errors.New("authorization must have age range, gender and country")
	}

	now := s.now()
	auth.UpdatedAt = now
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = now
	}

	query := `
        INSERT INTO authorizations (user_id, age_range, gender, country, created_at, updated_at)
        VALUES (:user_id, :age_range, :gender, :country, :created_at, :updated_at)
        ON CONFLICT(user_id) DO UPDATE SET
            age_range  = excluded.age_range,
            gender     = excluded.gender,
            country    = excluded.country,
            updated_at = excluded.updated_at;
    `
	_, err := s.exec(ctx, "upsert authorization", auth.UserID, query, auth)
	return err
}

func (s *sqlxStore) UpsertTextAnalysis(ctx context.Context, analysis *TextAnalysis) error {
	if analysis == nil {
		return errors.New("cannot save nil text analysis")
	}
	if analysis.UserID == 0 {
		return errors.New("text analysis must have a non-zero user_id")
	}
	analysis.UpdatedAt = s.now()

	query := `
        INSERT INTO text_analyses (user_id, result_text, updated_at)
        VALUES (:user_id, :result_text, :updated_at)
        ON CONFLICT(user_id) DO UPDATE SET
            result_text = excluded.result_text,
            updated_at  = excluded.updated_at;
    `
	_, err := s.exec(ctx, "upsert text analysis", analysis.UserID, query, analysis)
	return err
}

func (s *sqlxStore) UpsertRiskScore(ctx context.Context, score *RiskScore) error {
	if score == nil {
		return errors.New("cannot save nil risk score")
	}
	if score.UserID == 0 {
		return errors.New("risk score must have a non-zero user_id")
	}
	if score.Percent < 0 || score.Percent > 100 {
		return fmt.Errorf("risk percent %.2f out of range [0,100]", score.Percent)
	}
	if score.Category == "" {
		return errors.New("risk score must have a category")
	}
	score.UpdatedAt = s.now()

	query := `
        INSERT INTO risk_scores (user_id, percent, category, updated_at)
        VALUES (:user_id, :percent, :category, :updated_at)
        ON CONFLICT(user_id) DO UPDATE SET
            percent    = excluded.percent,
            category   = excluded.category,
            updated_at = excluded.updated_at;
    `
	_, err := s.exec(ctx, "upsert risk score", score.UserID, query, score)
	return err
}

// selectAll runs a multi-row read and logs the outcome under op.
func (s *sqlxStore) selectAll(ctx context.Context, op string, dest any, query string, args ...any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	err := s.db.SelectContext(ctx, dest, query, args...)
	switch {
	case isContextErr(err):
		s.logger.WarnContext(ctx, "Context timeout or cancellation during read", "op", op, "error", err)
		return err
	case err != nil:
		s.logger.ErrorContext(ctx, "Read failed", "op", op, "error", err)
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return nil
}

// getOne runs a single-row read. It reports found=false instead of an error
// when no row matches.
func (s *sqlxStore) getOne(ctx context.Context, op string, dest any, query string, args ...any) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	err := s.db.GetContext(ctx, dest, query, args...)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case isContextErr(err):
		s.logger.WarnContext(ctx, "Context timeout or cancellation during read", "op", op, "error", err)
		return false, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Read failed", "op", op, "error", err)
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	return true, nil
}

func (s *sqlxStore) GetUserMessages(ctx context.Context, userID int64) ([]*Message, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	var messages []*Message
	query := `
        SELECT id, chat_id, user_id, content, timestamp
        FROM messages
        WHERE user_id = ?
        ORDER BY timestamp ASC, id ASC;
    `
	if err := s.selectAll(ctx, "get user messages", &messages, query, userID); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Fetched user messages", "user_id", userID, "count", len(messages))
	return messages, nil
}

func (s *sqlxStore) GetDailyCounts(ctx context.Context, userID int64) ([]*DailyCount, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	var counts []*DailyCount
	query := `
        SELECT user_id, date, message_count
        FROM daily_counts
        WHERE user_id = ?
        ORDER BY date ASC;
    `
	if err := s.selectAll(ctx, "get daily counts", &counts, query, userID); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *sqlxStore) GetAuthorization(ctx context.Context, userID int64) (*Authorization, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	var auth Authorization
	query := `
        SELECT id, user_id, age_range, gender, country, created_at, updated_at
        FROM authorizations WHERE user_id = ?;
    `
	found, err := s.getOne(ctx, "get authorization", &auth, query, userID)
	if err != nil || !found {
		return nil, err
	}
	return &auth, nil
}

func (s *sqlxStore) GetUserSummaries(ctx context.Context) ([]*UserSummary, error) {
	var summaries []*UserSummary
	query := `
        SELECT a.id, a.user_id, a.age_range, a.gender, a.country, a.created_at, a.updated_at,
               r.percent    AS risk_percent,
               r.category   AS risk_category,
               r.updated_at AS risk_updated_at
        FROM authorizations a
        LEFT JOIN risk_scores r ON r.user_id = a.user_id
        ORDER BY a.user_id ASC;
    `
	if err := s.selectAll(ctx, "get user summaries", &summaries, query); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (s *sqlxStore) GetTextAnalysis(ctx context.Context, userID int64) (*TextAnalysis, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	var analysis TextAnalysis
	query := `SELECT user_id, result_text, updated_at FROM text_analyses WHERE user_id = ?;`
	found, err := s.getOne(ctx, "get text analysis", &analysis, query, userID)
	if err != nil || !found {
		return nil, err
	}
	return &analysis, nil
}

func (s *sqlxStore) GetRiskScore(ctx context.Context, userID int64) (*RiskScore, error) {
	if userID == 0 {
		return nil, errors.New("user_id cannot be zero")
	}

	var score RiskScore
	query := `SELECT user_id, percent, category, updated_at FROM risk_scores WHERE user_id = ?;`
	found, err := s.getOne(ctx, "get risk score", &score, query, userID)
	if err != nil || !found {
		return nil, err
	}
	return &score, nil
}

func (s *sqlxStore) GetDistribution(ctx context.Context, column DemographicColumn) ([]DistributionEntry, error) {
	if !column.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColumn, column)
	}

	// column is whitelisted above, so formatting it into the query is safe.
	query := fmt.Sprintf(`
        SELECT %[1]s AS label, COUNT(*) AS total
        FROM authorizations
        GROUP BY %[1]s
        ORDER BY total DESC, label ASC;
    `, column)

	var entries []DistributionEntry
	if err := s.selectAll(ctx, "get "+strings.ReplaceAll(string(column), "_", " ")+" distribution", &entries, query); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *sqlxStore) GetMessageUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	query := `SELECT DISTINCT user_id FROM messages ORDER BY user_id ASC;`
	if err := s.selectAll(ctx, "get message user ids", &ids, query); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// VACUUM cannot run inside a transaction, so each statement goes on its own.
	for _, stmt := range []string{"PRAGMA optimize;", "VACUUM;"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if isContextErr(err) {
				s.logger.WarnContext(ctx, "Maintenance statement interrupted", "statement", stmt, "error", err)
			}
			return fmt.Errorf("maintenance %q: %w", stmt, err)
		}
		s.logger.DebugContext(ctx, "Maintenance statement done", "statement", stmt)
	}
	return nil
}
