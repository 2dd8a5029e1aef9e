package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/mentalx/mentalxbot/internal/database"
)

// ErrEmptyContent rejects a message with no text.
var ErrEmptyContent = errors.New("message content is empty")

// Inbound is one text message as received from the transport.
type Inbound struct {
	ChatID     int64
	ChatTitle  string
	UserID     int64
	Content    string
	ReceivedAt time.Time
}

// Ingest records a message: the chat (first time only), the message itself,
// then the sender's count for the day. Only a failure to append the message
// is returned; the chat and count writes are logged and skipped on error.
func (p *Pipeline) Ingest(ctx context.Context, in Inbound) error {
	if strings.TrimSpace(in.Content) == "" {
		return ErrEmptyContent
	}
	if in.ChatID == 0 || in.UserID == 0 {
		return fmt.Errorf("inbound message needs chat and user ids (chat %d, user %d)", in.ChatID, in.UserID)
	}

	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = p.now()
	}
	log := p.log.With("chat_id", in.ChatID, "user_id", in.UserID)

	chat := &database.Chat{
		ChatID:      in.ChatID,
		DisplayName: sql.NullString{String: in.ChatTitle, Valid: in.ChatTitle != ""},
	}
	if err := p.store.UpsertChat(ctx, chat); err != nil {
		log.WarnContext(ctx, "Failed to record chat, continuing", "error", err)
	}

	msg := &database.Message{
		ChatID:    in.ChatID,
		UserID:    in.UserID,
		Content:   in.Content,
		Timestamp: receivedAt.UTC(),
	}
	if err := p.appendWithRetry(ctx, msg); err != nil {
		return err
	}

	date := receivedAt.In(p.location).Format(time.DateOnly)
	dbCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
	defer cancel()
	if err := p.store.IncrementDailyCount(dbCtx, in.UserID, date); err != nil {
		log.WarnContext(ctx, "Failed to increment daily count, continuing", "date", date, "error", err)
	}

	log.DebugContext(ctx, "Message ingested", "message_id", msg.ID, "date", date)
	return nil
}

// linearDelay waits retryDelay, then twice that, and so on.
func (p *Pipeline) linearDelay(n uint, _ error, _ *retry.Config) time.Duration {
	return p.retryDelay * time.Duration(n+1)
}

func (p *Pipeline) appendWithRetry(ctx context.Context, msg *database.Message) error {
	err := retry.Do(
		func() error {
			dbCtx, cancel := context.WithTimeout(ctx, dbWriteTimeout)
			defer cancel()
			return p.store.AppendMessage(dbCtx, msg)
		},
		retry.Context(ctx),
		retry.Attempts(appendAttempts),
		retry.Delay(p.retryDelay),
		retry.DelayType(p.linearDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			p.log.ErrorContext(ctx, "Failed to append message",
				"chat_id", msg.ChatID, "user_id", msg.UserID, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("append message after %d attempts: %w", appendAttempts, err)
	}
	return nil
}
