package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mentalx/mentalxbot/internal/logger"
)

// ErrProviderUnavailable is returned without calling the provider while the
// breaker is open.
var ErrProviderUnavailable = errors.New("classifier provider unavailable")

const defaultBreakerCooldown = time.Minute

type breakerCompleter struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next so that maxFailures consecutive provider errors stop
// further calls for cooldown, after which a single probe call is let through.
// Cancelled requests do not count as failures.
func NewBreaker(next Completer, name string, maxFailures int, cooldown time.Duration, log *slog.Logger) Completer {
	if log == nil {
		log = logger.Discard()
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	if cooldown <= 0 {
		cooldown = defaultBreakerCooldown
	}
	l := log.With("component", "classifier_breaker")

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &breakerCompleter{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breakerCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Complete(ctx, systemPrompt, userPrompt, maxTokens)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	if err != nil {
		return "", err
	}
	text, _ := out.(string)
	return text, nil
}
