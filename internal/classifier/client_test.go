package classifier

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mentalx/mentalxbot/internal/config"
)

type fakeCompleter struct {
	mu      sync.Mutex
	answer  string
	err     error
	calls   []fakeCall
	waitCtx bool
}

type fakeCall struct {
	system    string
	user      string
	maxTokens int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{systemPrompt, userPrompt, maxTokens})
	f.mu.Unlock()

	if f.waitCtx {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func TestClient_DetectConcern(t *testing.T) {
	t.Parallel()

	fc := &fakeCompleter{answer: "YES: feeling low"}
	c := NewClient(fc, config.ClassifierConfig{Timeout: time.Second}, nil)

	got, err := c.DetectConcern(context.Background(), "[2024-03-01T10:00:00Z] hello")
	if err != nil {
		t.Fatalf("DetectConcern() error = %v", err)
	}
	if !got.Detected || got.Reason != "feeling low" {
		t.Errorf("DetectConcern() = %+v", got)
	}
	if len(fc.calls) != 1 || fc.calls[0].maxTokens != concernMaxTokens {
		t.Fatalf("calls = %+v", fc.calls)
	}
	if !strings.HasSuffix(fc.calls[0].user, "[2024-03-01T10:00:00Z] hello") {
		t.Errorf("prompt does not end with the window: %q", fc.calls[0].user)
	}
}

func TestClient_ScoreRiskFallback(t *testing.T) {
	t.Parallel()

	c := NewClient(&fakeCompleter{answer: "not sure"}, config.ClassifierConfig{}, nil)
	got, err := c.ScoreRisk(context.Background(), "window")
	if err != nil {
		t.Fatalf("ScoreRisk() error = %v", err)
	}
	if got != FallbackRisk {
		t.Errorf("ScoreRisk() = %+v, want fallback", got)
	}
}

func TestClient_CompleterError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	c := NewClient(&fakeCompleter{err: boom}, config.ClassifierConfig{}, nil)

	if _, err := c.ScoreRisk(context.Background(), "w"); !errors.Is(err, boom) {
		t.Errorf("ScoreRisk() error = %v, want boom", err)
	}
	if _, err := c.DetectConcern(context.Background(), "w"); !errors.Is(err, boom) {
		t.Errorf("DetectConcern() error = %v, want boom", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	c := NewClient(&fakeCompleter{waitCtx: true}, config.ClassifierConfig{Timeout: 10 * time.Millisecond}, nil)
	_, err := c.Reply(context.Background(), "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Reply() error = %v, want deadline exceeded", err)
	}
}

func TestClient_ReplyUsesInstruction(t *testing.T) {
	t.Parallel()

	fc := &fakeCompleter{answer: "Hello there"}
	c := NewClient(fc, config.ClassifierConfig{ReplyInstruction: "be kind"}, nil)

	got, err := c.Reply(context.Background(), "hi")
	if err != nil || got != "Hello there" {
		t.Fatalf("Reply() = %q, %v", got, err)
	}
	if fc.calls[0].system != "be kind" || fc.calls[0].user != "hi" || fc.calls[0].maxTokens != replyMaxTokens {
		t.Errorf("call = %+v", fc.calls[0])
	}
}

func TestClient_ReplyStripsMarkdown(t *testing.T) {
	t.Parallel()

	c := NewClient(&fakeCompleter{answer: "**You are not alone.** Talk to someone you trust."}, config.ClassifierConfig{}, nil)

	got, err := c.Reply(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if want := "You are not alone. Talk to someone you trust."; got != want {
		t.Errorf("Reply() = %q, want %q", got, want)
	}
}

func TestNewCompleter_UnknownProvider(t *testing.T) {
	t.Parallel()

	_, err := NewCompleter(context.Background(), config.ClassifierConfig{Provider: "yandex", APIKey: "k"}, nil)
	if err == nil {
		t.Error("NewCompleter() error = nil, want error")
	}
}

func TestClient_EmptyAnswerFallsBack(t *testing.T) {
	t.Parallel()

	fc := &fakeCompleter{answer: ""}
	c := NewClient(NewBreaker(fc, "test", 1, time.Hour, nil), config.ClassifierConfig{Timeout: time.Second}, nil)
	ctx := context.Background()

	concern, err := c.DetectConcern(ctx, "[2024-03-01T10:00:00Z] hello")
	if err != nil {
		t.Fatalf("DetectConcern() error = %v", err)
	}
	if concern != (Concern{Detected: false, Reason: ""}) {
		t.Errorf("DetectConcern() = %+v, want no concern with empty reason", concern)
	}

	risk, err := c.ScoreRisk(ctx, "[2024-03-01T10:00:00Z] hello")
	if err != nil {
		t.Fatalf("ScoreRisk() error = %v", err)
	}
	if risk != FallbackRisk {
		t.Errorf("ScoreRisk() = %+v, want %+v", risk, FallbackRisk)
	}

	// Empty answers are not provider failures, so the breaker stays closed.
	if _, err := c.ScoreRisk(ctx, "x"); err != nil {
		t.Errorf("third call error = %v, breaker should still be closed", err)
	}
	if len(fc.calls) != 3 {
		t.Errorf("provider calls = %d, want 3", len(fc.calls))
	}
}
