package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mentalx/mentalxbot/internal/analysis"
	"github.com/mentalx/mentalxbot/internal/classifier"
	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/dialogue"
	"github.com/mentalx/mentalxbot/internal/logger"
)

const adminID = 1000

type sentMessage struct {
	chatID      string
	text        string
	replyMarkup string
}

// fakeTelegram records outgoing Bot API calls and answers them successfully.
type fakeTelegram struct {
	mu   sync.Mutex
	sent []sentMessage

	failChatAction bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseMultipartForm(1 << 20)
	w.Header().Set("Content-Type", "application/json")

	switch path.Base(r.URL.Path) {
	case "sendMessage":
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{
			chatID:      r.FormValue("chat_id"),
			text:        r.FormValue("text"),
			replyMarkup: r.FormValue("reply_markup"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
	case "sendChatAction":
		f.mu.Lock()
		fail := f.failChatAction
		f.mu.Unlock()
		if fail {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: not enough rights"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeTelegram) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type staticCompleter struct{ answer string }

func (s staticCompleter) Complete(context.Context, string, string, int) (string, error) {
	return s.answer, nil
}

type fixture struct {
	deps  HandlerDeps
	bot   *bot.Bot
	tg    *fakeTelegram
	store database.Store
}

func newFixture(t *testing.T, requireAuth bool) *fixture {
	t.Helper()

	tg := &fakeTelegram{}
	srv := httptest.NewServer(tg)
	t.Cleanup(srv.Close)

	b, err := bot.New("test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	if err != nil {
		t.Fatalf("bot.New() error = %v", err)
	}

	db, err := database.NewDB(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	cfg := &config.Config{
		Telegram: config.TelegramConfig{Token: "test-token", AdminUserID: adminID},
		Analysis: config.AnalysisConfig{MinWords: 50, WindowLines: 10, Timezone: "UTC"},
		Dialogue: config.DialogueConfig{
			AgeRanges:            config.DefaultAgeRanges,
			Genders:              config.DefaultGenders,
			Countries:            config.DefaultCountries,
			RequireAuthorization: requireAuth,
		},
		Messages: config.DefaultMessages,
	}

	log := logger.Discard()
	store := database.NewStore(db, log)
	cls := classifier.NewClient(staticCompleter{answer: "Thanks for sharing."}, cfg.Classifier, log)

	return &fixture{
		deps: HandlerDeps{
			Logger:   log,
			Config:   cfg,
			Store:    store,
			Dialogue: dialogue.NewManager(cfg.Dialogue, cfg.Messages, store, log),
			Pipeline: analysis.NewPipeline(store, cls, cfg.Analysis, log),
			Replier:  cls,
		},
		bot:   b,
		tg:    tg,
		store: store,
	}
}

func textUpdate(userID int64, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   7,
			Date: 1709283600,
			Text: text,
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate, FirstName: "Ann"},
			From: &models.User{ID: userID, FirstName: "Ann"},
		},
	}
}

func TestDialogueThroughHandlers(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	NewStartHandler(f.deps)(ctx, f.bot, textUpdate(5, "/start"))
	msgHandler := NewMessageHandler(f.deps)
	for _, answer := range []string{"25-34", "Female", "Armenia"} {
		msgHandler(ctx, f.bot, textUpdate(5, answer))
	}

	sent := f.tg.messages()
	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}
	if sent[0].text != config.DefaultMessages.Intro || !strings.Contains(sent[0].replyMarkup, `"keyboard"`) {
		t.Errorf("first message = %+v", sent[0])
	}
	if sent[3].text != config.DefaultMessages.Completed || !strings.Contains(sent[3].replyMarkup, `"remove_keyboard":true`) {
		t.Errorf("last message = %+v", sent[3])
	}

	auth, err := f.store.GetAuthorization(ctx, 5)
	if err != nil || auth == nil {
		t.Fatalf("GetAuthorization() = %v, %v", auth, err)
	}
	if auth.AgeRange != "25-34" || auth.Gender != "Female" || auth.Country != "Armenia" {
		t.Errorf("authorization = %+v", auth)
	}

	// Dialogue answers are not ingested as messages.
	msgs, err := f.store.GetUserMessages(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("dialogue answers stored as %d messages", len(msgs))
	}
}

func TestMessageHandler_IngestsAndReplies(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	NewMessageHandler(f.deps)(ctx, f.bot, textUpdate(6, "I slept badly again"))

	sent := f.tg.messages()
	if len(sent) != 1 || sent[0].text != "Thanks for sharing." {
		t.Fatalf("sent = %+v", sent)
	}

	msgs, err := f.store.GetUserMessages(ctx, 6)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("messages = %v, %v", msgs, err)
	}
	counts, err := f.store.GetDailyCounts(ctx, 6)
	if err != nil || len(counts) != 1 || counts[0].Date != "2024-03-01" || counts[0].Count != 1 {
		t.Errorf("daily counts = %+v, %v", counts, err)
	}
	ta, err := f.store.GetTextAnalysis(ctx, 6)
	if err != nil || ta == nil || ta.ResultText != "No concern detected: "+analysis.InsufficientDataReason {
		t.Errorf("text analysis = %+v, %v", ta, err)
	}
}

func TestMessageHandler_TypingFailureStillReplies(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	f.tg.mu.Lock()
	f.tg.failChatAction = true
	f.tg.mu.Unlock()
	ctx := context.Background()

	NewMessageHandler(f.deps)(ctx, f.bot, textUpdate(7, "long day at work"))

	sent := f.tg.messages()
	if len(sent) != 1 || sent[0].text != "Thanks for sharing." {
		t.Fatalf("sent = %+v", sent)
	}
	if msgs, err := f.store.GetUserMessages(ctx, 7); err != nil || len(msgs) != 1 {
		t.Errorf("messages = %v, %v", msgs, err)
	}
}

func TestMessageHandler_RequiresAuthorization(t *testing.T) {
	t.Parallel()
	f := newFixture(t, true)
	ctx := context.Background()

	NewMessageHandler(f.deps)(ctx, f.bot, textUpdate(8, "hello"))

	sent := f.tg.messages()
	if len(sent) != 1 || sent[0].text != config.DefaultMessages.AuthorizationNeed {
		t.Fatalf("sent = %+v", sent)
	}
	msgs, _ := f.store.GetUserMessages(ctx, 8)
	if len(msgs) != 0 {
		t.Errorf("unauthorized message was ingested")
	}
}

func TestAdminOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	called := false
	h := AdminOnly(f.deps)(func(context.Context, *bot.Bot, *models.Update) { called = true })

	h(ctx, f.bot, textUpdate(9, "/mx_user 5"))
	if called {
		t.Error("non-admin reached the handler")
	}
	if sent := f.tg.messages(); len(sent) != 1 || sent[0].text != config.DefaultMessages.Unauthorized {
		t.Errorf("sent = %+v", sent)
	}

	h(ctx, f.bot, textUpdate(adminID, "/mx_user 5"))
	if !called {
		t.Error("admin did not reach the handler")
	}
}

func TestUserHandler_UsageAndSummary(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	if err := f.store.UpsertRiskScore(ctx, &database.RiskScore{UserID: 5, Percent: 33, Category: "Orange"}); err != nil {
		t.Fatal(err)
	}

	h := NewUserHandler(f.deps)
	h(ctx, f.bot, textUpdate(adminID, "/mx_user"))
	h(ctx, f.bot, textUpdate(adminID, "/mx_user 5"))

	sent := f.tg.messages()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0].text != "Usage: /mx_user <user_id>" {
		t.Errorf("usage = %q", sent[0].text)
	}
	if !strings.Contains(sent[1].text, "Risk: 33.0% (Orange)") || !strings.Contains(sent[1].text, "Not authorized") {
		t.Errorf("summary = %q", sent[1].text)
	}
}

func TestParseUserIDArg(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"/mx_user 42", 42, false},
		{"/mx_user   42  ", 42, false},
		{"/mx_user", 0, true},
		{"/mx_user abc", 0, true},
		{"/mx_user -3", 0, true},
		{"/mx_user 1 2", 0, true},
	}
	for _, tt := range tests {
		got, err := parseUserIDArg(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseUserIDArg(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestReplyMarkup(t *testing.T) {
	t.Parallel()

	if replyMarkup(dialogue.Step{Text: "x"}) != nil {
		t.Error("step without keyboard produced markup")
	}

	kb, ok := replyMarkup(dialogue.Step{Keyboard: [][]string{{"a", "b"}, {"c"}}}).(*models.ReplyKeyboardMarkup)
	if !ok {
		t.Fatal("expected *models.ReplyKeyboardMarkup")
	}
	if len(kb.Keyboard) != 2 || kb.Keyboard[0][1].Text != "b" || kb.Keyboard[1][0].Text != "c" {
		t.Errorf("keyboard = %+v", kb.Keyboard)
	}

	if _, ok := replyMarkup(dialogue.Step{RemoveKeyboard: true}).(*models.ReplyKeyboardRemove); !ok {
		t.Error("expected *models.ReplyKeyboardRemove")
	}
}

func TestHelpHandler_AdminSeesAdminCommands(t *testing.T) {
	t.Parallel()
	f := newFixture(t, false)
	ctx := context.Background()

	h := NewHelpHandler(f.deps)
	h(ctx, f.bot, textUpdate(9, "/help"))
	h(ctx, f.bot, textUpdate(adminID, "/help"))

	sent := f.tg.messages()
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0].text != config.DefaultMessages.Help {
		t.Errorf("user help = %q", sent[0].text)
	}
	if !strings.HasPrefix(sent[1].text, config.DefaultMessages.Help) || !strings.Contains(sent[1].text, "/"+CommandReanalyze) {
		t.Errorf("admin help = %q", sent[1].text)
	}
}
