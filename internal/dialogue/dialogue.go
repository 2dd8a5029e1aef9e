// Package dialogue runs the three-question authorization conversation
// (age range, gender, country) as a per-user finite-state machine.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mentalx/mentalxbot/internal/config"
	"github.com/mentalx/mentalxbot/internal/database"
	"github.com/mentalx/mentalxbot/internal/logger"
)

// ErrNoSession is returned by Handle when the user has no dialogue in progress.
var ErrNoSession = errors.New("no dialogue in progress")

// State is a dialogue state.
type State int

// Dialogue states. Done and Cancelled are terminal and are reported by the
// step that reaches them; afterwards the user is Idle again.
const (
	Idle State = iota
	AwaitingAge
	AwaitingGender
	AwaitingCountry
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingAge:
		return "awaiting_age"
	case AwaitingGender:
		return "awaiting_gender"
	case AwaitingCountry:
		return "awaiting_country"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Keyboard row widths per question.
const (
	ageRowSize     = 5
	countryRowSize = 2
)

// Committer persists a completed authorization. database.Store satisfies it.
type Committer interface {
	UpsertAuthorization(ctx context.Context, auth *database.Authorization) error
}

// Step is what the user should see after a transition.
type Step struct {
	State State
	Text  string
	// Keyboard holds the reply keyboard rows to show; nil means none.
	Keyboard [][]string
	// RemoveKeyboard asks the transport to hide a previously shown keyboard.
	RemoveKeyboard bool
}

type session struct {
	mu       sync.Mutex
	state    State
	ageRange string
	gender   string
}

// Manager holds every in-progress dialogue. Sessions of different users are
// independent.
type Manager struct {
	mu        sync.Mutex
	sessions  map[int64]*session
	options   config.DialogueConfig
	messages  config.MessagesConfig
	committer Committer
	log       *slog.Logger
}

// NewManager creates a Manager that commits completed dialogues through committer.
func NewManager(options config.DialogueConfig, messages config.MessagesConfig, committer Committer, log *slog.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		sessions:  make(map[int64]*session),
		options:   options,
		messages:  messages,
		committer: committer,
		log:       log.With("component", "dialogue"),
	}
}

// Start begins (or restarts) the dialogue for userID and asks for the age range.
func (m *Manager) Start(userID int64) Step {
	m.mu.Lock()
	m.sessions[userID] = &session{state: AwaitingAge}
	m.mu.Unlock()

	m.log.Debug("Dialogue started", "user_id", userID)
	return m.prompt(AwaitingAge, m.messages.Intro)
}

// State returns the user's current state, Idle when no dialogue is running.
func (m *Manager) State(userID int64) State {
	s := m.session(userID)
	if s == nil {
		return Idle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active reports whether userID is in the middle of a dialogue.
func (m *Manager) Active(userID int64) bool {
	switch m.State(userID) {
	case AwaitingAge, AwaitingGender, AwaitingCountry:
		return true
	}
	return false
}

// Cancel discards the user's dialogue without writing anything. ok is false
// when there was nothing to cancel.
func (m *Manager) Cancel(userID int64) (step Step, ok bool) {
	m.mu.Lock()
	_, ok = m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return Step{State: Idle, Text: m.messages.NothingToCancel}, false
	}

	m.log.Debug("Dialogue cancelled", "user_id", userID)
	return Step{State: Cancelled, Text: m.messages.Cancelled, RemoveKeyboard: true}, true
}

// Handle feeds one answer into the user's dialogue. Invalid answers leave the
// state unchanged. The country answer commits all three answers at once; if
// that commit fails the dialogue stays at the country question and the error
// is returned.
func (m *Manager) Handle(ctx context.Context, userID int64, text string) (Step, error) {
	s := m.session(userID)
	if s == nil {
		return Step{State: Idle}, ErrNoSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case AwaitingAge:
		age, ok := match(m.options.AgeRanges, text)
		if !ok {
			return m.prompt(AwaitingAge, m.messages.InvalidAge), nil
		}
		s.ageRange = age
		s.state = AwaitingGender
		return m.prompt(AwaitingGender, m.messages.AskGender), nil

	case AwaitingGender:
		gender, ok := match(m.options.Genders, text)
		if !ok {
			return m.prompt(AwaitingGender, m.messages.InvalidGender), nil
		}
		s.gender = gender
		s.state = AwaitingCountry
		return m.prompt(AwaitingCountry, m.messages.AskCountry), nil

	case AwaitingCountry:
		country, ok := match(m.options.Countries, text)
		if !ok {
			return m.prompt(AwaitingCountry, m.messages.InvalidCountry), nil
		}

		auth := &database.Authorization{
			UserID:   userID,
			AgeRange: s.ageRange,
			Gender:   s.gender,
			Country:  country,
		}
		if err := m.committer.UpsertAuthorization(ctx, auth); err != nil {
			m.log.ErrorContext(ctx, "Failed to commit authorization", "user_id", userID, "error", err)
			return m.prompt(AwaitingCountry, m.messages.GeneralError), fmt.Errorf("commit authorization: %w", err)
		}

		s.state = Done
		m.remove(userID, s)
		m.log.InfoContext(ctx, "Authorization completed", "user_id", userID,
			"age_range", auth.AgeRange, "gender", auth.Gender, "country", auth.Country)
		return Step{State: Done, Text: m.messages.Completed, RemoveKeyboard: true}, nil

	default:
		// Already committed by a concurrent answer.
		return Step{State: Idle}, ErrNoSession
	}
}

func (m *Manager) session(userID int64) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// remove deletes the session only if it was not replaced by a restart.
func (m *Manager) remove(userID int64, s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[userID] == s {
		delete(m.sessions, userID)
	}
}

func (m *Manager) prompt(state State, text string) Step {
	return Step{State: state, Text: text, Keyboard: m.keyboard(state)}
}

func (m *Manager) keyboard(state State) [][]string {
	switch state {
	case AwaitingAge:
		return chunk(m.options.AgeRanges, ageRowSize)
	case AwaitingGender:
		return chunk(m.options.Genders, len(m.options.Genders))
	case AwaitingCountry:
		return chunk(m.options.Countries, countryRowSize)
	}
	return nil
}

// match returns the canonical option equal to input, ignoring case and
// surrounding whitespace.
func match(options []string, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, opt := range options {
		if strings.EqualFold(input, strings.TrimSpace(opt)) {
			return opt, true
		}
	}
	return "", false
}

func chunk(items []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	rows := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		rows = append(rows, items[start:end])
	}
	return rows
}
