package telegram

import (
	"sync"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// State enumerates the plan-entry conversation states. Every state has a
// handler in the router's transition table; unknown input inside a state is
// answered by that handler's fallback, never dropped.
type State int

const (
	StateMainMenu State = iota
	StateChoosingDay
	StateEnteringPlans
	StateReviewPlans
	StateGlobalMenu
	StateEnteringGlobalPlans
)

// Pending actions inside the entry flows.
const (
	actionReplace = "replace"
	actionAppend  = "append"
)

// Session is the ephemeral per-chat conversation state. It deliberately does
// not survive a restart: plan entry is short and resumable on the next message,
// unlike the persisted itog sub-record.
type Session struct {
	State State

	// One-off sub-flows gated by flags rather than dedicated states.
	WaitingForTime   bool
	ChoosingTimezone bool
	DeletingDay      bool

	// Plan-entry context.
	DayIndex int    // 0=Monday..6=Sunday
	DayName  string // canonical name of the day being edited
	Pending  []domain.PlanItem
	SkipDay  bool
	Action   string // actionReplace or actionAppend

	// Global-plan context.
	GlobalAction string // "add" or "replace"
}

// sessions holds per-chat Session values behind a mutex, the router-owns-state
// pattern.
type sessions struct {
	mu sync.Mutex
	m  map[int64]*Session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*Session)}
}

// get returns the chat's session, creating a fresh main-menu one if absent.
func (s *sessions) get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[chatID]
	if !ok {
		sess = &Session{State: StateMainMenu, Action: actionReplace}
		s.m[chatID] = sess
	}
	return sess
}

// reset drops the chat's session back to a clean main menu.
func (s *sessions) reset(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{State: StateMainMenu, Action: actionReplace}
	s.m[chatID] = sess
	return sess
}
