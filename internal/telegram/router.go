package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/store"
)

// handlerFunc processes one text message within a conversation state.
type handlerFunc func(ctx context.Context, msg *tgbotapi.Message, sess *Session)

// Router wires Telegram updates to handlers. Plan-entry conversation state is
// in-memory per chat; the itog checklist state lives in the persisted profile.
type Router struct {
	log       *zap.Logger
	repo      store.Repo
	pres      *Presenter
	sessions  *sessions
	defaultTZ string

	// state × text → handler. Built once in NewRouter; every state has an
	// entry, so there is always a defined fallback for unrecognized input.
	table map[State]handlerFunc
}

func NewRouter(api API, log *zap.Logger, repo store.Repo, defaultTZ string) *Router {
	r := &Router{
		log:       log,
		repo:      repo,
		pres:      NewPresenter(api, log, repo),
		sessions:  newSessions(),
		defaultTZ: defaultTZ,
	}
	r.table = map[State]handlerFunc{
		StateMainMenu:            r.onMainMenu,
		StateChoosingDay:         r.onChoosingDay,
		StateEnteringPlans:       r.onEnteringPlans,
		StateReviewPlans:         r.onReviewPlans,
		StateGlobalMenu:          r.onGlobalMenu,
		StateEnteringGlobalPlans: r.onEnteringGlobalPlans,
	}
	return r
}

// HandleUpdate routes a single update. Commands always win over conversation
// state; a pending itog session intercepts yes/no answers before the table.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		r.pres.DismissInput(msg)
		r.handleStart(ctx, msg)
	case strings.HasPrefix(text, "/plan"):
		r.pres.DismissInput(msg)
		r.beginPlanSetup(ctx, chatID)
	case strings.HasPrefix(text, "/itog"):
		r.pres.DismissInput(msg)
		r.handleItogStart(ctx, chatID)
	case strings.HasPrefix(text, "/day"):
		r.pres.DismissInput(msg)
		r.handleDayCommand(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/day")))
	case strings.HasPrefix(text, "/timezone"):
		r.pres.DismissInput(msg)
		r.handleTimezoneCommand(ctx, chatID)
	case r.routeItogAnswer(ctx, msg, text):
		// handled as an itog yes/no response
	default:
		sess := r.sessions.get(chatID)
		r.table[sess.State](ctx, msg, sess)
	}
}

// routeItogAnswer intercepts Yes/No while the profile has an open itog
// session. Returns false when the message should fall through to the table.
func (r *Router) routeItogAnswer(ctx context.Context, msg *tgbotapi.Message, text string) bool {
	if text != btnYes && text != btnNo {
		return false
	}
	prof, err := r.repo.GetProfile(ctx, msg.Chat.ID)
	if err != nil || prof.Itog == nil {
		return false
	}
	r.pres.DismissInput(msg)
	r.handleItogAnswer(ctx, msg.Chat.ID, text == btnYes)
	return true
}
