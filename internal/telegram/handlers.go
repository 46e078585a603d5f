package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/domain"
	"github.com/ykvlv/diary-bot/internal/store"
)

// ensureProfile returns the chat's profile, creating one with defaults on
// first contact.
func (r *Router) ensureProfile(ctx context.Context, chatID int64, name string) (*domain.Profile, error) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	p = domain.NewProfile(chatID, name, r.defaultTZ)
	if err := r.repo.PutProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// --- /start ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	name := msg.Chat.FirstName
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}

	p, err := r.ensureProfile(ctx, chatID, name)
	if err != nil {
		r.log.Error("ensure profile failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.pres.Show(ctx, chatID, "Profile initialization error. Please try again later.", nil)
		return
	}

	sess := r.sessions.reset(chatID)

	// The welcome stays on screen; only the follow-up prompt is tracked.
	if _, err := r.pres.Send(chatID, welcomeText(p.Name), mainMenuKeyboard()); err != nil {
		r.log.Error("send welcome failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
	r.ensureNotifyTime(ctx, chatID, p, sess)
}

// ensureNotifyTime issues the one-time notification-time prompt when the
// profile has none set.
func (r *Router) ensureNotifyTime(ctx context.Context, chatID int64, p *domain.Profile, sess *Session) {
	if p.NotifyTime != "" || sess.WaitingForTime {
		return
	}
	sess.WaitingForTime = true
	text := fmt.Sprintf(
		"⏰ When should I remind you about your plans? (your zone: %s)\nWrite a time as HH:MM, e.g. 09:00.",
		domain.OffsetLabel(p.Timezone),
	)
	r.pres.Show(ctx, chatID, text, tgbotapi.NewRemoveKeyboard(true))
}

// --- Main menu ---

func (r *Router) onMainMenu(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID
	text := msg.Text

	if sess.WaitingForTime {
		r.handleTimeInput(ctx, chatID, text, sess)
		return
	}
	if sess.ChoosingTimezone {
		r.handleTimezoneChoice(ctx, chatID, text, sess)
		return
	}

	switch text {
	case btnConfigurePlans:
		r.beginPlanSetup(ctx, chatID)
	case btnGlobalPlans:
		r.openGlobalMenu(ctx, chatID, sess)
	case btnMyPlans:
		r.showWeeklyPlans(ctx, chatID)
	case btnTimezone:
		r.handleTimezoneCommand(ctx, chatID)
	default:
		r.pres.Show(ctx, chatID, "Pick what we do next:", mainMenuKeyboard())
	}
}

func (r *Router) handleTimeInput(ctx context.Context, chatID int64, text string, sess *Session) {
	sess.WaitingForTime = false

	clock, err := domain.ParseClock(text)
	if err != nil {
		// Single attempt; re-prompting requires re-invoking the flow.
		r.pres.Show(ctx, chatID,
			"❌ Couldn't read that time. I need HH:MM, e.g. 09:00.", mainMenuKeyboard())
		return
	}

	var tz string
	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.NotifyTime = clock
		tz = u.Timezone
		return nil
	}); err != nil {
		r.log.Error("save notify time failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.pres.Show(ctx, chatID, "Could not save the time. Please try again later.", mainMenuKeyboard())
		return
	}

	r.pres.Show(ctx, chatID,
		fmt.Sprintf("✅ Great! I'll write you at %s (%s).\n\nWhat's next?", clock, domain.OffsetLabel(tz)),
		mainMenuKeyboard())
}

func (r *Router) showWeeklyPlans(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.pres.Show(ctx, chatID, "Run /start first so I know your plans 😉", mainMenuKeyboard())
		return
	}
	r.pres.Show(ctx, chatID, weeklyPlansText(p), mainMenuKeyboard())
}

// --- Plan setup flow ---

func (r *Router) beginPlanSetup(ctx context.Context, chatID int64) {
	sess := r.sessions.reset(chatID)
	sess.State = StateChoosingDay
	r.pres.Show(ctx, chatID,
		"📅 Which day shall we start with? Mark only the days that matter now — the rest can wait ✨",
		dayKeyboard(btnSkipAll, btnDeleteDay))
}

func (r *Router) onChoosingDay(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID
	text := msg.Text

	switch text {
	case btnSkipAll, btnDone:
		r.finishPlanSetup(ctx, chatID, sess, text == btnSkipAll)
		return
	case btnDeleteDay:
		sess.DeletingDay = true
		r.pres.Show(ctx, chatID, "Pick the day whose plans should be wiped:", dayKeyboard())
		return
	}

	dayIdx := slices.Index(domain.DaysShort, text)
	if dayIdx < 0 {
		r.pres.Show(ctx, chatID, "❌ Please pick a day from the keyboard.", dayKeyboard(btnSkipAll, btnDeleteDay))
		return
	}
	dayName := domain.Days[dayIdx]

	if sess.DeletingDay {
		sess.DeletingDay = false
		if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
			u.Plans[dayName] = nil
			return nil
		}); err != nil {
			r.log.Error("clear day failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.pres.Show(ctx, chatID, "Could not clear that day.", mainMenuKeyboard())
			sess.State = StateMainMenu
			return
		}
		sess.State = StateMainMenu
		r.pres.Show(ctx, chatID, fmt.Sprintf("🗑️ All plans for %s removed.", dayName), mainMenuKeyboard())
		return
	}

	sess.DayIndex = dayIdx
	sess.DayName = dayName
	sess.SkipDay = false
	sess.Action = actionReplace
	sess.State = StateEnteringPlans
	r.pres.Show(ctx, chatID,
		fmt.Sprintf("📝 %s\n\nList your plans separated by semicolons (;).\nExample: go for a walk; buy milk; 18:30 call a friend", dayName),
		singleButtonKeyboard(btnSkipDay))
}

func (r *Router) finishPlanSetup(ctx context.Context, chatID int64, sess *Session, skipped bool) {
	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.SetupComplete = true
		return nil
	}); err != nil {
		r.log.Error("mark setup complete failed", zap.Error(err), zap.Int64("chatID", chatID))
	}

	text := "✅ Great! Plans saved. Back to the menu."
	if skipped {
		text = "👌 Leaving everything as is. Come back with /plan whenever you need.\n\nMain menu:"
	}
	r.sessions.reset(chatID)
	r.pres.Show(ctx, chatID, text, mainMenuKeyboard())

	if p, err := r.repo.GetProfile(ctx, chatID); err == nil {
		r.ensureNotifyTime(ctx, chatID, p, r.sessions.get(chatID))
	}
}

func (r *Router) onEnteringPlans(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID
	text := msg.Text

	switch text {
	case btnCancel:
		r.sessions.reset(chatID)
		r.pres.Show(ctx, chatID, "Okay, canceled. Here's the menu:", mainMenuKeyboard())
		return
	case btnSkipDay:
		sess.Pending = nil
		sess.SkipDay = true
	default:
		sess.Pending = domain.ParsePlanItems(text)
		sess.SkipDay = false
	}
	r.showReview(ctx, chatID, sess)
}

func (r *Router) showReview(ctx context.Context, chatID int64, sess *Session) {
	var existing []domain.PlanItem
	if sess.SkipDay {
		if p, err := r.repo.GetProfile(ctx, chatID); err == nil {
			existing = p.Plans[sess.DayName]
		}
	}
	sess.State = StateReviewPlans
	r.pres.Show(ctx, chatID, reviewText(sess.DayName, sess.Pending, existing, sess.SkipDay), reviewKeyboard())
}

func (r *Router) onReviewPlans(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID

	switch msg.Text {
	case btnAppend:
		sess.Action = actionAppend
		sess.State = StateEnteringPlans
		r.pres.Show(ctx, chatID,
			"Add items separated by semicolons — I'll append them to the current list:",
			singleButtonKeyboard(btnCancel))
	case btnRewrite:
		sess.Action = actionReplace
		sess.State = StateEnteringPlans
		r.pres.Show(ctx, chatID,
			"Enter the plans again (semicolons between items):",
			singleButtonKeyboard(btnCancel))
	case btnContinue:
		r.commitDay(ctx, chatID, sess)
	default:
		r.pres.Show(ctx, chatID, reviewText(sess.DayName, sess.Pending, nil, sess.SkipDay), reviewKeyboard())
	}
}

// commitDay writes the pending items for the chosen day (unless the day was
// skipped) and returns to the day chooser.
func (r *Router) commitDay(ctx context.Context, chatID int64, sess *Session) {
	if !sess.SkipDay {
		action, pending, day := sess.Action, sess.Pending, sess.DayName
		if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
			if action == actionAppend && len(pending) > 0 {
				u.Plans[day] = append(u.Plans[day], pending...)
			} else {
				u.Plans[day] = pending
			}
			return nil
		}); err != nil {
			r.log.Error("commit day failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.pres.Show(ctx, chatID, "Could not save the plans. Please try again.", mainMenuKeyboard())
			r.sessions.reset(chatID)
			return
		}
	}

	day := sess.DayName
	sess.Pending = nil
	sess.SkipDay = false
	sess.Action = actionReplace
	sess.State = StateChoosingDay
	r.pres.Show(ctx, chatID,
		fmt.Sprintf("✨ %s is ready. Pick the next day, press «%s» or «%s».", day, btnDone, btnDeleteDay),
		dayKeyboard(btnDone, btnDeleteDay))
}

// --- Global plans ---

func (r *Router) openGlobalMenu(ctx context.Context, chatID int64, sess *Session) {
	plans, err := r.repo.GetGlobalPlans(ctx, chatID)
	if err != nil {
		r.log.Error("load global plans failed", zap.Error(err), zap.Int64("chatID", chatID))
	}

	var head string
	if len(plans) > 0 {
		head = "🌍 Your long-term goals:\n\n"
		for i, g := range plans {
			head += fmt.Sprintf("%d. %s\n", i+1, g)
		}
	} else {
		head = "🌍 Nothing here yet. Shall we add a couple of big goals?\n"
	}

	sess.State = StateGlobalMenu
	r.pres.Show(ctx, chatID, head+"\nChoose an action:", globalMenuKeyboard())
}

func (r *Router) onGlobalMenu(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID

	switch msg.Text {
	case btnGlobalAdd:
		sess.GlobalAction = "add"
		sess.State = StateEnteringGlobalPlans
		r.pres.Show(ctx, chatID,
			"List your long-term goals separated by semicolons — I'll add them to the list:",
			tgbotapi.NewRemoveKeyboard(true))
	case btnGlobalRewrite:
		sess.GlobalAction = "replace"
		sess.State = StateEnteringGlobalPlans
		r.pres.Show(ctx, chatID,
			"Write the goals anew (they replace the previous ones):",
			tgbotapi.NewRemoveKeyboard(true))
	case btnGlobalDelete:
		sess.State = StateMainMenu
		err := r.repo.DeleteGlobalPlans(ctx, chatID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			r.pres.Show(ctx, chatID, "❌ Nothing to delete yet — the list is empty.\n\nMain menu:", mainMenuKeyboard())
		case err != nil:
			r.log.Error("delete global plans failed", zap.Error(err), zap.Int64("chatID", chatID))
			r.pres.Show(ctx, chatID, "Could not clear the list. Please try again later.", mainMenuKeyboard())
		default:
			r.pres.Show(ctx, chatID, "✅ Long-term goals cleared. A fresh start!\n\nMain menu:", mainMenuKeyboard())
		}
	case btnBack:
		sess.State = StateMainMenu
		r.pres.Show(ctx, chatID, "Main menu is open:", mainMenuKeyboard())
	default:
		r.openGlobalMenu(ctx, chatID, sess)
	}
}

func (r *Router) onEnteringGlobalPlans(ctx context.Context, msg *tgbotapi.Message, sess *Session) {
	r.pres.DismissInput(msg)
	chatID := msg.Chat.ID

	items := domain.ParseGlobalPlans(msg.Text)
	if sess.GlobalAction == "add" {
		existing, err := r.repo.GetGlobalPlans(ctx, chatID)
		if err != nil {
			r.log.Error("load global plans failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		items = append(existing, items...)
	}

	if err := r.repo.PutGlobalPlans(ctx, chatID, items); err != nil {
		r.log.Error("save global plans failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.pres.Show(ctx, chatID, "Could not save the goals. Please try again.", mainMenuKeyboard())
		sess.State = StateMainMenu
		return
	}

	sess.State = StateMainMenu
	r.pres.Show(ctx, chatID, "✅ Long-term goals updated! Back to the menu.", mainMenuKeyboard())
}

// --- /day ---

func (r *Router) handleDayCommand(ctx context.Context, chatID int64, arg string) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.pres.Show(ctx, chatID, "Press /start first so we can get acquainted 😉", nil)
		return
	}
	if arg == "" {
		r.pres.Show(ctx, chatID, "Write a date as DD.MM.YYYY, e.g. /day 12.05.2025", mainMenuKeyboard())
		return
	}
	date, err := domain.ParseDate(arg)
	if err != nil {
		r.pres.Show(ctx, chatID, "❌ I was hoping for a date like 12.05.2025 — try again 🙂", mainMenuKeyboard())
		return
	}

	dayName := domain.DayName(date.Weekday())
	global, err := r.repo.GetGlobalPlans(ctx, chatID)
	if err != nil {
		r.log.Error("load global plans failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
	r.pres.Show(ctx, chatID,
		dayViewText(date.Format("02.01.2006"), dayName, p.Plans[dayName], global),
		mainMenuKeyboard())
}

// --- /timezone ---

func (r *Router) handleTimezoneCommand(ctx context.Context, chatID int64) {
	if _, err := r.repo.GetProfile(ctx, chatID); err != nil {
		r.pres.Show(ctx, chatID, "Run /start first 😉", nil)
		return
	}
	sess := r.sessions.get(chatID)
	sess.ChoosingTimezone = true
	sess.State = StateMainMenu
	r.pres.Show(ctx, chatID, "Pick your timezone (by region name):", timezoneKeyboard())
}

func (r *Router) handleTimezoneChoice(ctx context.Context, chatID int64, text string, sess *Session) {
	if !slices.Contains(timezones, text) {
		r.pres.Show(ctx, chatID, "❌ I don't recognize that timezone. Pick one from the keyboard:", timezoneKeyboard())
		return
	}
	tz, err := domain.ValidateTZ(text)
	if err != nil {
		r.pres.Show(ctx, chatID, "❌ I don't recognize that timezone. Pick one from the keyboard:", timezoneKeyboard())
		return
	}

	sess.ChoosingTimezone = false
	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.Timezone = tz
		return nil
	}); err != nil {
		r.log.Error("save timezone failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.pres.Show(ctx, chatID, "Could not save the timezone.", mainMenuKeyboard())
		return
	}
	r.pres.Show(ctx, chatID,
		fmt.Sprintf("✅ Timezone updated: %s (%s).", tz, domain.OffsetLabel(tz)),
		mainMenuKeyboard())
}

// localNow projects the current instant into the profile's zone.
func (r *Router) localNow(p *domain.Profile) time.Time {
	return domain.LocalNow(time.Now(), p.Timezone, r.defaultTZ)
}
