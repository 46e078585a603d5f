package telegram

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// handleItogStart begins the evening review: snapshot today's plan, post the
// checklist, ask about item 0. A prior open session's transient messages are
// torn down first.
func (r *Router) handleItogStart(ctx context.Context, chatID int64) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil {
		r.pres.Show(ctx, chatID, "Run /start first so I know about you 😉", nil)
		return
	}

	local := r.localNow(p)
	dayName := domain.DayName(local.Weekday())
	dateText := local.Format("02.01.2006")
	items := p.Plans[dayName]

	if len(items) == 0 {
		r.pres.Show(ctx, chatID,
			"Looks like there are no entries for today. Add some with /plan and I'll come back to the review later.",
			mainMenuKeyboard())
		return
	}

	if p.Itog != nil {
		r.teardownItog(chatID, p.Itog, false)
	}

	sess := domain.NewItogSession(dateText, dayName, items)

	listRef, err := r.pres.SendHTML(chatID, checklistText(sess))
	if err != nil {
		r.log.Error("send checklist failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	qRef, err := r.pres.Send(chatID, questionText(0, sess.Items[0]), yesNoKeyboard())
	if err != nil {
		r.log.Error("send itog question failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}
	sess.ListMessageID = listRef.MessageID
	sess.QuestionMessageID = qRef.MessageID

	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.Itog = sess
		return nil
	}); err != nil {
		r.log.Error("persist itog session failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// teardownItog deletes a session's service messages. The checklist is kept
// when the session finished normally, so the user retains the struck-through
// record.
func (r *Router) teardownItog(chatID int64, s *domain.ItogSession, keepList bool) {
	r.pres.Delete(domain.MessageRef{ChatID: chatID, MessageID: s.QuestionMessageID})
	if !keepList {
		r.pres.Delete(domain.MessageRef{ChatID: chatID, MessageID: s.ListMessageID})
	}
}

// handleItogAnswer processes one Yes/No reply for the open session.
func (r *Router) handleItogAnswer(ctx context.Context, chatID int64, yes bool) {
	p, err := r.repo.GetProfile(ctx, chatID)
	if err != nil || p.Itog == nil {
		r.pres.Show(ctx, chatID, "No review is active right now. Press /itog to start one.", mainMenuKeyboard())
		return
	}
	sess := p.Itog

	if len(sess.Items) == 0 {
		// Defensive: a session with no snapshot is discarded without applying.
		if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
			u.Itog = nil
			return nil
		}); err != nil {
			r.log.Error("discard empty itog failed", zap.Error(err), zap.Int64("chatID", chatID))
		}
		r.pres.Show(ctx, chatID, "Looks like there are no plans. Back to the menu.", mainMenuKeyboard())
		return
	}

	r.pres.Delete(domain.MessageRef{ChatID: chatID, MessageID: sess.QuestionMessageID})

	if sess.Answer(yes) {
		r.pres.EditHTML(domain.MessageRef{ChatID: chatID, MessageID: sess.ListMessageID}, checklistText(sess))
	}

	if sess.Done() {
		r.finishItog(ctx, chatID, sess)
		return
	}

	qRef, err := r.pres.Send(chatID, questionText(sess.Index, sess.Current()), yesNoKeyboard())
	if err != nil {
		r.log.Error("send itog question failed", zap.Error(err), zap.Int64("chatID", chatID))
	} else {
		sess.QuestionMessageID = qRef.MessageID
	}

	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.Itog = sess
		return nil
	}); err != nil {
		r.log.Error("persist itog progress failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// finishItog applies the results and clears the session in one atomic store
// update, so the plan mutation can never be replayed.
func (r *Router) finishItog(ctx context.Context, chatID int64, sess *domain.ItogSession) {
	if err := r.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		if u.Itog == nil {
			return nil // already applied by a concurrent answer
		}
		u.Plans[sess.DayName] = sess.Apply(u.Plans[sess.DayName])
		u.Itog = nil
		return nil
	}); err != nil {
		r.log.Error("apply itog results failed", zap.Error(err), zap.Int64("chatID", chatID))
		r.pres.Show(ctx, chatID, "Could not save the review results.", mainMenuKeyboard())
		return
	}

	r.sessions.reset(chatID)
	r.pres.Show(ctx, chatID,
		fmt.Sprintf("✅ Done! Completed %d of %d. Proud of your progress.\n\nBack to the main menu:",
			sess.CompletedCount(), len(sess.Items)),
		mainMenuKeyboard())
}
