package telegram

import (
	"context"
	"time"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// Scheduled-push delivery. These satisfy scheduler.Sender. Unlike Show, they
// bypass the single-visible-message replacement — pushes are unsolicited, not
// session replies — except that the morning brief replaces yesterday's brief.

// MorningBrief deletes the previous tracked brief, sends today's, and returns
// the new ref for the scheduler to record.
func (r *Router) MorningBrief(_ context.Context, p *domain.Profile, global []string, local time.Time) (domain.MessageRef, error) {
	if p.LastBriefMsg != nil {
		r.pres.Delete(*p.LastBriefMsg)
	}
	dayName := domain.DayName(local.Weekday())
	return r.pres.Send(p.ID, briefText(dayName, local.Format("02.01"), p.Plans[dayName], global), nil)
}

// ItemReminder sends a standalone reminder for one timed item.
func (r *Router) ItemReminder(_ context.Context, chatID int64, item domain.PlanItem) error {
	_, err := r.pres.Send(chatID, reminderText(item), nil)
	return err
}

// EveningSummary sends the nightly prompt to start the review.
func (r *Router) EveningSummary(_ context.Context, p *domain.Profile, local time.Time) error {
	dayName := domain.DayName(local.Weekday())
	_, err := r.pres.Send(p.ID, summaryText(local.Format("02.01.2006"), dayName, p.Plans[dayName]), nil)
	return err
}
