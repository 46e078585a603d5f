package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/domain"
	"github.com/ykvlv/diary-bot/internal/store"
)

// keepFiredDays bounds growth of the per-profile reminder dedup set.
const keepFiredDays = 7

// sendTimeout bounds a single outbound delivery so one slow recipient cannot
// stall the shared tick.
const sendTimeout = 10 * time.Second

// Sender delivers the three scheduled event kinds. telegram.Router implements
// it; tests substitute a fake.
type Sender interface {
	// MorningBrief sends today's plan plus the global list and returns the ref
	// of the new message so the scheduler can track it for replacement.
	MorningBrief(ctx context.Context, p *domain.Profile, global []string, local time.Time) (domain.MessageRef, error)
	// ItemReminder sends a standalone reminder for one timed item.
	ItemReminder(ctx context.Context, chatID int64, item domain.PlanItem) error
	// EveningSummary sends the fixed-time nightly prompt to start the review.
	EveningSummary(ctx context.Context, p *domain.Profile, local time.Time) error
}

// Scheduler evaluates every profile against its local time once per tick and
// delivers due morning briefs, item reminders and evening summaries, each at
// most once per occurrence.
type Scheduler struct {
	repo        store.Repo
	log         *zap.Logger
	sender      Sender
	interval    time.Duration
	summaryTime string // local HH:MM
	defaultTZ   string
	now         func() time.Time // injectable for tests
}

func New(repo store.Repo, log *zap.Logger, sender Sender, interval time.Duration, summaryTime, defaultTZ string) *Scheduler {
	return &Scheduler{
		repo:        repo,
		log:         log,
		sender:      sender,
		interval:    interval,
		summaryTime: summaryTime,
		defaultTZ:   defaultTZ,
		now:         time.Now,
	}
}

// Run starts the loop until ctx is canceled. Tick failures are logged and the
// loop waits for the next interval; nothing terminates it short of cancellation.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one scheduling cycle over all profiles. A failure for one
// profile never aborts processing of the rest.
func (s *Scheduler) Tick(ctx context.Context) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		s.log.Error("list profiles failed", zap.Error(err))
		return
	}

	now := s.now()
	for _, p := range profiles {
		s.process(ctx, now, p)
	}
}

func (s *Scheduler) process(ctx context.Context, now time.Time, p *domain.Profile) {
	local := domain.LocalNow(now, p.Timezone, s.defaultTZ)
	hhmm := local.Format("15:04")
	today := local.Format("2006-01-02")
	dayName := domain.DayName(local.Weekday())

	if p.SetupComplete && p.NotifyTime == hhmm && p.LastBriefDate != today {
		s.sendBrief(ctx, p, local, today)
	}

	for _, it := range p.Plans[dayName] {
		if it.Time != hhmm {
			continue
		}
		key := domain.ReminderKey(today, it)
		if p.Fired[key] {
			continue
		}
		s.sendReminder(ctx, p, it, key, today)
	}

	if p.SetupComplete && hhmm == s.summaryTime && p.LastSummary != today {
		s.sendSummary(ctx, p, local, today)
	}
}

func (s *Scheduler) sendBrief(ctx context.Context, p *domain.Profile, local time.Time, today string) {
	global, err := s.repo.GetGlobalPlans(ctx, p.ID)
	if err != nil {
		s.log.Warn("load global plans failed", zap.Error(err), zap.Int64("chatID", p.ID))
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	ref, err := s.sender.MorningBrief(sendCtx, p, global, local)
	cancel()
	if err != nil {
		s.log.Error("morning brief failed", zap.Error(err), zap.Int64("chatID", p.ID))
		return
	}

	if err := s.repo.UpdateProfile(ctx, p.ID, func(u *domain.Profile) error {
		u.LastBriefDate = today
		u.LastBriefMsg = &ref
		return nil
	}); err != nil {
		s.log.Error("persist brief marker failed", zap.Error(err), zap.Int64("chatID", p.ID))
	}
}

func (s *Scheduler) sendReminder(ctx context.Context, p *domain.Profile, it domain.PlanItem, key, today string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err := s.sender.ItemReminder(sendCtx, p.ID, it)
	cancel()
	if err != nil {
		s.log.Error("item reminder failed", zap.Error(err), zap.Int64("chatID", p.ID))
		return
	}

	if err := s.repo.UpdateProfile(ctx, p.ID, func(u *domain.Profile) error {
		u.PruneFired(cutoffDate(today))
		u.Fired[key] = true
		return nil
	}); err != nil {
		s.log.Error("persist reminder marker failed", zap.Error(err), zap.Int64("chatID", p.ID))
	}
	// Mark the in-memory copy too so two items sharing a minute within one tick
	// don't both re-check storage.
	p.Fired[key] = true
}

func (s *Scheduler) sendSummary(ctx context.Context, p *domain.Profile, local time.Time, today string) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err := s.sender.EveningSummary(sendCtx, p, local)
	cancel()
	if err != nil {
		s.log.Error("evening summary failed", zap.Error(err), zap.Int64("chatID", p.ID))
		return
	}

	if err := s.repo.UpdateProfile(ctx, p.ID, func(u *domain.Profile) error {
		u.LastSummary = today
		return nil
	}); err != nil {
		s.log.Error("persist summary marker failed", zap.Error(err), zap.Int64("chatID", p.ID))
	}
}

// cutoffDate returns the YYYY-MM-DD string keepFiredDays before today.
func cutoffDate(today string) string {
	t, err := time.Parse("2006-01-02", today)
	if err != nil {
		return today
	}
	return t.AddDate(0, 0, -keepFiredDays).Format("2006-01-02")
}
