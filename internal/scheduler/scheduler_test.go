package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/domain"
	"github.com/ykvlv/diary-bot/internal/store"
)

// memRepo is an in-memory store.Repo for scheduler tests.
type memRepo struct {
	mu       sync.Mutex
	profiles map[int64]*domain.Profile
	global   map[int64][]string
}

func newMemRepo() *memRepo {
	return &memRepo{profiles: make(map[int64]*domain.Profile), global: make(map[int64][]string)}
}

func (m *memRepo) GetProfile(_ context.Context, id int64) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) PutProfile(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *memRepo) UpdateProfile(_ context.Context, id int64, fn func(*domain.Profile) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	return fn(p)
}

func (m *memRepo) ListProfiles(context.Context) ([]*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*domain.Profile
	for _, p := range m.profiles {
		cp := *p
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memRepo) GetGlobalPlans(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.global[id], nil
}

func (m *memRepo) PutGlobalPlans(_ context.Context, id int64, plans []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global[id] = plans
	return nil
}

func (m *memRepo) DeleteGlobalPlans(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.global[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.global, id)
	return nil
}

func (m *memRepo) Close() error { return nil }

// fakeSender records deliveries.
type fakeSender struct {
	mu        sync.Mutex
	briefs    []int64
	reminders []domain.PlanItem
	summaries []int64
	fail      bool
}

func (f *fakeSender) MorningBrief(_ context.Context, p *domain.Profile, _ []string, _ time.Time) (domain.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.MessageRef{}, errors.New("send failed")
	}
	f.briefs = append(f.briefs, p.ID)
	return domain.MessageRef{ChatID: p.ID, MessageID: len(f.briefs)}, nil
}

func (f *fakeSender) ItemReminder(_ context.Context, _ int64, item domain.PlanItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.reminders = append(f.reminders, item)
	return nil
}

func (f *fakeSender) EveningSummary(_ context.Context, p *domain.Profile, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("send failed")
	}
	f.summaries = append(f.summaries, p.ID)
	return nil
}

func newTestScheduler(repo store.Repo, sender Sender, at time.Time) *Scheduler {
	s := New(repo, zap.NewNop(), sender, time.Minute, "23:59", "UTC")
	s.now = func() time.Time { return at }
	return s
}

// at builds a UTC instant; profiles in these tests use the UTC zone so local
// time equals the instant.
func at(hh, mm int) time.Time {
	return time.Date(2025, time.May, 5, hh, mm, 0, 0, time.UTC) // a Monday
}

func setupProfile(t *testing.T, repo store.Repo) *domain.Profile {
	t.Helper()
	p := domain.NewProfile(1, "test", "UTC")
	p.SetupComplete = true
	p.NotifyTime = "09:00"
	p.Plans["Monday"] = []domain.PlanItem{
		{Time: "10:30", Text: "standup"},
		{Time: "10:30", Text: "coffee"},
		{Text: "read"},
	}
	require.NoError(t, repo.PutProfile(context.Background(), p))
	return p
}

func TestTick_MorningBriefOncePerDay(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	setupProfile(t, repo)

	s := newTestScheduler(repo, sender, at(9, 0))
	s.Tick(context.Background())
	s.Tick(context.Background()) // same minute again

	assert.Len(t, sender.briefs, 1, "brief must not re-send within the same day")

	got, err := repo.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-05", got.LastBriefDate)
	require.NotNil(t, got.LastBriefMsg)
}

func TestTick_BriefRequiresSetupAndTime(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	p := setupProfile(t, repo)
	p.SetupComplete = false
	require.NoError(t, repo.PutProfile(context.Background(), p))

	newTestScheduler(repo, sender, at(9, 0)).Tick(context.Background())
	assert.Empty(t, sender.briefs)
}

func TestTick_ItemRemindersFireOnceEach(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	setupProfile(t, repo)

	s := newTestScheduler(repo, sender, at(10, 30))
	s.Tick(context.Background())

	require.Len(t, sender.reminders, 2, "both items at 10:30 fire independently")

	s.Tick(context.Background()) // same minute
	assert.Len(t, sender.reminders, 2, "dedup keys suppress the re-fire")

	got, err := repo.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, got.Fired[domain.ReminderKey("2025-05-05", domain.PlanItem{Time: "10:30", Text: "standup"})])
}

func TestTick_UntimedItemsNeverRemind(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	p := domain.NewProfile(1, "test", "UTC")
	p.SetupComplete = true
	p.Plans["Monday"] = []domain.PlanItem{{Text: "read"}}
	require.NoError(t, repo.PutProfile(context.Background(), p))

	for hh := 0; hh < 24; hh += 6 {
		newTestScheduler(repo, sender, at(hh, 0)).Tick(context.Background())
	}
	assert.Empty(t, sender.reminders)
}

func TestTick_EveningSummaryOncePerDay(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	setupProfile(t, repo)

	s := newTestScheduler(repo, sender, at(23, 59))
	s.Tick(context.Background())
	s.Tick(context.Background())

	assert.Len(t, sender.summaries, 1)

	got, err := repo.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-05", got.LastSummary)
}

func TestTick_SendFailureLeavesMarkersUnset(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{fail: true}
	setupProfile(t, repo)

	newTestScheduler(repo, sender, at(9, 0)).Tick(context.Background())

	got, err := repo.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, got.LastBriefDate, "failed delivery must stay eligible for retry")

	// Next tick with a healthy sender delivers.
	sender.fail = false
	newTestScheduler(repo, sender, at(9, 0)).Tick(context.Background())
	assert.Len(t, sender.briefs, 1)
}

func TestTick_InvalidZoneFallsBackToDefault(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	setupProfile(t, repo)

	p2 := domain.NewProfile(2, "other", "UTC")
	p2.SetupComplete = true
	p2.NotifyTime = "09:00"
	p2.Timezone = "Not/AZone" // projected into the default zone, still processed
	require.NoError(t, repo.PutProfile(context.Background(), p2))

	newTestScheduler(repo, sender, at(9, 0)).Tick(context.Background())
	assert.Len(t, sender.briefs, 2, "a broken zone must not drop the profile from the tick")
}

func TestTick_PrunesStaleReminderKeys(t *testing.T) {
	repo := newMemRepo()
	sender := &fakeSender{}
	p := setupProfile(t, repo)
	p.Fired["2025-04-01|08:00|old"] = true
	require.NoError(t, repo.PutProfile(context.Background(), p))

	newTestScheduler(repo, sender, at(10, 30)).Tick(context.Background())

	got, err := repo.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, got.Fired["2025-04-01|08:00|old"], "stale key must be pruned on write")
}
