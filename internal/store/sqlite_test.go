package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ykvlv/diary-bot/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), "Asia/Irkutsk")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestProfileRoundTrip(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p := domain.NewProfile(42, "Alice", "Europe/Moscow")
	p.Plans["Monday"] = []domain.PlanItem{{Time: "09:00", Text: "run"}, {Text: "read"}}
	require.NoError(t, repo.PutProfile(ctx, p))

	got, err := repo.GetProfile(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "Europe/Moscow", got.Timezone)
	assert.Equal(t, p.Plans["Monday"], got.Plans["Monday"])
	assert.Len(t, got.Plans, 7, "week must be normalized to all seven days")
	assert.False(t, got.SetupComplete)
	assert.Empty(t, got.NotifyTime)
}

func TestGetProfile_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetProfile(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfile(ctx, domain.NewProfile(7, "Bob", "UTC")))

	err := repo.UpdateProfile(ctx, 7, func(p *domain.Profile) error {
		p.SetupComplete = true
		p.NotifyTime = "09:00"
		return nil
	})
	require.NoError(t, err)

	got, err := repo.GetProfile(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.SetupComplete)
	assert.Equal(t, "09:00", got.NotifyTime)
}

func TestUpdateProfile_AbortOnError(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfile(ctx, domain.NewProfile(7, "Bob", "UTC")))

	sentinel := errors.New("nope")
	err := repo.UpdateProfile(ctx, 7, func(p *domain.Profile) error {
		p.SetupComplete = true
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	got, err := repo.GetProfile(ctx, 7)
	require.NoError(t, err)
	assert.False(t, got.SetupComplete, "aborted update must not persist")
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo := openTestRepo(t)
	err := repo.UpdateProfile(context.Background(), 123, func(*domain.Profile) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProfiles(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.PutProfile(ctx, domain.NewProfile(1, "a", "UTC")))
	require.NoError(t, repo.PutProfile(ctx, domain.NewProfile(2, "b", "UTC")))

	all, err := repo.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGlobalPlans(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	got, err := repo.GetGlobalPlans(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.PutGlobalPlans(ctx, 5, []string{"learn Go", "ship it"}))
	got, err = repo.GetGlobalPlans(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"learn Go", "ship it"}, got)

	require.NoError(t, repo.DeleteGlobalPlans(ctx, 5))
	got, err = repo.GetGlobalPlans(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteGlobalPlans_Empty(t *testing.T) {
	repo := openTestRepo(t)
	err := repo.DeleteGlobalPlans(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItogStateSurvivesReload(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	p := domain.NewProfile(9, "c", "UTC")
	p.Itog = domain.NewItogSession("12.05.2025", "Monday", []domain.PlanItem{{Text: "A"}, {Text: "B"}})
	p.Itog.Answer(true)
	require.NoError(t, repo.PutProfile(ctx, p))

	got, err := repo.GetProfile(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, got.Itog)
	assert.Equal(t, 1, got.Itog.Index)
	assert.True(t, got.Itog.Completed[0])
	assert.Len(t, got.Itog.Items, 2)
}
