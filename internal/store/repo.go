package store

import (
	"context"
	"errors"

	"github.com/ykvlv/diary-bot/internal/domain"
)

// ErrNotFound is returned when no document exists for the requested user.
var ErrNotFound = errors.New("not found")

// Repo defines storage for the two per-user document collections: profiles and
// global plan lists. Documents are loaded and written whole; UpdateProfile is
// the read-modify-write path and runs its closure inside one transaction so
// concurrent handler/scheduler writes to the same user serialize instead of
// losing updates.
type Repo interface {
	GetProfile(ctx context.Context, id int64) (*domain.Profile, error)
	PutProfile(ctx context.Context, p *domain.Profile) error
	// UpdateProfile loads the profile, applies fn, and persists the result
	// atomically. fn returning an error aborts without writing.
	UpdateProfile(ctx context.Context, id int64, fn func(*domain.Profile) error) error
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)

	GetGlobalPlans(ctx context.Context, id int64) ([]string, error)
	PutGlobalPlans(ctx context.Context, id int64, plans []string) error
	// DeleteGlobalPlans clears the user's list. Returns ErrNotFound when there
	// was nothing to delete; the store is left unchanged in that case.
	DeleteGlobalPlans(ctx context.Context, id int64) error

	Close() error
}
