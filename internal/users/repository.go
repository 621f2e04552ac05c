package users

import (
	"context"
	"errors"

	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"
)

var ErrNotFound = errors.New("users: not found")

// Gateway is the sole boundary between the auth flow and persistence.
// Atomicity of concurrent first-time logins is pushed down to the
// store's uniqueness constraint on telegram_id, never to in-process
// locks; this service runs as multiple instances.
type Gateway interface {
	// FindOrCreate returns the record for the launch user, inserting a
	// fresh one if none exists. The second result reports whether this
	// call created the record. A concurrent insert of the same
	// telegram_id must be resolved by re-reading, not surfaced as an
	// error.
	FindOrCreate(ctx context.Context, lu initdata.LaunchUser) (User, bool, error)

	// TouchAndUpdate refreshes last_active and the profile fields the
	// payload actually asserted. Absent fields keep their stored value.
	TouchAndUpdate(ctx context.Context, u User, lu initdata.LaunchUser) (User, error)

	// FindByTelegramID returns ErrNotFound for unknown ids.
	FindByTelegramID(ctx context.Context, telegramID int64) (User, error)
}
