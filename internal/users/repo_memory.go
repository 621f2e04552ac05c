package users

import (
	"context"
	"sync"
	"time"

	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"
)

// MemoryRepo is an in-memory Gateway for tests and early development.
// It reproduces the store's semantics: telegram_id is unique, and a
// racing create resolves to the existing record.

type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byTG   map[int64]User

	// Err, when set, is returned by every operation. Used to simulate
	// an unavailable store.
	Err error

	Clock func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byTG: map[int64]User{}, Clock: time.Now}
}

func (r *MemoryRepo) FindOrCreate(ctx context.Context, lu initdata.LaunchUser) (User, bool, error) {
	if r.Err != nil {
		return User{}, false, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.byTG[lu.TelegramID]; ok {
		return u, false, nil
	}

	now := r.Clock().UTC()
	r.nextID++
	u := User{
		ID:           r.nextID,
		TelegramID:   lu.TelegramID,
		Username:     lu.Username,
		FirstName:    lu.FirstName,
		LastName:     lu.LastName,
		LanguageCode: lu.LanguageCode,
		IsPremium:    lu.IsPremium,
		PhotoURL:     lu.PhotoURL,
		Level:        1,
		CreatedAt:    now,
		LastActive:   now,
	}
	r.byTG[lu.TelegramID] = u
	return u, true, nil
}

func (r *MemoryRepo) TouchAndUpdate(ctx context.Context, u User, lu initdata.LaunchUser) (User, error) {
	if r.Err != nil {
		return User{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byTG[u.TelegramID]
	if !ok {
		return User{}, ErrNotFound
	}

	if lu.Username != "" {
		cur.Username = lu.Username
	}
	if lu.FirstName != "" {
		cur.FirstName = lu.FirstName
	}
	if lu.LastName != "" {
		cur.LastName = lu.LastName
	}
	if lu.LanguageCode != "" {
		cur.LanguageCode = lu.LanguageCode
	}
	if lu.PhotoURL != "" {
		cur.PhotoURL = lu.PhotoURL
	}
	cur.IsPremium = lu.IsPremium
	cur.LastActive = r.Clock().UTC()

	r.byTG[u.TelegramID] = cur
	return cur, nil
}

func (r *MemoryRepo) FindByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	if r.Err != nil {
		return User{}, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byTG[telegramID]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

// Count reports how many records exist; test helper.
func (r *MemoryRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byTG)
}
