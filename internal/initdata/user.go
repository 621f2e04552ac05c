package initdata

import (
	"encoding/json"
	"fmt"
)

// LaunchUser is the identity Telegram embedded in a verified payload.
// The platform vouches for the payload as a whole, not for individual
// profile fields; treat everything except TelegramID as advisory.
type LaunchUser struct {
	TelegramID      int64
	FirstName       string
	LastName        string
	Username        string
	LanguageCode    string
	IsPremium       bool
	PhotoURL        string
	AllowsWriteToPM bool
}

type launchUserJSON struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Username        string `json:"username"`
	LanguageCode    string `json:"language_code"`
	IsPremium       bool   `json:"is_premium"`
	PhotoURL        string `json:"photo_url"`
	AllowsWriteToPM *bool  `json:"allows_write_to_pm"`
}

// ExtractUser decodes the user claim of verified claims. Launches
// without a user context (inline queries) yield ErrNoUser, which
// callers must treat as a bad request rather than an auth failure.
// Missing language_code falls back to defaultLocale.
func ExtractUser(c Claims, defaultLocale string) (LaunchUser, error) {
	if c.UserJSON == "" {
		return LaunchUser{}, ErrNoUser
	}

	var u launchUserJSON
	if err := json.Unmarshal([]byte(c.UserJSON), &u); err != nil {
		return LaunchUser{}, fmt.Errorf("init data: user claim: %w", err)
	}
	if u.ID == 0 {
		return LaunchUser{}, ErrNoUser
	}

	out := LaunchUser{
		TelegramID:      u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Username:        u.Username,
		LanguageCode:    u.LanguageCode,
		IsPremium:       u.IsPremium,
		PhotoURL:        u.PhotoURL,
		AllowsWriteToPM: true,
	}
	if out.LanguageCode == "" {
		out.LanguageCode = defaultLocale
	}
	if u.AllowsWriteToPM != nil {
		out.AllowsWriteToPM = *u.AllowsWriteToPM
	}
	return out, nil
}
