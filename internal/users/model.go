package users

import "time"

// User is the durable record keyed by Telegram user id. Profile fields
// mirror whatever the platform last asserted at login; progression
// fields (level, experience, streaks) belong to the workout domain and
// are read-only passthrough here.
type User struct {
	ID           int64  `json:"id"`
	TelegramID   int64  `json:"telegram_id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium"`
	PhotoURL     string `json:"photo_url,omitempty"`

	Level         int `json:"level"`
	Experience    int `json:"experience"`
	StreakDays    int `json:"streak_days"`
	TotalWorkouts int `json:"total_workouts"`
	TotalMinutes  int `json:"total_minutes"`

	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}
