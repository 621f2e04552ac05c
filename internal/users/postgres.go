package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Krusty2272/AiFitnessCoach/internal/initdata"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

const userColumns = `id, telegram_id,
	COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(language_code, ''), is_premium, COALESCE(photo_url, ''),
	level, experience, streak_days, total_workouts, total_minutes,
	created_at, last_active`

// PostgresRepo implements Gateway on database/sql with the pgx driver.
type PostgresRepo struct {
	db *sql.DB

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

func (r *PostgresRepo) FindOrCreate(ctx context.Context, lu initdata.LaunchUser) (User, bool, error) {
	u, err := r.FindByTelegramID(ctx, lu.TelegramID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	now := r.clock().UTC()
	query := `INSERT INTO users
		(telegram_id, username, first_name, last_name, language_code, is_premium, photo_url, created_at, last_active)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), $8, $8)
		RETURNING ` + userColumns

	u, err = scanUser(r.db.QueryRowContext(ctx, query,
		lu.TelegramID, lu.Username, lu.FirstName, lu.LastName,
		lu.LanguageCode, lu.IsPremium, lu.PhotoURL, now))
	if err == nil {
		return u, true, nil
	}

	// A concurrent first login won the insert race. The record exists
	// now, so fall back to a lookup.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		u, err := r.FindByTelegramID(ctx, lu.TelegramID)
		if err != nil {
			return User{}, false, err
		}
		return u, false, nil
	}
	return User{}, false, fmt.Errorf("users: insert: %w", err)
}

func (r *PostgresRepo) TouchAndUpdate(ctx context.Context, u User, lu initdata.LaunchUser) (User, error) {
	now := r.clock().UTC()

	// NULLIF/COALESCE keeps stored values for fields this payload did
	// not assert. is_premium is always asserted by Telegram.
	query := `UPDATE users SET
		username      = COALESCE(NULLIF($2, ''), username),
		first_name    = COALESCE(NULLIF($3, ''), first_name),
		last_name     = COALESCE(NULLIF($4, ''), last_name),
		language_code = COALESCE(NULLIF($5, ''), language_code),
		photo_url     = COALESCE(NULLIF($6, ''), photo_url),
		is_premium    = $7,
		last_active   = $8
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	out, err := scanUser(r.db.QueryRowContext(ctx, query,
		u.TelegramID, lu.Username, lu.FirstName, lu.LastName,
		lu.LanguageCode, lu.PhotoURL, lu.IsPremium, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("users: update: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) FindByTelegramID(ctx context.Context, telegramID int64) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, telegramID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("users: select: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.TelegramID,
		&u.Username, &u.FirstName, &u.LastName,
		&u.LanguageCode, &u.IsPremium, &u.PhotoURL,
		&u.Level, &u.Experience, &u.StreakDays, &u.TotalWorkouts, &u.TotalMinutes,
		&u.CreatedAt, &u.LastActive,
	)
	return u, err
}
