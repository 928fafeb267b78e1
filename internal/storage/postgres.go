package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Alpha4Coders/DevTrack/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// --- LogRepository ---

func (p *PostgresStorage) SaveLog(ctx context.Context, log *internal.LogEntry) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO logs (id, user_id, date, start_time, end_time, learned_today, tags, mood, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID, log.UserID, log.Date.Text(), log.StartTime, log.EndTime, log.LearnedToday, log.Tags, log.Mood, log.CreatedAt, log.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert log: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetLog(ctx context.Context, id string) (*internal.LogEntry, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, date, start_time, end_time, learned_today, tags, mood, created_at, updated_at
		FROM logs WHERE id = $1`, id)
	log, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to read log: %v", err)
		return nil, err
	}
	return log, nil
}

func (p *PostgresStorage) UpdateLog(ctx context.Context, log *internal.LogEntry) error {
	tag, err := p.pool.Exec(ctx, `UPDATE logs SET date = $2, start_time = $3, end_time = $4, learned_today = $5, tags = $6, mood = $7, updated_at = $8
		WHERE id = $1`,
		log.ID, log.Date.Text(), log.StartTime, log.EndTime, log.LearnedToday, log.Tags, log.Mood, log.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to update log: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteLog(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM logs WHERE id = $1`, id)
	if err != nil {
		p.logger.Errorf("failed to delete log: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ListLogs(ctx context.Context, userID string) ([]internal.LogEntry, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, date, start_time, end_time, learned_today, tags, mood, created_at, updated_at
		FROM logs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var logs []internal.LogEntry
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			p.logger.Errorf("failed to scan log: %v", err)
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (p *PostgresStorage) HasLogOnDay(ctx context.Context, userID, dayKey string) (bool, error) {
	// Day keys are derived in Go, not SQL, because stored dates are
	// heterogeneous scalars (epoch seconds or ISO-ish strings).
	logs, err := p.ListLogs(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, l := range logs {
		if l.Date.DayKey() == dayKey {
			return true, nil
		}
	}
	return false, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLog(row rowScanner) (*internal.LogEntry, error) {
	var l internal.LogEntry
	var dateText string
	if err := row.Scan(&l.ID, &l.UserID, &dateText, &l.StartTime, &l.EndTime, &l.LearnedToday, &l.Tags, &l.Mood, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.Date = internal.ParseDateText(dateText)
	return &l, nil
}

// --- UserRepository ---

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, user_goal, onboarding_completed, last_start_time, last_end_time,
		push_token, push_token_updated_at, preferences, github_username, github_token, updated_at
		FROM users WHERE id = $1`, id)
	var u internal.User
	var prefs []byte
	err := row.Scan(&u.ID, &u.Name, &u.UserGoal, &u.OnboardingCompleted, &u.LastStartTime, &u.LastEndTime,
		&u.PushToken, &u.PushTokenUpdatedAt, &prefs, &u.GitHubUsername, &u.GitHubToken, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to read user: %v", err)
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
			p.logger.Errorf("failed to decode preferences for %s: %v", id, err)
		}
	}
	u.Preferences.ApplyDefaults()
	return &u, nil
}

func (p *PostgresStorage) MergeUser(ctx context.Context, id string, patch internal.UserPatch) error {
	var prefs []byte
	if patch.Preferences != nil {
		applied := *patch.Preferences
		applied.ApplyDefaults()
		var err error
		prefs, err = json.Marshal(applied)
		if err != nil {
			return err
		}
	}

	// COALESCE keeps every column the patch left nil, giving the same
	// merge semantics as the file backend.
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, last_start_time, last_end_time, push_token, push_token_updated_at, preferences, updated_at)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, ''), COALESCE($5, now()), COALESCE($6, '{}'::jsonb), COALESCE($7, now()))
		ON CONFLICT (id) DO UPDATE SET
			last_start_time = COALESCE($2, users.last_start_time),
			last_end_time = COALESCE($3, users.last_end_time),
			push_token = COALESCE($4, users.push_token),
			push_token_updated_at = COALESCE($5, users.push_token_updated_at),
			preferences = COALESCE($6, users.preferences),
			updated_at = COALESCE($7, now())`,
		id, patch.LastStartTime, patch.LastEndTime, patch.PushToken, patch.PushTokenUpdatedAt, prefs, patch.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to merge user %s: %v", id, err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListNotifiable(ctx context.Context) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, user_goal, onboarding_completed, last_start_time, last_end_time,
		push_token, push_token_updated_at, preferences, github_username, github_token, updated_at
		FROM users WHERE push_token <> '' ORDER BY id`)
	if err != nil {
		p.logger.Errorf("failed to query notifiable users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []internal.User
	for rows.Next() {
		var u internal.User
		var prefs []byte
		if err := rows.Scan(&u.ID, &u.Name, &u.UserGoal, &u.OnboardingCompleted, &u.LastStartTime, &u.LastEndTime,
			&u.PushToken, &u.PushTokenUpdatedAt, &prefs, &u.GitHubUsername, &u.GitHubToken, &u.UpdatedAt); err != nil {
			p.logger.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		if len(prefs) > 0 {
			if err := json.Unmarshal(prefs, &u.Preferences); err != nil {
				p.logger.Errorf("failed to decode preferences for %s: %v", u.ID, err)
			}
		}
		u.Preferences.ApplyDefaults()
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- Compile-time assertions ---
var _ LogRepository = (*PostgresStorage)(nil)
var _ UserRepository = (*PostgresStorage)(nil)
