package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/NikhilKonkimalla/snooze-u-looze/internal/alarm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// SQLiteRepo implements Repo using an embedded SQLite database. Timestamps
// are persisted as UTC unix seconds and surfaced in loc so the recurrence
// resolver sees the user's wall clock.
type SQLiteRepo struct {
	db  *sql.DB
	loc *time.Location
}

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string, loc *time.Location) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	if loc == nil {
		loc = time.Local
	}
	return &SQLiteRepo{db: db, loc: loc}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// EnsureUser returns the owner id mapped to chatID, creating a fresh mapping
// on first contact.
func (r *SQLiteRepo) EnsureUser(ctx context.Context, chatID int64) (uuid.UUID, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM users WHERE chat_id = ?`, chatID,
	).Scan(&raw)
	if err == nil {
		return uuid.Parse(raw)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, err
	}

	ownerID := uuid.New()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, user_id, created_at) VALUES (?, ?, ?)`,
		chatID, ownerID.String(), time.Now().UTC().Unix(),
	)
	if err != nil {
		return uuid.Nil, err
	}
	return ownerID, nil
}

// ChatForOwner resolves an owner id back to its chat.
func (r *SQLiteRepo) ChatForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var chatID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT chat_id FROM users WHERE user_id = ?`, ownerID.String(),
	).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return chatID, err
}

const alarmColumns = `id, user_id, alarm_time, task, is_active, repeat_days, created_at`

// InsertAlarm stores a new alarm record.
func (r *SQLiteRepo) InsertAlarm(ctx context.Context, a *alarm.Alarm) error {
	if a == nil {
		return errors.New("nil alarm")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alarms (`+alarmColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.OwnerID.String(), a.Time.UTC().Unix(), string(a.Task),
		boolToInt(a.IsActive), repeatDaysToNull(a.RepeatDays), a.CreatedAt.UTC().Unix(),
	)
	return err
}

// UpsertAlarm inserts or overwrites a record; sync-down path.
func (r *SQLiteRepo) UpsertAlarm(ctx context.Context, a *alarm.Alarm) error {
	if a == nil {
		return errors.New("nil alarm")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alarms (`+alarmColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id     = excluded.user_id,
			alarm_time  = excluded.alarm_time,
			task        = excluded.task,
			is_active   = excluded.is_active,
			repeat_days = excluded.repeat_days`,
		a.ID.String(), a.OwnerID.String(), a.Time.UTC().Unix(), string(a.Task),
		boolToInt(a.IsActive), repeatDaysToNull(a.RepeatDays), a.CreatedAt.UTC().Unix(),
	)
	return err
}

// GetAlarm returns one alarm by id or ErrNotFound.
func (r *SQLiteRepo) GetAlarm(ctx context.Context, id uuid.UUID) (*alarm.Alarm, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+alarmColumns+` FROM alarms WHERE id = ?`, id.String(),
	)
	a, err := r.scanAlarm(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListByOwner returns the owner's alarms ordered by time-of-day.
func (r *SQLiteRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]alarm.Alarm, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+alarmColumns+` FROM alarms WHERE user_id = ? ORDER BY alarm_time ASC, created_at ASC`,
		ownerID.String(),
	)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// ListActive returns every active alarm.
func (r *SQLiteRepo) ListActive(ctx context.Context) ([]alarm.Alarm, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+alarmColumns+` FROM alarms WHERE is_active = 1`,
	)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

// UpdateAlarm overwrites the mutable fields of an existing record.
func (r *SQLiteRepo) UpdateAlarm(ctx context.Context, a *alarm.Alarm) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alarms
		SET alarm_time = ?, task = ?, is_active = ?, repeat_days = ?
		WHERE id = ?`,
		a.Time.UTC().Unix(), string(a.Task), boolToInt(a.IsActive),
		repeatDaysToNull(a.RepeatDays), a.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAlarm removes a record. Deleting an absent id is not an error.
func (r *SQLiteRepo) DeleteAlarm(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM alarms WHERE id = ?`, id.String())
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepo) scanAlarm(row rowScanner) (*alarm.Alarm, error) {
	var (
		rawID     string
		rawOwner  string
		alarmTime int64
		task      string
		activeInt int
		daysNS    sql.NullString
		createdAt int64
	)
	if err := row.Scan(&rawID, &rawOwner, &alarmTime, &task, &activeInt, &daysNS, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("alarm id: %w", err)
	}
	owner, err := uuid.Parse(rawOwner)
	if err != nil {
		return nil, fmt.Errorf("owner id: %w", err)
	}
	days, err := repeatDaysFromNull(daysNS)
	if err != nil {
		return nil, fmt.Errorf("repeat days: %w", err)
	}

	return &alarm.Alarm{
		ID:         id,
		OwnerID:    owner,
		Time:       time.Unix(alarmTime, 0).In(r.loc),
		Task:       alarm.Task(task),
		IsActive:   activeInt != 0,
		RepeatDays: days,
		CreatedAt:  time.Unix(createdAt, 0).UTC(),
	}, nil
}

func (r *SQLiteRepo) collect(rows *sql.Rows) ([]alarm.Alarm, error) {
	defer rows.Close()

	var res []alarm.Alarm
	for rows.Next() {
		a, err := r.scanAlarm(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
