package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"brokemate/internal/core"
	"brokemate/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository stores each user partition as one JSON blob and the
// profile partition as its own table.
type SQLiteRepository struct {
	db         *sql.DB
	queries    *Queries
	categories []string
}

var _ store.Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens dbPath, creating its directory, and applies
// migrations. Fresh partitions start with categories, or the defaults when
// none are given.
func NewSQLiteRepository(dbPath string, categories ...string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single writer keeps whole-blob saves serialized
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:         db,
		queries:    New(db),
		categories: categories,
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Load(ctx context.Context, userID string) (core.State, error) {
	row, err := r.queries.GetUserState(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		st := core.DefaultState()
		if len(r.categories) > 0 {
			st.Categories = append([]string(nil), r.categories...)
		}
		return st, nil
	}
	if err != nil {
		return core.State{}, fmt.Errorf("get user state: %w", err)
	}

	var st core.State
	if err := json.Unmarshal([]byte(row.StateJSON), &st); err != nil {
		return core.State{}, fmt.Errorf("decode state of %s: %w", userID, err)
	}
	st.Normalize()
	return st, nil
}

// Save replaces the whole blob of userID.
func (r *SQLiteRepository) Save(ctx context.Context, userID string, st core.State) error {
	if userID == "" {
		return fmt.Errorf("save state: empty user id")
	}
	st.Normalize()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	err = r.queries.UpsertUserState(ctx, UpsertUserStateParams{
		UserID:    userID,
		StateJSON: string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("upsert user state: %w", err)
	}

	slog.DebugContext(ctx, "State saved to SQLite",
		"user_id", userID,
		"transactions", len(st.Transactions),
		"subscriptions", len(st.Subscriptions),
		"bytes", len(data))

	return nil
}

func (r *SQLiteRepository) Users(ctx context.Context) ([]string, error) {
	ids, err := r.queries.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) ListProfiles(ctx context.Context) ([]core.Profile, error) {
	rows, err := r.queries.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	out := make([]core.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreProfile(row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, id string) (core.Profile, error) {
	row, err := r.queries.GetProfile(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return toCoreProfile(row), nil
}

func (r *SQLiteRepository) SaveProfile(ctx context.Context, p core.Profile) error {
	err := r.queries.CreateProfile(ctx, CreateProfileParams{
		ID:        p.ID,
		Username:  p.Username,
		PinHash:   p.PINHash,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profile %q: %w", p.Username, store.ErrDuplicate)
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func toCoreProfile(row Profile) core.Profile {
	created, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		slog.Warn("Invalid profile timestamp", "profile_id", row.ID, "value", row.CreatedAt)
	}
	return core.Profile{
		ID:        row.ID,
		Username:  row.Username,
		PINHash:   row.PinHash,
		CreatedAt: created,
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed: UNIQUE")
}
