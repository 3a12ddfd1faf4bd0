package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type UserState struct {
	UserID    string
	StateJSON string
	UpdatedAt string
}

type Profile struct {
	ID        string
	Username  string
	PinHash   string
	CreatedAt string
}

const getUserState = `-- name: GetUserState :one
SELECT user_id, state_json, updated_at FROM user_state WHERE user_id = ?
`

func (q *Queries) GetUserState(ctx context.Context, userID string) (UserState, error) {
	row := q.db.QueryRowContext(ctx, getUserState, userID)
	var i UserState
	err := row.Scan(&i.UserID, &i.StateJSON, &i.UpdatedAt)
	return i, err
}

const upsertUserState = `-- name: UpsertUserState :exec
INSERT INTO user_state (user_id, state_json, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    state_json = excluded.state_json,
    updated_at = excluded.updated_at
`

type UpsertUserStateParams struct {
	UserID    string
	StateJSON string
	UpdatedAt string
}

func (q *Queries) UpsertUserState(ctx context.Context, arg UpsertUserStateParams) error {
	_, err := q.db.ExecContext(ctx, upsertUserState, arg.UserID, arg.StateJSON, arg.UpdatedAt)
	return err
}

const listUserIDs = `-- name: ListUserIDs :many
SELECT user_id FROM user_state ORDER BY user_id
`

func (q *Queries) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUserIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		items = append(items, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProfiles = `-- name: ListProfiles :many
SELECT id, username, pin_hash, created_at FROM profiles ORDER BY created_at, id
`

func (q *Queries) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := q.db.QueryContext(ctx, listProfiles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Profile
	for rows.Next() {
		var i Profile
		if err := rows.Scan(&i.ID, &i.Username, &i.PinHash, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getProfile = `-- name: GetProfile :one
SELECT id, username, pin_hash, created_at FROM profiles WHERE id = ?
`

func (q *Queries) GetProfile(ctx context.Context, id string) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfile, id)
	var i Profile
	err := row.Scan(&i.ID, &i.Username, &i.PinHash, &i.CreatedAt)
	return i, err
}

const createProfile = `-- name: CreateProfile :exec
INSERT INTO profiles (id, username, pin_hash, created_at) VALUES (?, ?, ?, ?)
`

type CreateProfileParams struct {
	ID        string
	Username  string
	PinHash   string
	CreatedAt string
}

func (q *Queries) CreateProfile(ctx context.Context, arg CreateProfileParams) error {
	_, err := q.db.ExecContext(ctx, createProfile, arg.ID, arg.Username, arg.PinHash, arg.CreatedAt)
	return err
}
