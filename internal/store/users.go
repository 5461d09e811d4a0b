package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserID is the id of the only row in the users table.
const UserID = 1

// User is the single local scoring profile.
type User struct {
	ID        int64 `db:"id" json:"id"`
	Points    int16 `db:"points" json:"points"`
	UpdatedAt int64 `db:"updated_at" json:"updated_at"`
}

// LoadUser returns the profile row, or nil if it has not been created yet.
func LoadUser(ctx context.Context, q Querier) (*User, error) {
	var u User
	err := q.GetContext(ctx, &u, `SELECT id, points, updated_at FROM users WHERE id = ?`, UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(fmt.Errorf("load user: %w", err))
	}
	return &u, nil
}

// InsertUser creates the profile row with the given starting state. It is a
// no-op when the row already exists.
func InsertUser(ctx context.Context, q Querier, points int16, updatedAt int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (id, points, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, UserID, points, updatedAt)
	if err != nil {
		return Classify(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// SaveUserPoints writes the point total and leaves updated_at alone.
func SaveUserPoints(ctx context.Context, q Querier, points int16) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET points = ? WHERE id = ?`, points, UserID)
	if err != nil {
		return Classify(fmt.Errorf("save user points: %w", err))
	}
	return nil
}

// SaveUser writes both the point total and updated_at.
func SaveUser(ctx context.Context, q Querier, u *User) error {
	_, err := q.ExecContext(ctx, `UPDATE users SET points = ?, updated_at = ? WHERE id = ?`,
		u.Points, u.UpdatedAt, UserID)
	if err != nil {
		return Classify(fmt.Errorf("save user: %w", err))
	}
	return nil
}

// CountUsers returns the number of rows in the users table.
func CountUsers(ctx context.Context, q Querier) (int, error) {
	var n int
	if err := q.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, Classify(fmt.Errorf("count users: %w", err))
	}
	return n, nil
}
