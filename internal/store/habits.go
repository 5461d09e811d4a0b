package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Habit is a user-defined activity worth Points when completed.
// Points may be negative for habits the user wants to break.
type Habit struct {
	ID        int64  `db:"id" json:"id"`
	HabitName string `db:"habit_name" json:"habit_name"`
	Points    int16  `db:"points" json:"points"`
}

// ListHabits returns every habit ordered by id.
func ListHabits(ctx context.Context, q Querier) ([]Habit, error) {
	habits := []Habit{}
	if err := q.SelectContext(ctx, &habits, `SELECT id, habit_name, points FROM habits ORDER BY id`); err != nil {
		return nil, Classify(fmt.Errorf("list habits: %w", err))
	}
	return habits, nil
}

// GetHabit returns a habit by id, or nil if it does not exist.
func GetHabit(ctx context.Context, q Querier, id int64) (*Habit, error) {
	var h Habit
	err := q.GetContext(ctx, &h, `SELECT id, habit_name, points FROM habits WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(fmt.Errorf("get habit: %w", err))
	}
	return &h, nil
}

// FindHabits returns the habits matching id: zero or one row.
func FindHabits(ctx context.Context, q Querier, id int64) ([]Habit, error) {
	habits := []Habit{}
	if err := q.SelectContext(ctx, &habits, `SELECT id, habit_name, points FROM habits WHERE id = ?`, id); err != nil {
		return nil, Classify(fmt.Errorf("find habit: %w", err))
	}
	return habits, nil
}

// InsertHabit stores a new habit and returns its assigned id.
func InsertHabit(ctx context.Context, q Querier, name string, points int16) (int64, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO habits (habit_name, points) VALUES (?, ?)`, name, points)
	if err != nil {
		return 0, Classify(fmt.Errorf("insert habit: %w", err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, Classify(fmt.Errorf("insert habit: last insert id: %w", err))
	}
	return id, nil
}

// UpdateHabit overwrites name and points. It returns the number of rows
// changed; an unknown id changes nothing and is not an error.
func UpdateHabit(ctx context.Context, q Querier, id int64, name string, points int16) (int64, error) {
	result, err := q.ExecContext(ctx, `UPDATE habits SET habit_name = ?, points = ? WHERE id = ?`, name, points, id)
	if err != nil {
		return 0, Classify(fmt.Errorf("update habit: %w", err))
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

// DeleteHabit removes a habit if present.
func DeleteHabit(ctx context.Context, q Querier, id int64) (int64, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return 0, Classify(fmt.Errorf("delete habit: %w", err))
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
