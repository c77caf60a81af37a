package data

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrClassNotFound = errors.New("class not found")

const (
	ClassStatusScheduled = "scheduled"
	ClassStatusLive      = "live"
	ClassStatusCompleted = "completed"
)

const (
	ClassTypeBatch = "batch"
	ClassTypeSuper = "super"
)

type Class struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartsAt  time.Time `json:"starts_at"`
	Duration  int       `json:"duration"` // minutes
	Subject   string    `json:"subject,omitempty"`
	Grade     string    `json:"grade,omitempty"`
	TeacherID string    `json:"teacher_id"`
}

type ClassModel struct {
	Pool *pgxpool.Pool
}

func (m *ClassModel) Get(ctx context.Context, id string) (*Class, error) {
	stmt := `SELECT id, title, type, status, starts_at, duration, subject, grade, teacher_id
	 FROM classes WHERE id = $1`

	var c Class
	err := m.Pool.QueryRow(ctx, stmt, id).Scan(
		&c.ID, &c.Title, &c.Type, &c.Status, &c.StartsAt, &c.Duration,
		&c.Subject, &c.Grade, &c.TeacherID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (m *ClassModel) MarkStarted(ctx context.Context, id string) error {
	stmt := `UPDATE classes SET status = $1 WHERE id = $2 AND status = $3`
	tag, err := m.Pool.Exec(ctx, stmt, ClassStatusLive, id, ClassStatusScheduled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (m *ClassModel) MarkEnded(ctx context.Context, id string) error {
	stmt := `UPDATE classes SET status = $1 WHERE id = $2`
	tag, err := m.Pool.Exec(ctx, stmt, ClassStatusCompleted, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrClassNotFound
	}
	return nil
}
