package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/staffboard/pkg/models"
)

const questionColumns = `id, title, is_active, start_date, end_date, create_user_id, created, updated`

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteRepo) CreateQuestion(ctx context.Context, q *models.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("question is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO questions (title, is_active, start_date, end_date, create_user_id, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Title, q.IsActive, dateValue(q.StartDate), dateValue(q.EndDate), q.CreateUserID, ts, ts)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	q.ID, q.Created, q.Updated = id, ts, ts

	return id, nil
}

func (r *SQLiteRepo) GetQuestionByID(ctx context.Context, id int64) (*models.Question, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return q, nil
}

func (r *SQLiteRepo) ListQuestions(ctx context.Context) ([]models.Question, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY created DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}

	return out, rows.Err()
}

func scanQuestion(s scanner) (*models.Question, error) {
	var q models.Question
	var start, end sql.NullString
	if err := s.Scan(&q.ID, &q.Title, &q.IsActive, &start, &end, &q.CreateUserID, &q.Created, &q.Updated); err != nil {
		return nil, err
	}

	var err error
	if q.StartDate, err = scanDate(start); err != nil {
		return nil, fmt.Errorf("question %d start_date: %w", q.ID, err)
	}
	if q.EndDate, err = scanDate(end); err != nil {
		return nil, fmt.Errorf("question %d end_date: %w", q.ID, err)
	}

	return &q, nil
}
