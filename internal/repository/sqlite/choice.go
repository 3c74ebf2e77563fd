package sqlite

import (
	"context"
	"fmt"

	"github.com/garnizeh/staffboard/pkg/models"
)

func (r *SQLiteRepo) CreateChoice(ctx context.Context, c *models.Choice) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("choice is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO choices (question_id, text, created, updated) VALUES (?, ?, ?, ?)`, c.QuestionID, c.Text, ts, ts)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID, c.Created, c.Updated = id, ts, ts

	return id, nil
}

func (r *SQLiteRepo) ListChoicesByQuestion(ctx context.Context, questionID int64) ([]models.Choice, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, question_id, text, created, updated FROM choices WHERE question_id = ? ORDER BY created ASC, id ASC`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Choice
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Created, &c.Updated); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}
