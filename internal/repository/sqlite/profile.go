package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/staffboard/pkg/models"
)

func (r *SQLiteRepo) GetProfileByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, designation, salary, updated FROM profiles WHERE user_id = ?`, userID)
	var p models.Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.Designation, &p.Salary, &p.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

// GetOrCreateProfile relies on the UNIQUE(user_id) constraint so concurrent
// callers for the same user end up reading the same row.
func (r *SQLiteRepo) GetOrCreateProfile(ctx context.Context, userID int64, defaults models.Profile) (*models.Profile, bool, error) {
	res, err := r.conn.Exec(ctx, `INSERT INTO profiles (user_id, designation, salary, updated) VALUES (?, ?, ?, ?) ON CONFLICT(user_id) DO NOTHING`,
		userID, defaults.Designation, defaults.Salary, now())
	if err != nil {
		return nil, false, fmt.Errorf("insert profile for user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	p, err := r.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("profile for user %d vanished after insert", userID)
	}
	if n > 0 {
		r.logger.Debug("profile created", "user_id", userID, "id", p.ID)
	}

	return p, n > 0, nil
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	ts := now()
	_, err := r.conn.Exec(ctx, `UPDATE profiles SET designation = ?, salary = ?, updated = ? WHERE id = ?`, p.Designation, p.Salary, ts, p.ID)
	if err != nil {
		return err
	}
	p.Updated = ts

	return nil
}
