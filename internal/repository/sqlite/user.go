package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/staffboard/pkg/models"
	"github.com/garnizeh/staffboard/pkg/repository"
)

const userColumns = `id, username, first_name, last_name, is_staff, password_hash, created, updated`

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO users (username, first_name, last_name, is_staff, password_hash, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Username, u.FirstName, u.LastName, u.IsStaff, u.PasswordHash, ts, ts)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("create user %q: %w", u.Username, repository.ErrDuplicateUsername)
		}
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID, u.Created, u.Updated = id, ts, ts
	r.logger.Debug("user created", "id", id, "username", u.Username)

	return id, nil
}

func (r *SQLiteRepo) CreateUserWithProfile(ctx context.Context, u *models.User, profile models.Profile) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	ts := now()
	var id int64
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO users (username, first_name, last_name, is_staff, password_hash, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.Username, u.FirstName, u.LastName, u.IsStaff, u.PasswordHash, ts, ts)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("create user %q: %w", u.Username, repository.ErrDuplicateUsername)
			}
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (user_id, designation, salary, updated) VALUES (?, ?, ?, ?)`,
			id, profile.Designation, profile.Salary, ts); err != nil {
			return fmt.Errorf("insert profile for user %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	u.ID, u.Created, u.Updated = id, ts, ts
	r.logger.Debug("user created with profile", "id", id, "username", u.Username)

	return id, nil
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *SQLiteRepo) SetStaff(ctx context.Context, id int64, staff bool) error {
	res, err := r.conn.Exec(ctx, `UPDATE users SET is_staff = ?, updated = ? WHERE id = ?`, staff, now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.IsStaff, &u.PasswordHash, &u.Created, &u.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &u, nil
}
