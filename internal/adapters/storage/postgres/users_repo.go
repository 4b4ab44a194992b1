package postgres

import (
	"context"
	"database/sql"
	"strings"

	"profile-agent/internal/domain/accounts"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u accounts.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, created_at)
		VALUES ($1,$2,$3,$4)
	`,
		u.ID,
		strings.ToLower(strings.TrimSpace(u.Email)),
		u.Name,
		u.CreatedAt,
	)
	return err
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		WHERE id = $1
	`, id)

	return scanUser(row)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return accounts.User{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		WHERE email = $1
	`, email)

	return scanUser(row)
}

func scanUser(row *sql.Row) (accounts.User, error) {
	var u accounts.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return accounts.User{}, ErrNotFound
		}
		return accounts.User{}, err
	}
	return u, nil
}
