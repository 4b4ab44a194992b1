package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"profile-agent/internal/domain/grants"
)

type GrantsRepo struct {
	db *sql.DB
}

func NewGrantsRepo(db *sql.DB) *GrantsRepo {
	return &GrantsRepo{db: db}
}

const grantColumns = `
	id, grantor_user_id, grantor_name, grantor_email,
	recipient_user_id, recipient_email, recipient_name,
	scopes, expires_at, is_active,
	created_at, revoked_at
`

func (r *GrantsRepo) Create(ctx context.Context, g grants.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO permission_grants (
			id, grantor_user_id, grantor_name, grantor_email,
			recipient_user_id, recipient_email, recipient_name,
			scopes, expires_at, is_active,
			created_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		g.ID,
		g.GrantorUserID,
		g.GrantorName,
		g.GrantorEmail,
		g.RecipientUserID,
		g.RecipientEmail,
		g.RecipientName,
		scopesToTextArray(g.Scopes),
		toNullTime(g.ExpiresAt),
		g.IsActive,
		g.CreatedAt,
		toNullTime(g.RevokedAt),
	)
	return err
}

func (r *GrantsRepo) Update(ctx context.Context, g grants.Grant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE permission_grants
		SET
			scopes = $2,
			expires_at = $3,
			is_active = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		g.ID,
		scopesToTextArray(g.Scopes),
		toNullTime(g.ExpiresAt),
		g.IsActive,
		toNullTime(g.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GrantsRepo) GetByID(ctx context.Context, id string) (grants.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return grants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM permission_grants
		WHERE id = $1
	`, id)

	g, err := scanGrant(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return grants.Grant{}, ErrNotFound
		}
		return grants.Grant{}, err
	}
	return g, nil
}

func (r *GrantsRepo) ListByGrantor(ctx context.Context, grantorUserID string) ([]grants.Grant, error) {
	return r.list(ctx, `
		SELECT `+grantColumns+`
		FROM permission_grants
		WHERE grantor_user_id = $1
		ORDER BY created_at ASC
	`, grantorUserID)
}

func (r *GrantsRepo) ListByRecipient(ctx context.Context, recipientUserID string) ([]grants.Grant, error) {
	return r.list(ctx, `
		SELECT `+grantColumns+`
		FROM permission_grants
		WHERE recipient_user_id = $1
		ORDER BY created_at ASC
	`, recipientUserID)
}

func (r *GrantsRepo) ActiveBetween(ctx context.Context, grantorUserID, recipientUserID string) (grants.Grant, error) {
	grantorUserID = strings.TrimSpace(grantorUserID)
	recipientUserID = strings.TrimSpace(recipientUserID)
	if grantorUserID == "" || recipientUserID == "" {
		return grants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+grantColumns+`
		FROM permission_grants
		WHERE grantor_user_id = $1
		  AND recipient_user_id = $2
		  AND is_active = TRUE
		ORDER BY created_at DESC
		LIMIT 1
	`, grantorUserID, recipientUserID)

	g, err := scanGrant(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return grants.Grant{}, ErrNotFound
		}
		return grants.Grant{}, err
	}
	return g, nil
}

func (r *GrantsRepo) list(ctx context.Context, query, arg string) ([]grants.Grant, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]grants.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGrant(scan func(dest ...any) error) (grants.Grant, error) {
	var g grants.Grant
	var scopes []string
	var expiresAt, revokedAt sql.NullTime

	if err := scan(
		&g.ID,
		&g.GrantorUserID,
		&g.GrantorName,
		&g.GrantorEmail,
		&g.RecipientUserID,
		&g.RecipientEmail,
		&g.RecipientName,
		&scopes,
		&expiresAt,
		&g.IsActive,
		&g.CreatedAt,
		&revokedAt,
	); err != nil {
		return grants.Grant{}, err
	}

	g.Scopes = textArrayToScopes(scopes)
	if expiresAt.Valid {
		t := expiresAt.Time
		g.ExpiresAt = &t
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}
	return g, nil
}

func scopesToTextArray(in []grants.Scope) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func textArrayToScopes(in []string) []grants.Scope {
	out := make([]grants.Scope, 0, len(in))
	for _, s := range in {
		out = append(out, grants.Scope(s))
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
