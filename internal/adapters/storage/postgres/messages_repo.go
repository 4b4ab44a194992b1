package postgres

import (
	"context"
	"database/sql"
	"strings"

	"profile-agent/internal/domain/chat"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Append(ctx context.Context, m chat.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (
			id, owner_user_id, context_id, role, content, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		m.ID,
		m.OwnerUserID,
		m.ContextID,
		string(m.Role),
		m.Content,
		m.CreatedAt,
	)
	return err
}

func (r *MessagesRepo) ListByContext(ctx context.Context, ownerUserID, contextID string) ([]chat.Message, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	contextID = strings.TrimSpace(contextID)
	if ownerUserID == "" || contextID == "" {
		return nil, nil
	}

	// seq (bigserial) da el orden de inserción aunque dos mensajes
	// compartan created_at
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner_user_id, context_id, role, content, created_at
		FROM chat_messages
		WHERE owner_user_id = $1
		  AND context_id = $2
		ORDER BY seq ASC
	`, ownerUserID, contextID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		var role string

		if err := rows.Scan(
			&m.ID,
			&m.OwnerUserID,
			&m.ContextID,
			&role,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}

		m.Role = chat.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}
