package chat

import "context"

type Repository interface {
	Append(ctx context.Context, m Message) error
	ListByContext(ctx context.Context, ownerUserID, contextID string) ([]Message, error)
}
