package grants

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByGrantor(ctx context.Context, grantorUserID string) ([]Grant, error)
	ListByRecipient(ctx context.Context, recipientUserID string) ([]Grant, error)
	ActiveBetween(ctx context.Context, grantorUserID, recipientUserID string) (Grant, error)
}
