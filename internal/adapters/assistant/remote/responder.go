package remote

import (
	"context"

	"profile-agent/internal/ports/assistant"
)

// Responder implementa assistant.Responder contra el backend remoto.
type Responder struct {
	client *Client
}

func NewResponder(client *Client) *Responder {
	return &Responder{client: client}
}

func (r *Responder) Reply(ctx context.Context, in assistant.ReplyInput) (string, error) {
	if r == nil || r.client == nil {
		return "", ErrNotConfigured
	}
	return r.client.Chat(ctx, in)
}
