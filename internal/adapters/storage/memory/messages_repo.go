package memory

import (
	"context"
	"errors"
	"sync"

	"profile-agent/internal/domain/chat"
)

type messageRepo struct {
	mu    sync.RWMutex
	byKey map[string][]chat.Message // ownerUserID + "/" + contextID
}

func NewMessagesRepo() chat.Repository {
	return &messageRepo{
		byKey: make(map[string][]chat.Message),
	}
}

func transcriptKey(ownerUserID, contextID string) string {
	return ownerUserID + "/" + contextID
}

func (r *messageRepo) Append(ctx context.Context, m chat.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("message id required")
	}
	if m.OwnerUserID == "" || m.ContextID == "" {
		return errors.New("message owner and context required")
	}

	k := transcriptKey(m.OwnerUserID, m.ContextID)
	r.byKey[k] = append(r.byKey[k], m)
	return nil
}

func (r *messageRepo) ListByContext(ctx context.Context, ownerUserID, contextID string) ([]chat.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byKey[transcriptKey(ownerUserID, contextID)]

	// copia: los mensajes son inmutables para los callers
	out := make([]chat.Message, len(stored))
	copy(out, stored)
	return out, nil
}
