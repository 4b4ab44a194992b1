package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"profile-agent/internal/domain/grants"
)

type grantRepo struct {
	mu   sync.RWMutex
	byID map[string]grants.Grant
}

func NewGrantsRepo() grants.Repository {
	return &grantRepo{
		byID: make(map[string]grants.Grant),
	}
}

// El mutex serializa grant/revoke concurrentes: ningún update se pierde.
func (r *grantRepo) Create(ctx context.Context, g grants.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) Update(ctx context.Context, g grants.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (grants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return grants.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *grantRepo) ListByGrantor(ctx context.Context, grantorUserID string) ([]grants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]grants.Grant, 0)
	for _, g := range r.byID {
		if g.GrantorUserID == grantorUserID {
			out = append(out, g)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *grantRepo) ListByRecipient(ctx context.Context, recipientUserID string) ([]grants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]grants.Grant, 0)
	for _, g := range r.byID {
		if g.RecipientUserID == recipientUserID {
			out = append(out, g)
		}
	}
	sortByCreatedAt(out)
	return out, nil
}

func (r *grantRepo) ActiveBetween(ctx context.Context, grantorUserID, recipientUserID string) (grants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Defensivo: si hubiera múltiples activos, gana el más reciente.
	var winner grants.Grant
	has := false

	for _, g := range r.byID {
		if g.GrantorUserID != grantorUserID {
			continue
		}
		if g.RecipientUserID != recipientUserID {
			continue
		}
		if !g.IsActive {
			continue
		}
		if !has || g.CreatedAt.After(winner.CreatedAt) {
			winner = g
			has = true
		}
	}

	if !has {
		return grants.Grant{}, ErrNotFound
	}
	return winner, nil
}

// sortByCreatedAt da colecciones estables (el map no tiene orden).
func sortByCreatedAt(in []grants.Grant) {
	sort.Slice(in, func(i, j int) bool {
		if in[i].CreatedAt.Equal(in[j].CreatedAt) {
			return in[i].ID < in[j].ID
		}
		return in[i].CreatedAt.Before(in[j].CreatedAt)
	})
}
