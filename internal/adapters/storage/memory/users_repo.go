package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"profile-agent/internal/domain/accounts"
)

type userRepo struct {
	mu      sync.RWMutex
	byID    map[string]accounts.User
	byEmail map[string]string // email -> id
}

func NewUsersRepo() accounts.Repository {
	return &userRepo{
		byID:    make(map[string]accounts.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepo) Create(ctx context.Context, u accounts.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ID == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := r.byEmail[email]; exists {
		return errors.New("email already registered")
	}

	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return accounts.User{}, ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (accounts.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return accounts.User{}, ErrNotFound
	}
	return r.byID[id], nil
}
