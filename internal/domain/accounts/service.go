package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"profile-agent/internal/ports/auth"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotFound           = errors.New("not found")
)

type Service struct {
	repo     Repository
	tokens   auth.TokenIssuer
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, tokens auth.TokenIssuer) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		validate: validator.New(),
		now:      time.Now,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type Session struct {
	User  User
	Token string
}

// Login autentica por email. El backend mock no guarda passwords: un email
// desconocido se auto-provisiona (el producto original siempre sintetiza éxito).
// ErrInvalidCredentials queda en el contrato para un backend real.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.Password) == "" {
		return Session{}, ErrInvalidInput
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return Session{}, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		u = User{
			ID:        uuid.NewString(),
			Email:     email,
			Name:      nameFromEmail(email),
			CreatedAt: s.now(),
		}
		if err := s.repo.Create(ctx, u); err != nil {
			return Session{}, err
		}
	}

	return s.openSession(ctx, u)
}

type SignupInput struct {
	Email    string
	Password string
	Name     string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (Session, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || strings.TrimSpace(in.Password) == "" || name == "" {
		return Session{}, ErrInvalidInput
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return Session{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	}

	u := User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return Session{}, err
	}

	return s.openSession(ctx, u)
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) openSession(ctx context.Context, u User) (Session, error) {
	tok, err := s.tokens.Issue(ctx, auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
	})
	if err != nil {
		return Session{}, err
	}
	return Session{User: u, Token: tok}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nameFromEmail deriva un display name del local part (misma heurística del mock).
func nameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
