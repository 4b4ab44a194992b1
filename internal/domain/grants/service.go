package grants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// RecipientDirectory resuelve destinatarios registrados por email.
// Lo implementa accounts.Service (evita importar el paquete accounts).
type RecipientDirectory interface {
	RecipientByEmail(ctx context.Context, email string) (userID, name string, err error)
}

type Service struct {
	repo      Repository
	directory RecipientDirectory // puede ser nil
	validate  *validator.Validate
	now       func() time.Time
}

func NewService(repo Repository, directory RecipientDirectory) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		validate:  validator.New(),
		now:       time.Now,
	}
}

type GrantInput struct {
	GrantorUserID string
	GrantorName   string
	GrantorEmail  string

	RecipientEmail string
	Scopes         []Scope
	ExpiresAt      *time.Time
}

// Grant crea un grant activo del grantor hacia el email destinatario.
// Toda la validación ocurre antes de tocar el repo: en error, la colección
// emitida queda intacta.
func (s *Service) Grant(ctx context.Context, in GrantInput) (Grant, error) {
	grantorID := strings.TrimSpace(in.GrantorUserID)
	email := strings.ToLower(strings.TrimSpace(in.RecipientEmail))

	if grantorID == "" || email == "" {
		return Grant{}, ErrInvalidInput
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return Grant{}, ErrInvalidInput
	}

	scopes, err := normalizeScopesStrict(in.Scopes)
	if err != nil {
		return Grant{}, err
	}
	if len(scopes) == 0 {
		return Grant{}, ErrInvalidInput
	}

	now := s.now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return Grant{}, ErrInvalidInput
	}

	recipientID, recipientName := s.resolveRecipient(ctx, email)
	if recipientID == grantorID {
		return Grant{}, ErrInvalidInput
	}

	g := Grant{
		ID:              uuid.NewString(),
		GrantorUserID:   grantorID,
		GrantorName:     strings.TrimSpace(in.GrantorName),
		GrantorEmail:    strings.ToLower(strings.TrimSpace(in.GrantorEmail)),
		RecipientUserID: recipientID,
		RecipientEmail:  email,
		RecipientName:   recipientName,
		Scopes:          scopes,
		ExpiresAt:       in.ExpiresAt,
		IsActive:        true,
		CreatedAt:       now,
		RevokedAt:       nil,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// Revoke apaga IsActive. Solo el grantor puede revocar; repetir sobre un
// grant ya inactivo es éxito sin cambios.
func (s *Service) Revoke(ctx context.Context, grantID, grantorUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	grantorUserID = strings.TrimSpace(grantorUserID)

	if grantID == "" || grantorUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.GrantorUserID != grantorUserID {
		return Grant{}, ErrForbidden
	}

	// Idempotente
	if !g.IsActive {
		return g, nil
	}

	now := s.now()
	g.IsActive = false
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

// ListForUser devuelve los snapshots emitidos y recibidos del usuario.
func (s *Service) ListForUser(ctx context.Context, userID string) (issued, received []Grant, err error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil, ErrInvalidInput
	}

	issued, err = s.repo.ListByGrantor(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	received, err = s.repo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return issued, received, nil
}

// HasActiveGrant responde si existe un grant activo grantor→recipient.
// Lo consume chat para validar sesiones delegadas.
func (s *Service) HasActiveGrant(ctx context.Context, grantorUserID, recipientUserID string) (bool, error) {
	grantorUserID = strings.TrimSpace(grantorUserID)
	recipientUserID = strings.TrimSpace(recipientUserID)

	if grantorUserID == "" || recipientUserID == "" {
		return false, nil
	}
	if _, err := s.repo.ActiveBetween(ctx, grantorUserID, recipientUserID); err != nil {
		return false, nil
	}
	return true, nil
}

// resolveRecipient usa el directorio si el email está registrado; si no,
// sintetiza identidad como el backend mock (id fresco, nombre del local part).
func (s *Service) resolveRecipient(ctx context.Context, email string) (string, string) {
	if s.directory != nil {
		if id, name, err := s.directory.RecipientByEmail(ctx, email); err == nil && strings.TrimSpace(id) != "" {
			return id, name
		}
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return uuid.NewString(), name
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeFinancialInsights: {},
		ScopeReceiptInfo:       {},
		ScopeCalendarInfo:      {},
		ScopeContactInfo:       {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		sc := Scope(strings.TrimSpace(string(raw)))
		if sc == "" {
			continue
		}
		if _, ok := allowed[sc]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[sc]; ok {
			continue
		}
		seen[sc] = struct{}{}
		out = append(out, sc)
	}

	return out, nil
}
