package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"profile-agent/internal/ports/assistant"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrSendInFlight = errors.New("send already in flight")
	ErrSendFailed   = errors.New("send failed")
)

// GrantChecker responde si existe un grant activo grantor→recipient.
// Lo implementa grants.Service (evita importar el paquete grants).
type GrantChecker interface {
	HasActiveGrant(ctx context.Context, grantorUserID, recipientUserID string) (bool, error)
}

type Service struct {
	repo      Repository
	responder assistant.Responder
	grantChk  GrantChecker // nil => sin chequeo de grants en contextos delegados
	now       func() time.Time

	mu       sync.Mutex
	current  map[string]Context // selector de contexto por usuario
	inFlight map[string]bool    // un solo send a la vez por usuario
}

func NewService(repo Repository, responder assistant.Responder, grantChk GrantChecker) *Service {
	return &Service{
		repo:      repo,
		responder: responder,
		grantChk:  grantChk,
		now:       time.Now,
		current:   make(map[string]Context),
		inFlight:  make(map[string]bool),
	}
}

// SetContext reemplaza el contexto actual sin tocar transcripts.
func (s *Service) SetContext(userID string, c Context) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}

	c.TargetUserID = strings.TrimSpace(c.TargetUserID)
	c.GrantorName = strings.TrimSpace(c.GrantorName)

	switch c.Type {
	case ContextMyProfile:
		c.TargetUserID = ""
		c.GrantorName = ""
	case ContextDelegated:
		if c.TargetUserID == "" {
			return ErrInvalidInput
		}
	default:
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[userID] = c
	return nil
}

// ClearContext vuelve al perfil propio.
func (s *Service) ClearContext(userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current[userID] = DefaultContext()
	return nil
}

func (s *Service) CurrentContext(userID string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.current[strings.TrimSpace(userID)]; ok {
		return c
	}
	return DefaultContext()
}

// Exchange es el resultado de un send completo: el mensaje del usuario
// (append optimista) y la respuesta del asistente.
type Exchange struct {
	UserMessage      Message
	AssistantMessage Message
}

// Send agrega el mensaje del usuario al transcript del contexto actual y
// le pide la respuesta al asistente. Contenido en blanco no toca nada.
// Un send en vuelo por usuario: el guard serializa envíos al mismo transcript.
// Si el asistente falla, el mensaje del usuario ya agregado se conserva.
func (s *Service) Send(ctx context.Context, userID, content string) (Exchange, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(content) == "" {
		return Exchange{}, ErrInvalidInput
	}

	s.mu.Lock()
	if s.inFlight[userID] {
		s.mu.Unlock()
		return Exchange{}, ErrSendInFlight
	}
	s.inFlight[userID] = true
	cur, ok := s.current[userID]
	if !ok {
		cur = DefaultContext()
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, userID)
		s.mu.Unlock()
	}()

	if cur.Type == ContextDelegated && s.grantChk != nil {
		allowed, err := s.grantChk.HasActiveGrant(ctx, cur.TargetUserID, userID)
		if err != nil {
			return Exchange{}, ErrSendFailed
		}
		if !allowed {
			return Exchange{}, ErrForbidden
		}
	}

	contextID := cur.ID()

	userMsg := Message{
		ID:          uuid.NewString(),
		OwnerUserID: userID,
		ContextID:   contextID,
		Role:        RoleUser,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Append(ctx, userMsg); err != nil {
		return Exchange{}, ErrSendFailed
	}

	reply, err := s.responder.Reply(ctx, assistant.ReplyInput{
		Query:        content,
		OwnProfile:   cur.Type == ContextMyProfile,
		TargetUserID: cur.TargetUserID,
		GrantorName:  cur.GrantorName,
	})
	if err != nil {
		// El mensaje del usuario queda en el transcript.
		return Exchange{UserMessage: userMsg}, ErrSendFailed
	}

	asstMsg := Message{
		ID:          uuid.NewString(),
		OwnerUserID: userID,
		ContextID:   contextID,
		Role:        RoleAssistant,
		Content:     reply,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Append(ctx, asstMsg); err != nil {
		return Exchange{UserMessage: userMsg}, ErrSendFailed
	}

	return Exchange{UserMessage: userMsg, AssistantMessage: asstMsg}, nil
}

// Transcript devuelve los mensajes del contexto actual del usuario, en orden.
func (s *Service) Transcript(ctx context.Context, userID string) ([]Message, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByContext(ctx, userID, s.CurrentContext(userID).ID())
}
