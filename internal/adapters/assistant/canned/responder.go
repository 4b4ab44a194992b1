package canned

import (
	"context"
	"fmt"
	"time"

	"profile-agent/internal/ports/assistant"
)

// Responder es el asistente mock: respuesta determinística templada según el
// contexto, con latencia simulada opcional. Sirve de stand-in hasta conectar
// un backend de inferencia real (ver adapters/assistant/remote).
type Responder struct {
	delay time.Duration
}

func New(delay time.Duration) *Responder {
	if delay < 0 {
		delay = 0
	}
	return &Responder{delay: delay}
}

func (r *Responder) Reply(ctx context.Context, in assistant.ReplyInput) (string, error) {
	if r.delay > 0 {
		timer := time.NewTimer(r.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	switch {
	case in.OwnProfile:
		return fmt.Sprintf("Responding about Your Profile regarding '%s'", in.Query), nil
	case in.GrantorName != "":
		return fmt.Sprintf("Responding about %s's Profile regarding '%s' (Permission check simulated)", in.GrantorName, in.Query), nil
	default:
		return "I'm not sure which Profile you're trying to access. Please try again.", nil
	}
}
