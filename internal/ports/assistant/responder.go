package assistant

import "context"

// ReplyInput describe la consulta y el contexto de perfil sobre el que responde
// el asistente. Campos planos para no acoplar el port al paquete chat.
type ReplyInput struct {
	Query        string
	OwnProfile   bool
	TargetUserID string
	GrantorName  string
}

// Responder produce la respuesta del asistente para una consulta.
// Implementaciones: canned (mock determinístico) y remote (backend real).
type Responder interface {
	Reply(ctx context.Context, in ReplyInput) (string, error)
}
