package chat

import "time"

// ContextType discrimina sobre qué perfil conversa la sesión.
type ContextType string

const (
	ContextMyProfile ContextType = "myProfile"
	ContextDelegated ContextType = "delegated"
)

// Context selecciona el perfil objetivo del chat: el propio, o el de un
// grantor bajo un grant delegado. GrantorName llega por valor desde la UI.
type Context struct {
	Type         ContextType
	TargetUserID string
	GrantorName  string
}

func DefaultContext() Context {
	return Context{Type: ContextMyProfile}
}

// ID deriva la clave de transcript del contexto. Dos targets delegados
// distintos nunca colisionan.
func (c Context) ID() string {
	switch {
	case c.Type == ContextMyProfile:
		return "myProfile"
	case c.Type == ContextDelegated && c.TargetUserID != "":
		return "delegated-" + c.TargetUserID
	default:
		return "unknown"
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message es inmutable una vez agregado a su transcript.
type Message struct {
	ID          string
	OwnerUserID string // dueño de la sesión (quien envía)
	ContextID   string
	Role        Role
	Content     string
	CreatedAt   time.Time
}
