package grants

import "time"

// Scope es una etiqueta de capacidad sobre el perfil del grantor.
type Scope string

const (
	ScopeFinancialInsights Scope = "Access Financial Insights"
	ScopeReceiptInfo       Scope = "Access Receipt Information"
	ScopeCalendarInfo      Scope = "Access Calendar Information"
	ScopeContactInfo       Scope = "Access Contact Information"
)

// Grant autoriza a un recipient a conversar con el asistente del grantor
// dentro de un scope acotado. Nunca se borra: revocar apaga IsActive.
type Grant struct {
	ID string

	GrantorUserID string // quien comparte su perfil
	GrantorName   string
	GrantorEmail  string

	RecipientUserID string // delegado
	RecipientEmail  string
	RecipientName   string

	Scopes    []Scope
	ExpiresAt *time.Time // nil = sin vencimiento
	IsActive  bool

	CreatedAt time.Time
	RevokedAt *time.Time
}

// HasScope valida si el grant incluye un scope.
func HasScope(g Grant, scope Scope) bool {
	for _, s := range g.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// IsExpired es informativo: el vencimiento no apaga IsActive por sí solo
// (decisión de producto heredada; los listados activos filtran solo IsActive).
func IsExpired(g Grant, now time.Time) bool {
	return g.ExpiresAt != nil && !g.ExpiresAt.After(now)
}
