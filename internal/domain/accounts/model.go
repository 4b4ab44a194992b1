package accounts

import "time"

// User es la identidad del dueño de un perfil de asistente.
type User struct {
	ID    string
	Email string
	Name  string

	CreatedAt time.Time
}
