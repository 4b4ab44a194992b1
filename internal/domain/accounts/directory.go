package accounts

import "context"

// RecipientByEmail expone la identidad mínima de un usuario registrado.
// Lo consume grants para resolver destinatarios (evita ciclos de imports).
func (s *Service) RecipientByEmail(ctx context.Context, email string) (userID, name string, err error) {
	u, lookupErr := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if lookupErr != nil {
		return "", "", ErrNotFound
	}
	return u.ID, u.Name, nil
}
