package grants

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"profile-agent/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/grants", func(gr chi.Router) {
		gr.Get("/", listGrantsHandler(svc))
		gr.Post("/", grantHandler(svc))
		gr.Post("/{grantID}/revoke", revokeGrantHandler(svc))
	})
}

type grantRequest struct {
	RecipientEmail string     `json:"recipient_email"`
	Scopes         []Scope    `json:"scopes"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type grantResponse struct {
	ID              string     `json:"id"`
	GrantorUserID   string     `json:"grantor_user_id"`
	GrantorName     string     `json:"grantor_name,omitempty"`
	GrantorEmail    string     `json:"grantor_email,omitempty"`
	RecipientUserID string     `json:"recipient_user_id"`
	RecipientEmail  string     `json:"recipient_email,omitempty"`
	RecipientName   string     `json:"recipient_name,omitempty"`
	Scopes          []Scope    `json:"scopes"`
	ExpiresAt       *time.Time `json:"expires_at"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

type grantsListResponse struct {
	Issued   []grantResponse `json:"issued"`
	Received []grantResponse `json:"received"`
}

func grantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req grantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.Grant(r.Context(), GrantInput{
			GrantorUserID:  claims.UserID,
			GrantorName:    claims.Name,
			GrantorEmail:   claims.Email,
			RecipientEmail: req.RecipientEmail,
			Scopes:         req.Scopes,
			ExpiresAt:      req.ExpiresAt,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(g))
	}
}

func listGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// active=true filtra a grants con IsActive (el vencimiento no filtra;
		// es informativo para el cliente).
		onlyActive := strings.EqualFold(r.URL.Query().Get("active"), "true")

		issued, received, err := svc.ListForUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if onlyActive {
			issued = filterActive(issued)
			received = filterActive(received)
		}

		writeJSON(w, http.StatusOK, grantsListResponse{
			Issued:   toGrantResponses(issued),
			Received: toGrantResponses(received),
		})
	}
}

func revokeGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		grantID := chi.URLParam(r, "grantID")
		g, err := svc.Revoke(r.Context(), grantID, claims.UserID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

func filterActive(in []Grant) []Grant {
	out := make([]Grant, 0, len(in))
	for _, g := range in {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out
}

func toGrantResponse(g Grant) grantResponse {
	return grantResponse{
		ID:              g.ID,
		GrantorUserID:   g.GrantorUserID,
		GrantorName:     g.GrantorName,
		GrantorEmail:    g.GrantorEmail,
		RecipientUserID: g.RecipientUserID,
		RecipientEmail:  g.RecipientEmail,
		RecipientName:   g.RecipientName,
		Scopes:          g.Scopes,
		ExpiresAt:       g.ExpiresAt,
		IsActive:        g.IsActive,
		CreatedAt:       g.CreatedAt,
		RevokedAt:       g.RevokedAt,
	}
}

func toGrantResponses(in []Grant) []grantResponse {
	out := make([]grantResponse, 0, len(in))
	for _, g := range in {
		out = append(out, toGrantResponse(g))
	}
	return out
}

// writeJSON está duplicado en handlers de distintos módulos a propósito;
// extraer un helper común recién cuando haga falta en más lugares.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
