package chat

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"profile-agent/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/chat", func(cr chi.Router) {
		cr.Get("/context", getContextHandler(svc))
		cr.Put("/context", setContextHandler(svc))
		cr.Delete("/context", clearContextHandler(svc))

		cr.Get("/messages", listMessagesHandler(svc))
		cr.Post("/messages", sendMessageHandler(svc))
	})
}

type contextPayload struct {
	Type         ContextType `json:"type"`
	TargetUserID string      `json:"target_user_id,omitempty"`
	GrantorName  string      `json:"grantor_name,omitempty"`
	ContextID    string      `json:"context_id,omitempty"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	ContextID string    `json:"context_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type exchangeResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
}

func getContextHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		writeJSON(w, http.StatusOK, toContextPayload(svc.CurrentContext(claims.UserID)))
	}
}

func setContextHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req contextPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c := Context{
			Type:         req.Type,
			TargetUserID: req.TargetUserID,
			GrantorName:  req.GrantorName,
		}
		if err := svc.SetContext(claims.UserID, c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toContextPayload(svc.CurrentContext(claims.UserID)))
	}
}

func clearContextHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.ClearContext(claims.UserID); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, toContextPayload(svc.CurrentContext(claims.UserID)))
	}
}

func sendMessageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		ex, err := svc.Send(r.Context(), claims.UserID, req.Content)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrSendInFlight:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrSendFailed:
				http.Error(w, "assistant unavailable", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, exchangeResponse{
			UserMessage:      toMessageResponse(ex.UserMessage),
			AssistantMessage: toMessageResponse(ex.AssistantMessage),
		})
	}
}

func listMessagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.Transcript(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]messageResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toContextPayload(c Context) contextPayload {
	return contextPayload{
		Type:         c.Type,
		TargetUserID: c.TargetUserID,
		GrantorName:  c.GrantorName,
		ContextID:    c.ID(),
	}
}

func toMessageResponse(m Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		ContextID: m.ContextID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
