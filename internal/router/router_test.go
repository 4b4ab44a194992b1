package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profile-agent/internal/adapters/auth/token"
	"profile-agent/internal/domain/grants"
	"profile-agent/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens, err := token.NewManager(token.Config{Secret: "e2e-secret", TTL: time.Hour})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: tokens,
		Tokens:       tokens,
	}))
	t.Cleanup(ts.Close)
	return ts
}

type userDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionDTO struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type grantDTO struct {
	ID              string     `json:"id"`
	GrantorUserID   string     `json:"grantor_user_id"`
	GrantorName     string     `json:"grantor_name"`
	RecipientUserID string     `json:"recipient_user_id"`
	RecipientName   string     `json:"recipient_name"`
	Scopes          []string   `json:"scopes"`
	ExpiresAt       *time.Time `json:"expires_at"`
	IsActive        bool       `json:"is_active"`
}

type grantsListDTO struct {
	Issued   []grantDTO `json:"issued"`
	Received []grantDTO `json:"received"`
}

type messageDTO struct {
	ID        string `json:"id"`
	ContextID string `json:"context_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

type exchangeDTO struct {
	UserMessage      messageDTO `json:"user_message"`
	AssistantMessage messageDTO `json:"assistant_message"`
}

func TestHTTP_EndToEnd_DelegatedAssistantChat(t *testing.T) {
	ts := newTestServer(t)

	// 1) Dos usuarios registrados
	ana := signup(t, ts.URL, "ana@example.com", "Ana")
	bob := signup(t, ts.URL, "bob@example.com", "Bob")

	// 2) Sin token no hay grants
	{
		st, _ := doReq(t, ts.URL, "GET", "/grants", "", nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without token, got %d", st)
		}
	}

	// 3) /me restaura la identidad desde el token
	{
		st, body := doReq(t, ts.URL, "GET", "/me", bob.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on /me, got %d body=%s", st, string(body))
		}
		var me userDTO
		mustDecode(t, body, &me)
		if me.ID != bob.User.ID || me.Name != "Bob" {
			t.Fatalf("unexpected /me identity %#v", me)
		}
	}

	// 4) Ana comparte su perfil con Bob
	var grantID string
	{
		st, body := doReq(t, ts.URL, "POST", "/grants", ana.Token, map[string]any{
			"recipient_email": "bob@example.com",
			"scopes":          []string{string(grants.ScopeFinancialInsights)},
			"expires_at":      nil,
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating grant, got %d body=%s", st, string(body))
		}
		var g grantDTO
		mustDecode(t, body, &g)
		if !g.IsActive || g.ExpiresAt != nil {
			t.Fatalf("expected active grant without expiry, got %#v", g)
		}
		if g.RecipientUserID != bob.User.ID || g.RecipientName != "Bob" {
			t.Fatalf("expected recipient resolved to registered user, got %#v", g)
		}
		grantID = g.ID
	}

	// 5) Vistas emitida/recibida
	{
		st, body := doReq(t, ts.URL, "GET", "/grants", ana.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing grants, got %d", st)
		}
		var list grantsListDTO
		mustDecode(t, body, &list)
		if len(list.Issued) != 1 || len(list.Received) != 0 {
			t.Fatalf("ana: expected 1 issued / 0 received, got %d/%d", len(list.Issued), len(list.Received))
		}
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/grants", bob.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing grants, got %d", st)
		}
		var list grantsListDTO
		mustDecode(t, body, &list)
		if len(list.Issued) != 0 || len(list.Received) != 1 {
			t.Fatalf("bob: expected 0 issued / 1 received, got %d/%d", len(list.Issued), len(list.Received))
		}
		if list.Received[0].GrantorName != "Ana" {
			t.Fatalf("expected grantor name in received view, got %#v", list.Received[0])
		}
	}

	// 6) Bob entra al contexto delegado y conversa con el perfil de Ana
	{
		st, body := doReq(t, ts.URL, "PUT", "/chat/context", bob.Token, map[string]any{
			"type":           "delegated",
			"target_user_id": ana.User.ID,
			"grantor_name":   "Ana",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 setting context, got %d body=%s", st, string(body))
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/chat/messages", bob.Token, map[string]any{
			"content": "how are her finances?",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 sending delegated message, got %d body=%s", st, string(body))
		}
		var ex exchangeDTO
		mustDecode(t, body, &ex)
		want := "Responding about Ana's Profile regarding 'how are her finances?' (Permission check simulated)"
		if ex.AssistantMessage.Content != want {
			t.Fatalf("unexpected assistant reply %q", ex.AssistantMessage.Content)
		}
		if ex.UserMessage.ContextID != "delegated-"+ana.User.ID {
			t.Fatalf("unexpected context id %q", ex.UserMessage.ContextID)
		}
	}

	// 7) Ana conversa con su propio perfil: transcript propio, 2 mensajes
	{
		st, body := doReq(t, ts.URL, "POST", "/chat/messages", ana.Token, map[string]any{
			"content": "hello",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 sending own-profile message, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/chat/messages", ana.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing transcript, got %d", st)
		}
		var msgs []messageDTO
		mustDecode(t, body, &msgs)
		if len(msgs) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(msgs))
		}
		if msgs[0].Role != "user" || msgs[0].Content != "hello" {
			t.Fatalf("unexpected first message %#v", msgs[0])
		}
		if msgs[1].Role != "assistant" || msgs[1].Content != "Responding about Your Profile regarding 'hello'" {
			t.Fatalf("unexpected assistant message %#v", msgs[1])
		}
	}

	// 8) Mensaje en blanco: rechazado, transcript intacto
	{
		st, _ := doReq(t, ts.URL, "POST", "/chat/messages", ana.Token, map[string]any{
			"content": "   ",
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for blank message, got %d", st)
		}

		_, body := doReq(t, ts.URL, "GET", "/chat/messages", ana.Token, nil)
		var msgs []messageDTO
		mustDecode(t, body, &msgs)
		if len(msgs) != 2 {
			t.Fatalf("expected transcript unchanged, got %d messages", len(msgs))
		}
	}

	// 9) Ana revoca; repetir la revocación sigue siendo 200 (idempotente)
	{
		st, body := doReq(t, ts.URL, "POST", "/grants/"+grantID+"/revoke", ana.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 revoking grant, got %d body=%s", st, string(body))
		}
		var g grantDTO
		mustDecode(t, body, &g)
		if g.IsActive {
			t.Fatalf("expected inactive grant after revoke")
		}

		st, body = doReq(t, ts.URL, "POST", "/grants/"+grantID+"/revoke", ana.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 on idempotent revoke, got %d body=%s", st, string(body))
		}
	}

	// 10) La colección emitida mantiene su largo (soft revoke)
	{
		_, body := doReq(t, ts.URL, "GET", "/grants", ana.Token, nil)
		var list grantsListDTO
		mustDecode(t, body, &list)
		if len(list.Issued) != 1 || list.Issued[0].IsActive {
			t.Fatalf("expected 1 inactive issued grant, got %#v", list.Issued)
		}
	}

	// 11) Bob pierde el acceso delegado inmediatamente
	{
		st, _ := doReq(t, ts.URL, "POST", "/chat/messages", bob.Token, map[string]any{
			"content": "still there?",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 delegated send after revoke, got %d", st)
		}
	}

	// 12) Bob vuelve a su propio perfil
	{
		st, _ := doReq(t, ts.URL, "DELETE", "/chat/context", bob.Token, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 clearing context, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/chat/messages", bob.Token, map[string]any{
			"content": "hi",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 own-profile send after clear, got %d", st)
		}
	}
}

func TestHTTP_GrantValidation(t *testing.T) {
	ts := newTestServer(t)
	ana := signup(t, ts.URL, "ana@example.com", "Ana")

	// scopes vacío
	{
		st, _ := doReq(t, ts.URL, "POST", "/grants", ana.Token, map[string]any{
			"recipient_email": "a@b.com",
			"scopes":          []string{},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty scopes, got %d", st)
		}
	}

	// email malformado
	{
		st, _ := doReq(t, ts.URL, "POST", "/grants", ana.Token, map[string]any{
			"recipient_email": "not-an-email",
			"scopes":          []string{string(grants.ScopeReceiptInfo)},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for malformed email, got %d", st)
		}
	}

	// nada quedó creado
	{
		_, body := doReq(t, ts.URL, "GET", "/grants", ana.Token, nil)
		var list grantsListDTO
		mustDecode(t, body, &list)
		if len(list.Issued) != 0 {
			t.Fatalf("expected no grants created, got %d", len(list.Issued))
		}
	}

	// revoke de id inexistente
	{
		st, _ := doReq(t, ts.URL, "POST", "/grants/no-such-grant/revoke", ana.Token, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 revoking unknown grant, got %d", st)
		}
	}
}

func TestHTTP_SignupDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	_ = signup(t, ts.URL, "ana@example.com", "Ana")

	st, _ := doReq(t, ts.URL, "POST", "/auth/signup", "", map[string]any{
		"email":    "ana@example.com",
		"password": "pw",
		"name":     "Ana Dos",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate signup, got %d", st)
	}
}

// -------------------------
// Helpers
// -------------------------

func signup(t *testing.T, baseURL, email, name string) sessionDTO {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/auth/signup", "", map[string]any{
		"email":    email,
		"password": "pw",
		"name":     name,
	})
	if st != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d body=%s", email, st, string(body))
	}

	var sess sessionDTO
	mustDecode(t, body, &sess)
	if sess.Token == "" || sess.User.ID == "" {
		t.Fatalf("signup %s: incomplete session %#v", email, sess)
	}
	return sess
}

func doReq(t *testing.T, baseURL, method, path, bearer string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("decode %T: %v (body=%s)", v, err, string(body))
	}
}
