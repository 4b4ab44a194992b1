package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"profile-agent/internal/platform/httpclient"
	"profile-agent/internal/ports/assistant"
)

var (
	ErrNotConfigured = errors.New("assistant backend not configured")
	ErrUpstream      = errors.New("assistant upstream error")
)

// Config del cliente hacia el backend de inferencia real.
// BaseURL y APIKey normalmente vienen de env vars (ver router).
type Config struct {
	BaseURL string
	APIKey  string

	// Header de la API key; vacío usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: header,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

// TODO(assistant): ajustar path y shapes cuando exista el contrato real del
// backend de inferencia; esto replica el boundary POST /chat del mock.
const chatPath = "/chat"

type chatRequest struct {
	Query   string      `json:"query"`
	Context chatContext `json:"context"`
}

type chatContext struct {
	Type         string `json:"type"`
	TargetUserID string `json:"target_user_id,omitempty"`
	GrantorName  string `json:"grantor_name,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func (c *Client) Chat(ctx context.Context, in assistant.ReplyInput) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	ctxType := "delegated"
	if in.OwnProfile {
		ctxType = "myProfile"
	}

	req := chatRequest{
		Query: in.Query,
		Context: chatContext{
			Type:         ctxType,
			TargetUserID: in.TargetUserID,
			GrantorName:  in.GrantorName,
		},
	}

	var resp chatResponse
	err := c.http.DoJSON(ctx, http.MethodPost, chatPath,
		map[string]string{c.apiKeyHeader: c.apiKey},
		req, &resp,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return resp.Response, nil
}
