package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"profile-agent/internal/ports/auth"
)

var (
	ErrSecretRequired = errors.New("token secret required")
	ErrInvalidToken   = errors.New("invalid token")
)

// DevSecret se usa solo cuando AUTH_TOKEN_SECRET no está definido (modo dev).
const DevSecret = "dev-only-insecure-secret"

const defaultTTL = 24 * time.Hour

type Config struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// Manager emite y verifica tokens HS256. Implementa auth.TokenIssuer
// y auth.AuthVerifier.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewManager(cfg Config) (*Manager, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, ErrSecretRequired
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "profile-agent"
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: issuer,
		now:    time.Now,
	}, nil
}

// NewManagerFromEnv lee AUTH_TOKEN_SECRET y AUTH_TOKEN_TTL.
// Sin secret cae en DevSecret; nunca usar así en producción.
func NewManagerFromEnv() (*Manager, error) {
	secret := strings.TrimSpace(os.Getenv("AUTH_TOKEN_SECRET"))
	if secret == "" {
		secret = DevSecret
	}
	var ttl time.Duration
	if raw := strings.TrimSpace(os.Getenv("AUTH_TOKEN_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTH_TOKEN_TTL: %w", err)
		}
		ttl = parsed
	}
	return NewManager(Config{Secret: secret, TTL: ttl})
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func (m *Manager) Issue(ctx context.Context, claims auth.Claims) (string, error) {
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return "", errors.New("claims missing user id")
	}

	now := m.now()
	sc := sessionClaims{
		Email: strings.TrimSpace(claims.Email),
		Name:  strings.TrimSpace(claims.Name),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sc)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(ctx context.Context, tokenStr string) (auth.Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	var sc sessionClaims
	parsed, err := jwt.ParseWithClaims(
		tokenStr,
		&sc,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, ErrInvalidToken
	}

	userID := strings.TrimSpace(sc.Subject)
	if userID == "" {
		return auth.Claims{}, ErrInvalidToken
	}

	return auth.Claims{
		UserID: userID,
		Email:  sc.Email,
		Name:   sc.Name,
	}, nil
}
