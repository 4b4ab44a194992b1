package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"profile-agent/internal/adapters/assistant/canned"
	"profile-agent/internal/adapters/assistant/remote"
	"profile-agent/internal/adapters/auth/token"
	mem "profile-agent/internal/adapters/storage/memory"
	pg "profile-agent/internal/adapters/storage/postgres"
	"profile-agent/internal/domain/accounts"
	"profile-agent/internal/domain/chat"
	"profile-agent/internal/domain/grants"
	"profile-agent/internal/middleware"
	"profile-agent/internal/platform/logger"
	"profile-agent/internal/ports/assistant"
	"profile-agent/internal/ports/auth"
)

type Options struct {
	// AuthVerifier puede ser nil (modo dev: header X-Debug-User-ID).
	AuthVerifier auth.AuthVerifier

	// Tokens emite tokens de sesión. Si es nil se crea uno desde env.
	Tokens auth.TokenIssuer

	// Responder del asistente. Si es nil: remote si ASSISTANT_URL está
	// configurado, canned en caso contrario.
	Responder assistant.Responder

	// Opcional: si viene, usa Postgres. Si no, in-memory (o DB_DSN por env).
	DB *sql.DB

	// Opcional: request logging.
	Logger logger.Logger

	// Carga el dataset de demo en los repos in-memory.
	SeedDemo bool
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if opts.Logger != nil {
		r.Use(middleware.RequestLogger(opts.Logger))
	}
	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		usersRepo    accounts.Repository
		grantsRepo   grants.Repository
		messagesRepo chat.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		grantsRepo = pg.NewGrantsRepo(db)
		messagesRepo = pg.NewMessagesRepo(db)
	} else {
		usersRepo = mem.NewUsersRepo()
		grantsRepo = mem.NewGrantsRepo()
		messagesRepo = mem.NewMessagesRepo()

		if opts.SeedDemo || strings.EqualFold(os.Getenv("SEED_DEMO_DATA"), "true") {
			_ = mem.SeedDemoData(context.Background(), usersRepo, grantsRepo)
		}
	}

	tokens := opts.Tokens
	if tokens == nil {
		if mgr, err := token.NewManagerFromEnv(); err == nil {
			tokens = mgr
		}
	}

	responder := opts.Responder
	if responder == nil {
		responder = responderFromEnv()
	}

	// Services por módulo
	accountsSvc := accounts.NewService(usersRepo, tokens)
	grantsSvc := grants.NewService(grantsRepo, accountsSvc)
	chatSvc := chat.NewService(messagesRepo, responder, grantsSvc)

	// Rutas por módulo
	accounts.RegisterRoutes(r, accountsSvc)
	grants.RegisterRoutes(r, grantsSvc)
	chat.RegisterRoutes(r, chatSvc)

	return r
}

func responderFromEnv() assistant.Responder {
	if baseURL := strings.TrimSpace(os.Getenv("ASSISTANT_URL")); baseURL != "" {
		client, err := remote.NewClient(remote.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("ASSISTANT_API_KEY"),
		})
		if err == nil {
			return remote.NewResponder(client)
		}
	}

	var delay time.Duration
	if raw := strings.TrimSpace(os.Getenv("ASSISTANT_REPLY_DELAY")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			delay = parsed
		}
	}
	return canned.New(delay)
}
