package main

import (
	"net/http"
	"os"
	"time"

	"profile-agent/internal/adapters/auth/token"
	"profile-agent/internal/platform/logger"
	"profile-agent/internal/router"
)

func main() {
	log := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	tokens, err := token.NewManagerFromEnv()
	if err != nil {
		log.Error("token manager init failed", "error", err.Error())
		os.Exit(1)
	}
	if os.Getenv("AUTH_TOKEN_SECRET") == "" {
		log.Warn("AUTH_TOKEN_SECRET not set, using dev secret")
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: tokens,
		Tokens:       tokens,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
