package main

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/config"
	"github.com/cisd/recruitment-portal/internal/handler"
	"github.com/cisd/recruitment-portal/internal/ratelimit"
	"github.com/cisd/recruitment-portal/internal/server"
	"github.com/cisd/recruitment-portal/internal/session"
	"github.com/cisd/recruitment-portal/internal/template"

	"github.com/allegro/bigcache/v3"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//go:embed static/views/*.html static/assets
var static embed.FS

func main() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.DebugLevel)
	}

	revoked, err := bigcache.New(context.Background(), bigcache.DefaultConfig(cfg.CacheTTL))
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to initialise session revocation cache")
	}
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = !cfg.IsDev()
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionManager := session.NewManager(sessionStore, revoked)

	apiClient := api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, logger)

	var limiter *ratelimit.Limiter
	if cfg.RedisURL != "" {
		client, err := ratelimit.Dial(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Error().Err(err).Msg("redis unavailable, submissions are not rate limited")
		} else {
			limiter = ratelimit.New(client, cfg.SubmissionsPerHour, time.Hour)
		}
	}

	svr, err := server.NewServer(
		cfg,
		mux.NewRouter(),
		template.NewTemplate(static),
		logger,
		sessionManager,
		apiClient,
		limiter,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to create server")
	}

	assets, err := fs.Sub(static, "static/assets")
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to load static assets")
	}
	handler.RegisterRoutes(svr, assets)

	logger.Fatal().Err(svr.Run()).Msg("server stopped")
}
