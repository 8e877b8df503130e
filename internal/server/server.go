package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/config"
	"github.com/cisd/recruitment-portal/internal/middleware"
	"github.com/cisd/recruitment-portal/internal/payment"
	"github.com/cisd/recruitment-portal/internal/process"
	"github.com/cisd/recruitment-portal/internal/ratelimit"
	"github.com/cisd/recruitment-portal/internal/review"
	"github.com/cisd/recruitment-portal/internal/session"
	"github.com/cisd/recruitment-portal/internal/template"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg      config.Config
	router   *mux.Router
	tmpl     *template.Template
	logger   zerolog.Logger
	bigCache *bigcache.BigCache

	Sessions     *session.Manager
	API          *api.Client
	Applications *application.Cache
	Updater      *review.Updater
	Comments     *review.CommentDrafts
	Payments     *payment.Repository
	Process      *process.Service
	Limiter      *ratelimit.Limiter
}

// NewServer wires the admin services around one bigcache instance. Clearing
// a session drops its cached applications and pending comment writes.
func NewServer(
	cfg config.Config,
	r *mux.Router,
	t *template.Template,
	logger zerolog.Logger,
	sessions *session.Manager,
	apiClient *api.Client,
	limiter *ratelimit.Limiter,
) (Server, error) {
	raven.SetDSN(cfg.SentryDSN)

	bigCache, err := bigcache.New(context.Background(), bigcache.DefaultConfig(cfg.CacheTTL))
	if err != nil {
		return Server{}, errors.Wrap(err, "unable to initialise big cache")
	}
	apps := application.NewCache(bigCache)
	updater := review.NewUpdater(apiClient, apps)
	comments := review.NewCommentDrafts(updater, cfg.CommentSaveDelay, func(token string) api.TokenSource {
		return sessions.Detached(token)
	}, logger)
	sessions.Subscribe(apps.Invalidate)
	sessions.Subscribe(comments.CancelSession)

	r.Use(middleware.MetricsMiddleware)

	return Server{
		cfg:          cfg,
		router:       r,
		tmpl:         t,
		logger:       logger,
		bigCache:     bigCache,
		Sessions:     sessions,
		API:          apiClient,
		Applications: apps,
		Updater:      updater,
		Comments:     comments,
		Payments:     payment.NewRepository(apiClient, cfg.PaymentDefaultTotal, cfg.PaymentCurrency),
		Process:      process.NewService(process.NewStore(bigCache), updater),
		Limiter:      limiter,
	}, nil
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) RegisterPathPrefix(path string, handler http.Handler, methods []string) {
	s.router.PathPrefix(path).Handler(handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) Logger() zerolog.Logger {
	return s.logger
}

func (s Server) Render(w http.ResponseWriter, status int, htmlView string, data interface{}) error {
	dataMap := make(map[string]interface{})
	if data != nil {
		dataMap = data.(map[string]interface{})
	}
	dataMap["SiteName"] = s.cfg.SiteName
	dataMap["SupportEmail"] = s.cfg.SupportEmail
	dataMap["SiteHost"] = s.cfg.SiteHost
	dataMap["URLProtocol"] = s.cfg.URLProtocol
	dataMap["Year"] = time.Now().Year()

	if err := s.tmpl.Render(w, status, htmlView, dataMap); err != nil {
		s.Log(err, fmt.Sprintf("unable to render %s", htmlView))
		s.TEXT(w, http.StatusInternalServerError, "Something went wrong, please try again.")
		return err
	}
	return nil
}

func (s Server) XML(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	w.Write(data)
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func (s Server) TEXT(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(text))
}

// Attachment sends a generated file as a download.
func (s Server) Attachment(w http.ResponseWriter, filename, contentType string, write func(http.ResponseWriter) error) error {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(filename, `"`, "")))
	return write(w)
}

func (s Server) Log(err error, msg string) {
	if s.cfg.SentryDSN != "" {
		raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	}
	s.logger.Error().Err(err).Msg(msg)
}

func (s Server) Redirect(w http.ResponseWriter, r *http.Request, status int, dst string) {
	http.Redirect(w, r, dst, status)
}

// Handler is the router behind the outer middleware chain.
func (s Server) Handler() http.Handler {
	return middleware.HTTPSMiddleware(
		middleware.HeadersMiddleware(
			middleware.LoggingMiddleware(s.router, s.logger),
			s.cfg.Env,
		),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.IsDev() {
		s.logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s Server) CacheGet(key string) ([]byte, bool) {
	out, err := s.bigCache.Get(key)
	if err != nil {
		return []byte{}, false
	}
	return out, true
}

func (s Server) CacheSet(key string, val []byte) error {
	return s.bigCache.Set(key, val)
}

