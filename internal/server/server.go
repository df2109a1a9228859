package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/config"
	"github.com/dukerupert/deadliner/internal/handler"
	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/middleware"
	"github.com/dukerupert/deadliner/internal/store"
	ws "github.com/dukerupert/deadliner/internal/websocket"
)

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	hub         *ws.Hub
	resolver    *auth.Resolver
	metrics     *metrics.Metrics
	assignmentH *handler.AssignmentHandler
	taskH       *handler.TaskHandler
	profileH    *handler.ProfileHandler
	timerH      *handler.TimerSessionHandler
	walletH     *handler.WalletHandler
	statsH      *handler.StatsHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	assignmentStore := store.NewAssignmentStore(db)
	taskStore := store.NewTaskStore(db)
	userStore := store.NewUserStore(db)
	timerStore := store.NewTimerSessionStore(db)
	walletStore := store.NewWalletStore(db)

	demo := auth.AuthContext{
		UserID: cfg.DemoUser.ID,
		Email:  cfg.DemoUser.Email,
		Name:   cfg.DemoUser.Name,
	}

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		resolver:    auth.NewResolver(cfg.JWTSecret, demo),
		metrics:     m,
		assignmentH: handler.NewAssignmentHandler(assignmentStore, taskStore, userStore, hub, m, logger.With("component", "assignment")),
		taskH:       handler.NewTaskHandler(taskStore, hub, logger.With("component", "task")),
		profileH:    handler.NewProfileHandler(userStore, hub, logger.With("component", "profile")),
		timerH:      handler.NewTimerSessionHandler(timerStore, walletStore, hub, m, logger.With("component", "timer_session")),
		walletH:     handler.NewWalletHandler(walletStore, hub, m, logger.With("component", "wallet")),
		statsH:      handler.NewStatsHandler(taskStore, assignmentStore, logger.With("component", "stats")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.HandleFunc("GET /{$}", s.rootHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.resolver, s.cfg.CORSOrigins, s.logger.With("component", "websocket")))

	s.registerAPIRoutes(mux)

	var h http.Handler = mux
	h = middleware.Metrics(s.metrics)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.CORS(s.cfg.CORSOrigins)(h)
	return h
}

func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Deadliner AI API is running!"})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// read requires a resolved identity.
func (s *Server) read(h http.HandlerFunc) http.Handler {
	return middleware.RequireIdentity(s.resolver)(h)
}

// write requires a resolved identity and applies the per-identity rate limit.
func (s *Server) write(h http.HandlerFunc) http.Handler {
	rl := middleware.RateLimit(s.rateLimiter, middleware.IdentityKey, s.cfg.RateLimit, s.cfg.RateWindow)
	return middleware.RequireIdentity(s.resolver)(rl(h))
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Assignments
	mux.Handle("POST /api/assignments", s.write(s.assignmentH.Create))
	mux.Handle("GET /api/assignments", s.read(s.assignmentH.List))
	mux.Handle("DELETE /api/assignments/{id}", s.write(s.assignmentH.Delete))

	// Tasks and daily plans
	mux.Handle("GET /api/tasks", s.read(s.taskH.List))
	mux.Handle("PUT /api/tasks/{id}/complete", s.write(s.taskH.Complete))
	mux.Handle("PUT /api/tasks/{id}/reschedule", s.write(s.taskH.Reschedule))
	mux.Handle("GET /api/daily-plan/{date}", s.read(s.taskH.DailyPlan))

	// Study profile
	mux.Handle("GET /api/profile", s.read(s.profileH.Get))
	mux.Handle("PUT /api/profile", s.write(s.profileH.Update))

	// Timer sessions and wallet
	mux.Handle("POST /api/timer-sessions", s.write(s.timerH.Create))
	mux.Handle("GET /api/timer-sessions", s.read(s.timerH.List))
	mux.Handle("GET /api/wallet", s.read(s.walletH.Get))
	mux.Handle("POST /api/wallet/redeem", s.write(s.walletH.Redeem))
	mux.Handle("GET /api/wallet/tiers", s.read(s.walletH.Tiers))

	mux.Handle("GET /api/stats", s.read(s.statsH.Get))
}
