// Comptoir - conversational portfolio server
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/comptoir-labs/comptoir/internal/api"
	"github.com/comptoir-labs/comptoir/internal/config"
	"github.com/comptoir-labs/comptoir/internal/conversation"
	"github.com/comptoir-labs/comptoir/internal/convlog"
	"github.com/comptoir-labs/comptoir/internal/gate"
	"github.com/comptoir-labs/comptoir/internal/health"
	"github.com/comptoir-labs/comptoir/internal/identity"
	"github.com/comptoir-labs/comptoir/internal/jobfetch"
	"github.com/comptoir-labs/comptoir/internal/llm"
	"github.com/comptoir-labs/comptoir/internal/middleware"
	"github.com/comptoir-labs/comptoir/internal/pdf"
	"github.com/comptoir-labs/comptoir/internal/persona"
	"github.com/comptoir-labs/comptoir/internal/plan"
	"github.com/comptoir-labs/comptoir/internal/session"
	"github.com/comptoir-labs/comptoir/internal/store"
	"github.com/comptoir-labs/comptoir/web"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment(), "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(ctx); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	roster, err := loadRoster(cfg.PersonasPath)
	if err != nil {
		slog.Error("Failed to load persona roster", "error", err, "path", cfg.PersonasPath)
		os.Exit(1)
	}
	slog.Info("Persona roster loaded", "personas", len(roster.All()))

	book, err := plan.Default()
	if err != nil {
		slog.Error("Failed to load marketing plans", "error", err)
		os.Exit(1)
	}

	checks := map[string]api.Pinger{"database": repo}
	var sessionStore session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() {
			if closeErr := client.Close(); closeErr != nil {
				slog.Error("Failed to close redis client", "error", closeErr)
			}
		}()
		rs := session.NewRedis(client, cfg.SessionTTL)
		if err := rs.Ping(ctx); err != nil {
			slog.Error("Redis health check failed", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		sessionStore = rs
		checks["sessions"] = rs
		slog.Info("Session store ready", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		sessionStore = session.NewMemory()
		slog.Info("Session store ready", "backend", "memory")
	}
	sessions := session.NewManager(sessionStore, logger)

	gen := newGenerator(ctx, cfg.LLM, logger)

	transcript, err := convlog.New(convlog.Config{
		Enabled:       cfg.ConversationLog.Enabled,
		Dir:           cfg.ConversationLog.Dir,
		GlobalEnabled: cfg.ConversationLog.GlobalEnabled,
		GlobalPath:    cfg.ConversationLog.GlobalPath,
		QueueSize:     cfg.ConversationLog.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize conversation logger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := transcript.Close(); closeErr != nil {
			slog.Error("Failed to close conversation logger", "error", closeErr)
		}
	}()

	codes := gate.ParseCodes(cfg.UnlockPasscodes)
	if len(codes) == 0 {
		slog.Warn("No unlock passcodes configured; every session stays on the free tier")
	}

	conv := conversation.NewService(sessions, roster, gen, conversation.Config{
		Model:  cfg.LLM.Model,
		Policy: cfg.Gate,
	}, transcript, logger)

	// Initialize handlers.
	handler := api.NewHandler(api.Deps{
		Conversation:   conv,
		Sessions:       sessions,
		Roster:         roster,
		Repo:           repo,
		Jobs:           jobfetch.New(nil),
		Plans:          book,
		PDF:            pdf.New(),
		Codes:          codes,
		Pricing:        cfg.Pricing,
		Model:          cfg.LLM.Model,
		ContactEmail:   cfg.ContactEmail,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
	})
	healthHandler := api.NewHealthHandler(checks)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.AllowedOrigins(), identity.SessionHeaderName))
	r.Use(identity.Middleware(cfg.IsDevelopment()))

	// Public routes.
	healthHandler.RegisterHealth(r)
	handler.RegisterRoutes(r)

	// Serve embedded chat page (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	// Note: SSE connections require long timeouts (no WriteTimeout)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,                 // 0 = no timeout for SSE support
		IdleTimeout:  120 * time.Second, // 2 minutes for idle connections
	}

	// Start idle-session sweeper.
	sessions.StartSweeper(ctx, cfg.SessionTTL, func(key string) {
		handler.CloseSession(key)
		slog.Info("Session expired", "session_id", key)
	})
	slog.Info("Session sweeper started", "session_ttl", cfg.SessionTTL)

	var grpcHealth *health.Server
	if cfg.GRPCHealthAddr != "" {
		grpcHealth = health.NewServer(logger)
		if err := grpcHealth.ListenAndServe(cfg.GRPCHealthAddr); err != nil {
			slog.Error("Failed to start gRPC health server", "error", err, "addr", cfg.GRPCHealthAddr)
			os.Exit(1)
		}
		grpcHealth.SetServing(true)
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcHealth != nil {
		grpcHealth.SetServing(false)
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if grpcHealth != nil {
		grpcHealth.Stop(shutdownCtx)
	}

	slog.Info("Server stopped successfully")
}

// loadRoster reads PERSONAS_PATH, or the embedded example roster when unset.
func loadRoster(path string) (*persona.Roster, error) {
	if path == "" {
		slog.Warn("PERSONAS_PATH not set, using the embedded example roster")
		return persona.LoadExample()
	}
	return persona.Load(path)
}

// newGenerator builds the configured model client. A client that cannot be
// built is replaced by one that fails every turn, so the server still starts.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) llm.Generator {
	if cfg.Provider == config.ProviderMock {
		slog.Info("Using mock model provider")
		return llm.NewMock()
	}
	gen, err := llm.NewGemini(ctx, cfg.APIKey, logger)
	if err != nil {
		slog.Warn("Model client unavailable, chat turns will fail", "error", err)
		return llm.Unavailable{Reason: err}
	}
	return gen
}
