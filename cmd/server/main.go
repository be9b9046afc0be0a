// Command server runs the first-access verification token service. main
// assembles the dependency graph from configuration and keeps the server
// lifecycle small; business logic lives in the internal packages.
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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"firstaccess/internal/audit"
	"firstaccess/internal/auth/handler"
	"firstaccess/internal/auth/service"
	"firstaccess/internal/directory"
	"firstaccess/internal/platform/config"
	"firstaccess/internal/platform/httpserver"
	"firstaccess/internal/platform/logger"
	"firstaccess/internal/platform/metrics"
	"firstaccess/internal/platform/middleware"
	platformRedis "firstaccess/internal/platform/redis"
	"firstaccess/internal/proof"
	"firstaccess/internal/ticket"
	verification "firstaccess/internal/verification/service"
	"firstaccess/internal/verification/store"
	"firstaccess/internal/verification/token"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// State store: Redis when configured, in-memory otherwise.
	var stateStore store.Store
	redisClient, err := platformRedis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		stateStore = store.NewRedisStore(redisClient.Client, cfg.RedisKeyPrefix)
		log.Info("state store ready", "backend", "redis", "prefix", cfg.RedisKeyPrefix)
	} else {
		stateStore = store.NewInMemoryStore()
		log.Info("state store ready", "backend", "memory")
	}

	engine := verification.New(stateStore, token.NewCryptoGenerator(), log)

	// External collaborators: HTTP clients when URLs are configured,
	// seeded fakes for local runs otherwise.
	var dir directory.Client
	if cfg.DirectoryURL != "" {
		dir = directory.NewHTTPClient(cfg.DirectoryURL, cfg.ExternalTimeout(), log)
	} else {
		dir = directory.Seeded()
		log.Warn("DIRECTORY_URL not set, using seeded in-memory directory")
	}

	var dispatcher ticket.Dispatcher
	if cfg.TicketURL != "" {
		dispatcher = ticket.NewHTTPDispatcher(cfg.TicketURL, cfg.ExternalTimeout(), log)
	} else {
		dispatcher = ticket.NewInMemoryDispatcher()
		log.Warn("TICKET_URL not set, using in-memory dispatcher")
	}

	recorder, cleanup, err := buildRecorder(ctx, cfg, log)
	if err != nil {
		log.Error("audit setup failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New()

	opts := []service.Option{service.WithMetrics(m)}
	if cfg.ProofSigningKey != "" {
		opts = append(opts, service.WithProofIssuer(
			proof.NewIssuer(cfg.ProofSigningKey, "firstaccess", cfg.ProofTTL()),
		))
	} else {
		log.Warn("PROOF_SIGNING_KEY not set, possession proofs disabled")
	}

	svc := service.New(dir, dispatcher, engine, recorder, cfg.TokenConfig(), log, opts...)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		handler.New(svc, log).Register(r)
	})

	srv := httpserver.New(cfg.ServerAddr, router)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildRecorder assembles the audit trail: a postgres store when a DSN is
// configured, in-memory otherwise, plus an optional kafka sink. The
// returned cleanup closes whatever was opened.
func buildRecorder(ctx context.Context, cfg config.Config, log *slog.Logger) (*audit.Recorder, func(), error) {
	cleanup := func() {}

	var auditStore audit.Store
	if cfg.AuditDatabaseURL != "" {
		pg, err := audit.NewPostgresStore(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		auditStore = pg
		prev := cleanup
		cleanup = func() { pg.Close(); prev() }
		log.Info("audit store ready", "backend", "postgres")
	} else {
		auditStore = audit.NewInMemoryStore()
		log.Info("audit store ready", "backend", "memory")
	}

	var sinks []audit.Sink
	if brokers := cfg.KafkaBrokers(); len(brokers) > 0 {
		sink, err := audit.NewKafkaSink(brokers, cfg.AuditKafkaTopic)
		if err != nil {
			return nil, cleanup, err
		}
		sinks = append(sinks, sink)
		prev := cleanup
		cleanup = func() { sink.Close(); prev() }
		log.Info("audit sink ready", "backend", "kafka", "topic", cfg.AuditKafkaTopic)
	}

	return audit.NewRecorder(auditStore, log, sinks...), cleanup, nil
}
