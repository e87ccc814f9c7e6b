package main

import (
	"context"
	"database/sql"
	"errors"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	_ "github.com/vncsmyrnk/patients/docs"
	"github.com/vncsmyrnk/patients/internal/adapters/handler/http"
	memlimit "github.com/vncsmyrnk/patients/internal/adapters/ratelimit/memory"
	redislimit "github.com/vncsmyrnk/patients/internal/adapters/ratelimit/redis"
	"github.com/vncsmyrnk/patients/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/patients/internal/adapters/security/password"
	"github.com/vncsmyrnk/patients/internal/adapters/token"
	"github.com/vncsmyrnk/patients/internal/config"
	"github.com/vncsmyrnk/patients/internal/core/ports"
	"github.com/vncsmyrnk/patients/internal/core/services"
	"github.com/vncsmyrnk/patients/internal/logging"
)

// @title                       Patients API
// @version                     1.0
// @description                 Token-protected access to patient records.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.WithError(err).Fatal("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("failed to reach database")
	}

	if cfg.Migrate {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			log.WithError(err).Fatal("failed to apply migrations")
		}
		log.WithField("versions", applied).Info("migrations applied")
	}

	hasher, err := password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		log.WithError(err).Fatal("failed to build password hasher")
	}
	issuer, err := token.NewIssuer(cfg.Token)
	if err != nil {
		log.WithError(err).Fatal("failed to build token issuer")
	}
	verifier, err := token.NewVerifier(cfg.Token)
	if err != nil {
		log.WithError(err).Fatal("failed to build token verifier")
	}

	// Initialize Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, hasher, issuer, verifier, cfg.Token.DefaultTTL, log)
	if cfg.LoginRateLimit > 0 {
		limiter, closeLimiter := newRateLimiter(ctx, cfg, log)
		defer closeLimiter()
		authService.WithLoginRateLimit(services.LoginRateLimit{
			Limiter: limiter,
			Limit:   cfg.LoginRateLimit,
			Window:  cfg.LoginRateWindow,
		})
	}
	patientService := services.NewPatientService(patientRepo)

	handler := http.NewHandler(
		authService,
		http.NewAuthHandler(authService, log),
		http.NewPatientHandler(patientService, log),
		http.NewUserHandler(),
		log,
	)
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown did not complete")
	}
}

// newRateLimiter shares login counters through redis when REDIS_ADDR is set
// and falls back to a per-process limiter otherwise.
func newRateLimiter(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (ports.RateLimiter, func()) {
	if cfg.RedisAddr == "" {
		log.Info("using in-memory login rate limiter")
		return memlimit.NewLimiter(), func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("failed to reach redis")
	}
	log.WithField("addr", cfg.RedisAddr).Info("using redis login rate limiter")
	return redislimit.NewLimiter(client, ""), func() { client.Close() }
}
