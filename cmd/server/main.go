package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/monok8i/users-service/internal/audit"
	auditrepo "github.com/monok8i/users-service/internal/audit/repository"
	authservice "github.com/monok8i/users-service/internal/auth/service"
	"github.com/monok8i/users-service/internal/config"
	"github.com/monok8i/users-service/internal/db"
	"github.com/monok8i/users-service/internal/events"
	"github.com/monok8i/users-service/internal/security"
	"github.com/monok8i/users-service/internal/server"
	"github.com/monok8i/users-service/internal/server/middleware"
	sessionrepo "github.com/monok8i/users-service/internal/session/repository"
	"github.com/monok8i/users-service/internal/telemetry/otel"
	userrepo "github.com/monok8i/users-service/internal/user/repository"
	userservice "github.com/monok8i/users-service/internal/user/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "users-service")
	if err != nil {
		logger.Fatal("telemetry", zap.Error(err))
	}
	providers.SetGlobal()
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	privateKey, err := security.LoadPrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		logger.Fatal("jwt private key", zap.Error(err))
	}
	publicKey, err := security.LoadPublicKey(cfg.JWTPublicKey)
	if err != nil {
		logger.Fatal("jwt public key", zap.Error(err))
	}
	codec := security.NewTokenCodec(privateKey, publicKey, cfg.AccessTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	var producer events.Producer = events.NopProducer{}
	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		kp, err := events.NewKafkaProducer(brokers, cfg.EmailsTopic)
		if err != nil {
			logger.Fatal("kafka producer", zap.Error(err))
		}
		producer = kp
	}
	defer producer.Close()

	users := userrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresStore(pool)
	auditor := audit.NewLogger(auditrepo.NewPostgresRepository(pool), middleware.ClientIP, logger)

	userSvc := userservice.NewUserService(users, hasher, producer, logger)
	authSvc := authservice.NewAuthService(users, sessions, hasher, codec,
		cfg.RefreshTTL(), cfg.TokenType, auditor, logger)

	router := server.NewRouter(server.Deps{
		Auth:         authSvc,
		Users:        userSvc,
		Codec:        codec,
		RefreshTTL:   cfg.RefreshTTL(),
		HealthPinger: pool,
		Logger:       logger,
	})

	if err := server.New(cfg.HTTPAddr, router, logger).Run(ctx); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
