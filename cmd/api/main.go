// @title                       Inventory API
// @version                     1.0
// @description                 Inventory management backend: products, categories, suppliers and stock transactions.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/stockroom/inventory-api/docs"
	"github.com/stockroom/inventory-api/internal/api"
	"github.com/stockroom/inventory-api/internal/api/handler"
	"github.com/stockroom/inventory-api/internal/core/ports"
	"github.com/stockroom/inventory-api/internal/core/service"
	mongodb "github.com/stockroom/inventory-api/internal/infrastructure/db/mongo"
	redisdb "github.com/stockroom/inventory-api/internal/infrastructure/db/redis"
	"github.com/stockroom/inventory-api/internal/pkg/config"
	"github.com/stockroom/inventory-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "inventory-api"})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "inventory-api",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	// --- Storage ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create MongoDB indexes")
	}
	log.Info().Str("database", cfg.Mongo.Database).Bool("transactions", cfg.Mongo.Transactions).Msg("connected to MongoDB")

	checks := map[string]handler.Check{"mongodb": handler.MongoCheck(db)}

	// Idempotency keys are best effort: without Redis, transactions are
	// recorded without replay protection.
	var idempotency ports.IdempotencyStore
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, idempotency keys disabled")
	} else {
		defer rdb.Close()
		idempotency = redisdb.NewIdempotencyStore(rdb, cfg.Idempotency.TTL)
		checks["redis"] = handler.RedisCheck(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
	}

	// --- Services ---
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.JWTTTL,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token service")
	}
	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)

	users := mongodb.NewUserRepository(db)
	products := mongodb.NewProductRepository(db)

	accounts := service.NewAccountService(users, hasher, tokens, log)
	if cfg.Auth.AdminEmail != "" {
		if err := accounts.BootstrapAdmin(ctx, cfg.Auth.AdminEmail); err != nil {
			log.Fatal().Err(err).Msg("failed to bootstrap admin account")
		}
	}

	e := api.NewRouter(api.Deps{
		Accounts:   accounts,
		Users:      service.NewUserService(users, hasher, log),
		Products:   service.NewProductService(products, log),
		Categories: service.NewCategoryService(mongodb.NewCategoryRepository(db), log),
		Suppliers:  service.NewSupplierService(mongodb.NewSupplierRepository(db), log),
		Transactions: service.NewTransactionService(
			mongodb.NewTransactionRepository(db),
			products,
			mongodb.NewUnitOfWork(client, cfg.Mongo.Transactions),
			idempotency,
			log,
		),
		Tokens:       tokens,
		HealthChecks: checks,
		CORSOrigins:  cfg.CORSOrigins,
		Log:          log,
	})

	// --- Serve ---
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("server stopped")
}
