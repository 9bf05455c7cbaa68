package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/storefront/internal/admin"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/domain/repository"
	"github.com/wichananm65/storefront/internal/infrastructure/cache"
	"github.com/wichananm65/storefront/internal/infrastructure/database/postgres"
	"github.com/wichananm65/storefront/internal/interface/http/router"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/pricing"
	"github.com/wichananm65/storefront/internal/product"
	"github.com/wichananm65/storefront/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	log.SetLevel(logLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := mustOpenDB(ctx, cfg)
	defer db.Close()
	store := postgres.NewStore(db)

	// a nil cache would still be a non-nil interface, so keep both unset without Redis
	var (
		catalogCache product.Cache
		invalidator  repository.CatalogInvalidator
	)
	if cfg.RedisURL != "" {
		rdb := mustConnectRedis(ctx, cfg.RedisURL)
		defer rdb.Close()
		pc := cache.NewProductCache(store.Repos().Products, rdb, cfg.CacheTTL)
		catalogCache, invalidator = pc, pc
	} else {
		log.Warnw("REDIS_URL not set, catalog reads go straight to postgres")
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL)
	app := router.New(router.Deps{
		Verifier:    verifier,
		Products:    product.NewHandler(product.NewService(store, catalogCache)),
		Carts:       cart.NewHandler(cart.NewService(store, pricing.DefaultPolicy)),
		Orders:      order.NewHandler(order.NewService(store, pricing.DefaultPolicy, invalidator)),
		Users:       user.NewHandler(user.NewService(store, verifier)),
		Admin:       admin.NewHandler(admin.NewService(store)),
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	go func() {
		<-ctx.Done()
		log.Infow("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("shutdown", "error", err)
		}
	}()

	log.Infow("starting server", "addr", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

func mustOpenDB(ctx context.Context, cfg config.Config) *sql.DB {
	db, err := postgres.Open(ctx, postgres.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalw("database unavailable", "error", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalw("migrate", "error", err)
	}
	return db
}

func mustConnectRedis(ctx context.Context, url string) *redis.Client {
	rdb, err := cache.Connect(ctx, url)
	if err != nil {
		log.Fatalw("redis unavailable", "error", err)
	}
	log.Infow("catalog cache enabled")
	return rdb
}

func logLevel(name string) log.Level {
	switch name {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	}
	return log.LevelInfo
}
