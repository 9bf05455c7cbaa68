// Command create-admin creates a back-office account, or promotes the account
// that already uses the given email.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/wichananm65/storefront/internal/auth"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/infrastructure/database/postgres"
	"github.com/wichananm65/storefront/internal/user"
)

func main() {
	var in user.AccountInput
	flag.StringVar(&in.Email, "email", "", "account email (required)")
	flag.StringVar(&in.Password, "password", "", "password; required for a new account, optional when promoting")
	flag.StringVar(&in.Name, "name", "Administrator", "display name")
	flag.StringVar(&in.Mobile, "mobile", "", "mobile number (required)")
	flag.Parse()

	if in.Email == "" || in.Mobile == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, postgres.Options{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		log.Fatalw("database unavailable", "error", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalw("migrate", "error", err)
	}

	users := user.NewService(postgres.NewStore(db), auth.NewVerifier(cfg.JWTSecret, cfg.TokenTTL))
	u, created, err := users.EnsureAdmin(ctx, in)
	if err != nil {
		log.Fatalw("create admin", "email", in.Email, "error", err)
	}
	if created {
		log.Infow("admin account created", "id", u.ID, "email", u.Email)
		return
	}
	log.Infow("existing account promoted to admin", "id", u.ID, "email", u.Email)
}
