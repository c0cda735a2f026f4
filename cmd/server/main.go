package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/auth"
	"github.com/iliyamo/storefront/internal/config"
	"github.com/iliyamo/storefront/internal/database"
	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/queue"
	"github.com/iliyamo/storefront/internal/repository"
	"github.com/iliyamo/storefront/internal/router"
	"github.com/iliyamo/storefront/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName))
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Sessions live in Redis; the server cannot run without it.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("redis: %v", err)
	}

	users := repository.NewUserRepo(db)
	items := repository.NewItemRepo(db)
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	authSvc := auth.NewService(users, cfg.BcryptCost)

	// The provider table is built once from configuration; a provider
	// without credentials is simply absent.
	providers := map[string]*auth.Provider{}
	if cfg.Google.Enabled() {
		providers["google"] = auth.NewGoogle(cfg.Google.ClientID, cfg.Google.ClientSecret,
			cfg.BaseURL+"/v1/auth/google/callback")
	}
	if cfg.GitHub.Enabled() {
		providers["github"] = auth.NewGitHub(cfg.GitHub.ClientID, cfg.GitHub.ClientSecret,
			cfg.BaseURL+"/v1/auth/github/callback")
	}
	log.Printf("oauth providers enabled: %d", len(providers))

	// Audit-log consumer for auth events; reconnects on its own.
	go func() {
		if err := queue.StartAuthConsumer(); err != nil {
			log.Printf("auth consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(cfg, authSvc, sessions, providers),
		Items:    handler.NewItemHandler(items),
		Users:    handler.NewUserHandler(users),
		Resolve:  middleware.ResolveSession(cfg.CookieName, sessions, users),
		AuthRate: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
