package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/shopcart/internal/config"
	"github.com/iliyamo/shopcart/internal/database"
	"github.com/iliyamo/shopcart/internal/handler"
	"github.com/iliyamo/shopcart/internal/logging"
	"github.com/iliyamo/shopcart/internal/middleware"
	"github.com/iliyamo/shopcart/internal/queue"
	"github.com/iliyamo/shopcart/internal/repository"
	"github.com/iliyamo/shopcart/internal/router"
	"github.com/iliyamo/shopcart/internal/service"
	"github.com/iliyamo/shopcart/internal/utils"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the environment wins anyway

	cfg, err := config.Load()
	if err != nil {
		logging.New("dev", "error").Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Env, cfg.LogLevel)
	log.Info("starting", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
	}

	rdb := config.NewRedisClient(ctx)
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	var wg sync.WaitGroup
	var events service.EventPublisher = queue.Discard{}
	if cfg.RabbitURL != "" {
		events = queue.NewPublisher(cfg.RabbitURL)
		consumer := &queue.Consumer{
			URL:    cfg.RabbitURL,
			Log:    queue.ActivityLog{Path: "logs/activity.log"},
			Logger: log.With("component", "event-consumer"),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", "err", err)
			}
		}()
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	auth, err := service.NewAuthService(repository.NewUserRepo(db), tokens, cfg.BcryptCost, events, log)
	if err != nil {
		log.Error("auth service init failed", "err", err)
		os.Exit(1)
	}
	catalog := service.NewCatalogService(repository.NewProductRepo(db), events, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	e.Use(echomw.BodyLimit("1M"))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(auth), tokens,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))
	router.RegisterProducts(e, handler.NewProductHandler(catalog), tokens,
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
	wg.Wait()
}
