package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/train-reservation/internal/booking"
	"github.com/iliyamo/train-reservation/internal/config"
	"github.com/iliyamo/train-reservation/internal/database"
	"github.com/iliyamo/train-reservation/internal/handler"
	"github.com/iliyamo/train-reservation/internal/middleware"
	"github.com/iliyamo/train-reservation/internal/queue"
	"github.com/iliyamo/train-reservation/internal/repository"
	"github.com/iliyamo/train-reservation/internal/router"
	"github.com/iliyamo/train-reservation/internal/service"
)

func main() {
	cfg := config.Load()
	if cfg.Env != "prod" {
		log.SetLevel(log.DEBUG)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.Level())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Static("/media", cfg.MediaDir)

	auth := middleware.JWTAuth(cfg.JWTSecret)
	journeys := repository.NewJourneyRepo(db)
	orders := repository.NewOrderRepo(db)
	publisher := service.NewOrderPublisher(cfg.RabbitURL)
	go publisher.Run(ctx)
	booker := booking.NewService(repository.NewBookingStore(db), booking.WithPublisher(publisher))

	router.RegisterHealth(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), auth)
	router.RegisterCatalog(e,
		handler.NewCatalogHandler(
			repository.NewStationRepo(db),
			repository.NewTrainTypeRepo(db),
			repository.NewCrewRepo(db),
			repository.NewRouteRepo(db),
			repository.NewTrainRepo(db),
			cfg.MediaDir,
		),
		handler.NewJourneyHandler(journeys),
		auth,
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.InvalidateCache(cacheCfg, rdb),
	)
	router.RegisterOrders(e,
		handler.NewOrderHandler(booker, orders),
		handler.NewTicketHandler(journeys),
		auth,
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	go func() {
		if err := queue.StartOrderConsumer(ctx, cfg.RabbitURL, "logs"); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("order consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
