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
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticket-booking/internal/booking"
	"github.com/iliyamo/event-ticket-booking/internal/config"
	"github.com/iliyamo/event-ticket-booking/internal/database"
	"github.com/iliyamo/event-ticket-booking/internal/handler"
	"github.com/iliyamo/event-ticket-booking/internal/middleware"
	"github.com/iliyamo/event-ticket-booking/internal/queue"
	"github.com/iliyamo/event-ticket-booking/internal/repository"
	"github.com/iliyamo/event-ticket-booking/internal/router"
	"github.com/iliyamo/event-ticket-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := config.LoadLogConfig().NewLogger()
	logrus.SetFormatter(log.Formatter) // config.must reports through the standard logger
	cfg := config.Load()
	bcfg := config.LoadBookingConfig()
	qcfg := config.LoadQueueConfig()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxConn,
		LockWaitTimeout: bcfg.LockWaitTimeout,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.EnsureSchema(ctx, db)
		cancel()
		if err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := booking.NewPrometheusObserver(bcfg.MetricsNamespace, reg)
	if err != nil {
		log.WithError(err).Fatal("metrics registration failed")
	}

	opts := booking.Options{
		Store:    repository.NewBookingStore(db),
		Timeout:  bcfg.Timeout,
		Logger:   log.WithField("component", "booking"),
		Observer: observer,
	}
	var publisher *service.TicketPublisher
	if qcfg.Enabled {
		publisher = service.NewTicketPublisher(qcfg, log.WithField("component", "publisher"))
		opts.Notifier = publisher
	}
	bookings := booking.NewService(opts)

	// Redis is optional: without it the limiter and cache pass through.
	rdb := config.NewRedisClient(log)

	events := repository.NewEventRepo(db)
	public := &handler.PublicHandler{
		Events:      events,
		Halls:       repository.NewHallRepo(db),
		TicketTypes: repository.NewTicketTypeRepo(db),
		Places:      repository.NewPlaceRepo(db),
		Promos:      repository.NewPromoCodeRepo(db),
		Log:         log,
	}
	tickets := handler.NewTicketHandler(bookings, repository.NewTicketRepo(db), log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))
	router.RegisterRoutes(e, reg)
	router.RegisterPublic(e, public, middleware.NewRedisCache(config.LoadCacheConfig(), rdb, log))
	router.RegisterTickets(e, tickets, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if qcfg.Enabled {
		consumer := &queue.Consumer{
			URL:     qcfg.URL,
			Queue:   qcfg.Queue,
			LogPath: qcfg.LogPath,
			Log:     log.WithField("component", "ticket-consumer"),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("ticket consumer stopped")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), bcfg.Timeout+5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if publisher != nil {
		_ = publisher.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
