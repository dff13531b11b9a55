package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	camphandler "hemocamp/internal/camp/handler"
	campmetrics "hemocamp/internal/camp/metrics"
	campservice "hemocamp/internal/camp/service"
	campstore "hemocamp/internal/camp/store"
	"hemocamp/internal/certificate"
	donationstore "hemocamp/internal/donation/store"
	donorstore "hemocamp/internal/donor/store"
	"hemocamp/internal/notification"
	notificationhandler "hemocamp/internal/notification/handler"
	"hemocamp/internal/platform/config"
	"hemocamp/internal/platform/httpserver"
	"hemocamp/internal/platform/logger"
	"hemocamp/internal/platform/middleware"
	"hemocamp/internal/platform/postgres"
	platformredis "hemocamp/internal/platform/redis"
	registrationhandler "hemocamp/internal/registration/handler"
	registrationmetrics "hemocamp/internal/registration/metrics"
	registrationservice "hemocamp/internal/registration/service"
	regstore "hemocamp/internal/registration/store"
	httptransport "hemocamp/internal/transport/http"
	verificationhandler "hemocamp/internal/verification/handler"
	verificationmetrics "hemocamp/internal/verification/metrics"
	verificationservice "hemocamp/internal/verification/service"
	verificationstore "hemocamp/internal/verification/store"
	"hemocamp/internal/verification/store/bloodbag"
	"hemocamp/pkg/platform/tx"
)

// main wires the stores, services, and transport, then runs the server and
// the notification worker until a shutdown signal arrives. Business logic
// lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistence: postgres when configured, in-memory otherwise.
	var (
		db            *sql.DB
		runner        tx.Runner
		camps         interface {
			campservice.Store
			registrationservice.CampStore
			verificationservice.CampStore
		}
		registrations interface {
			registrationservice.Store
			verificationservice.RegistrationStore
		}
		donations     verificationservice.DonationStore
		donors        verificationservice.DonorStore
		verifications verificationservice.Store
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(cfg.DatabaseURL)
		if err != nil {
			log.Error("opening postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.ApplySchema(ctx, db); err != nil {
			log.Error("applying schema", "error", err)
			os.Exit(1)
		}
		runner = tx.NewSQLRunner(db)
		camps = campstore.NewPostgres(db)
		registrations = regstore.NewPostgres(db)
		donations = donationstore.NewPostgres(db)
		donors = donorstore.NewPostgres(db)
		verifications = verificationstore.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		runner = tx.NewSerialRunner()
		camps = campstore.NewInMemory()
		registrations = regstore.NewInMemory()
		donations = donationstore.NewInMemory()
		donors = donorstore.NewInMemory()
		verifications = verificationstore.NewInMemory()
	}

	// Blood-bag reservations: redis when configured, process-local otherwise.
	var bags bloodbag.Reservations = bloodbag.NewInMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		bags = bloodbag.NewRedis(redisClient.Client)
	}

	// Notifications: kafka topic when brokers are configured, otherwise the
	// in-process dispatcher feeding the inbox store.
	var notificationStore notification.Store = notification.NewInMemoryStore()
	if db != nil {
		notificationStore = notification.NewPostgresStore(db)
	}
	var dispatcher notification.Dispatcher
	var worker *notification.Worker
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := notification.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connecting to kafka", "error", err)
			os.Exit(1)
		}
		if err := publisher.EnsureTopic(ctx, 3); err != nil {
			log.Error("ensuring notification topic", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = publisher.Close(closeCtx)
		}()
		dispatcher = publisher
	} else {
		channels := notification.NewChannelDispatcher(256)
		worker = notification.NewWorker(notificationStore, channels.Inbox(), log)
		dispatcher = channels
	}

	issuer := certificate.NewHTTPClient(cfg.Certificate.BaseURL,
		certificate.WithTimeout(cfg.Certificate.Timeout),
		certificate.WithLogger(log),
	)

	campSvc := campservice.NewService(camps, registrations,
		campservice.WithLogger(log),
		campservice.WithMetrics(campmetrics.New()),
	)
	regSvc := registrationservice.NewService(registrations, camps, runner,
		registrationservice.WithLogger(log),
		registrationservice.WithMetrics(registrationmetrics.New()),
	)
	verSvc := verificationservice.NewService(
		verifications, donations, registrations, camps, donors,
		bags, issuer, dispatcher, runner,
		verificationservice.WithLogger(log),
		verificationservice.WithMetrics(verificationmetrics.New()),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Camps:         camphandler.New(campSvc, log),
		Registrations: registrationhandler.New(regSvc, log),
		Verifications: verificationhandler.New(verSvc, log),
		Notifications: notificationhandler.New(notificationStore, log),
	}, middleware.NewHMACValidator(cfg.JWTSigningKey), log)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting hemocamp", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
