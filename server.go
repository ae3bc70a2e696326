package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ukane-philemon/mentorship/api"
	"github.com/ukane-philemon/mentorship/internal/admin"
	"github.com/ukane-philemon/mentorship/internal/assignment"
	"github.com/ukane-philemon/mentorship/internal/config"
	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/db/inmem"
	"github.com/ukane-philemon/mentorship/internal/db/mongodb"
	"github.com/ukane-philemon/mentorship/internal/events"
	"github.com/ukane-philemon/mentorship/internal/jwt"
	"github.com/ukane-philemon/mentorship/internal/metrics"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/seed"
	"github.com/ukane-philemon/mentorship/internal/student"
)

// backend is the storage the service runs on.
type backend struct {
	students student.Repository
	mentors  mentor.Repository
	admins   admin.Repository
	tx       db.Transactor
	shutdown func(ctx context.Context) error
}

func main() {
	var isDevMode, inMemory bool
	flag.BoolVar(&isDevMode, "dev", false, "Run server in development mode")
	flag.BoolVar(&inMemory, "inmem", false, "Keep data in memory instead of mongodb")
	flag.Parse()

	cfg, err := config.Load(isDevMode, ".env")
	if err != nil {
		log.Fatal("config.Load error", "err", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "mentorship",
	})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown LOG_LEVEL, using info", "level", cfg.LogLevel)
	}
	log.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openBackend(ctx, cfg, inMemory)
	if err != nil {
		log.Fatal("database setup failed", "err", err)
	}

	publisher := events.Publisher(events.NopPublisher{})
	if cfg.NATSURL != "" {
		publisher, err = events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			log.Fatal("events.NewNATSPublisher error", "err", err)
		}
		log.Info("Publishing assignment events", "url", cfg.NATSURL, "subject", cfg.NATSSubject)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := assignment.NewService(store.students, store.mentors, store.tx,
		assignment.WithMetrics(metrics.NewPrometheus(registry, "")),
		assignment.WithPublisher(publisher),
		assignment.WithSeed(seed.Source{Dir: cfg.SeedDir}),
		assignment.WithLogger(logger),
	)

	if inMemory {
		if err := svc.Reset(ctx); err != nil {
			log.Fatal("loading seed data failed", "err", err)
		}
	}

	apiCfg := api.Config{
		Service:            svc,
		Metrics:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSOrigins,
		Logger:             logger,
	}
	if cfg.AuthEnabled() {
		_, err := store.admins.CreateAccount(ctx, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil && !errors.Is(err, admin.ErrAccountExists) {
			log.Fatal("creating admin account failed", "err", err)
		}

		jwtManager, err := jwt.NewJWTManager([]byte(cfg.JWTSecret), cfg.JWTExpiry)
		if err != nil {
			log.Fatal("jwt.NewJWTManager error", "err", err)
		}
		apiCfg.Admins, apiCfg.JWTManager = store.admins, jwtManager
	}

	apiServer, err := api.NewServer(apiCfg)
	if err != nil {
		log.Fatal("api.NewServer error", "err", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Ensure graceful shutdown by capturing SIGINT and SIGTERM signals.
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-shutdownChan

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("srv.Shutdown error", "err", err)
		}
		cancel()

		if err := publisher.Close(); err != nil {
			log.Error("publisher.Close error", "err", err)
		}

		if err := store.shutdown(shutdownCtx); err != nil {
			log.Error("db.Shutdown error", "err", err)
		}
	}()

	log.Info("Mentorship has started successfully", "url", "http://localhost:"+cfg.Port+"/", "inmem", inMemory, "auth", cfg.AuthEnabled())

	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Mentorship shutdown error", "err", err)
	}

	<-shutdownDone
	log.Info("Mentorship shutdown successfully...")
}

func openBackend(ctx context.Context, cfg *config.Config, inMemory bool) (*backend, error) {
	if inMemory {
		d := inmem.New()
		log.Warn("Running with in-memory storage, data is lost on shutdown")
		return &backend{
			students: inmem.NewStudentRepository(d),
			mentors:  inmem.NewMentorRepository(d),
			admins:   inmem.NewAdminRepository(d),
			tx:       d,
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL environment variable is not set")
	}

	mdb, err := mongodb.New(ctx, cfg.DBName, cfg.DBURL, cfg.DBTransactions)
	if err != nil {
		return nil, err
	}

	return &backend{
		students: mdb.Students,
		mentors:  mdb.Mentors,
		admins:   mdb.Admins,
		tx:       mdb,
		shutdown: mdb.Shutdown,
	}, nil
}
