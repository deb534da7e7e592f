package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/mailgun/mailgun-go/v3"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"mailblast/internal/config"
	"mailblast/internal/dispatch"
	"mailblast/internal/i18n"
	"mailblast/internal/mailer"
	"mailblast/internal/metrics"
	"mailblast/internal/placeholder"
	"mailblast/internal/precache"
	"mailblast/internal/queue"
	"mailblast/internal/repository"
	"mailblast/internal/tracking"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if cfg.IsDevelopment() {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.WithError(err).Fatal("failed to ping database")
	}
	log.Info("connected to database")

	conn, err := queue.NewConnection(cfg.GetRabbitMQURL(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to rabbitmq")
	}
	defer conn.Close()
	log.Info("connected to rabbitmq")

	publisher, err := queue.NewPublisher(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		log.WithError(err).Fatal("failed to create publisher")
	}

	m := metrics.New()
	orchestrator := buildOrchestrator(cfg, db, publisher, m, log)
	m.RegisterSendRate(func() float64 {
		return float64(orchestrator.Stats().SendRate)
	})

	handler := func(task *queue.DispatchTask) error {
		m.CampaignsDispatched.Inc()
		return orchestrator.Dispatch(context.Background(), task.CampaignID)
	}

	consumer, err := queue.NewConsumer(conn, cfg.RabbitMQ.Queue, handler, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create consumer")
	}
	if err := consumer.Start(); err != nil {
		log.WithError(err).Fatal("failed to start consumer")
	}
	log.WithField("queue", cfg.RabbitMQ.Queue).Info("worker started")

	// Metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		addr := ":" + cfg.Server.MetricsPort
		log.WithField("addr", addr).Info("metrics endpoint listening")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.WithError(err).Error("metrics endpoint failed")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")

	if err := consumer.Stop(); err != nil {
		log.WithError(err).Error("error stopping consumer")
	}
	conn.Close()
	db.Close()

	log.Info("worker stopped")
}

func buildOrchestrator(cfg *config.Config, db *sql.DB, publisher *queue.Publisher, m *metrics.Metrics, log *logrus.Logger) *dispatch.Orchestrator {
	var cache precache.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = precache.NewRedisCache(client)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis precache store")
	} else {
		cache = precache.NewMemoryCache()
		log.Info("using in-memory precache store")
	}

	registry := placeholder.DefaultRegistry(
		placeholder.Settings{
			UnsubscribeURL: cfg.Dispatch.UnsubscribeURL,
			PreferencesURL: cfg.Dispatch.PreferencesURL,
			ForwardURL:     cfg.Dispatch.ForwardURL,
			WebsiteURL:     cfg.Dispatch.WebsiteURL,
			Domain:         cfg.Dispatch.Domain,
			Signature:      cfg.Dispatch.Signature,
		},
		repository.NewListRepository(db),
		i18n.NewCatalog("en"),
		cfg.Dispatch.AttributeTags,
		log,
	)

	var transport mailer.Transport
	if cfg.Mailer.MailgunDomain != "" && cfg.Mailer.MailgunAPIKey != "" {
		mg := mailgun.NewMailgun(cfg.Mailer.MailgunDomain, cfg.Mailer.MailgunAPIKey)
		var options []mailer.MailgunOption
		if cfg.Mailer.ReplyTo != "" {
			options = append(options, mailer.SetReplyTo(cfg.Mailer.ReplyTo))
		}
		transport = mailer.NewMailgunTransport(mg, options...)
		log.WithField("domain", cfg.Mailer.MailgunDomain).Info("using mailgun transport")
	} else {
		transport = mailer.NewLogTransport(log)
		log.Warn("no mailgun credentials configured, using log transport")
	}

	rateLimited := mailer.NewRateLimited(transport, mailer.ISPRestrictions{
		MaxBatch:       cfg.Mailer.MaxBatch,
		MinBatchPeriod: cfg.Mailer.MinBatchPeriod,
	}, log)

	recorder := tracking.NewRecorder(repository.NewOutcomeRepository(db), m, log)

	return dispatch.New(
		repository.NewCampaignRepository(db),
		repository.NewRecipientProvider(db),
		precache.NewService(cache, cfg.Dispatch.PrecacheTTL, cfg.Dispatch.TextWrapWidth, log),
		registry,
		rateLimited,
		publisher,
		dispatch.WithLogger(log),
		dispatch.WithMaxProcessTime(cfg.Dispatch.MaxProcessTime),
		dispatch.WithFromAddress(cfg.Mailer.FromAddress),
		dispatch.WithSubscribers(recorder),
	)
}
