package main

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"mailblast/internal/config"
	"mailblast/internal/handler"
	"mailblast/internal/middleware"
	"mailblast/internal/queue"
	"mailblast/internal/repository"
	"mailblast/internal/service"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
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

	publisher, err := queue.NewPublisher(conn, cfg.RabbitMQ.Queue)
	if err != nil {
		log.WithError(err).Fatal("failed to create publisher")
	}

	campaignService := service.NewCampaignService(
		repository.NewCampaignRepository(db),
		publisher,
		log,
	)

	campaignHandler := handler.NewCampaignHandler(campaignService)
	healthHandler := handler.NewHealthHandler(service.NewHealthChecker(db, conn))

	router := mux.NewRouter()
	router.Use(middleware.Recovery(log))

	router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	router.HandleFunc("/campaigns/{id}", campaignHandler.Get).Methods("GET")
	router.HandleFunc("/campaigns/{id}/submit", campaignHandler.Submit).Methods("POST")

	addr := ":" + cfg.Server.Port
	log.WithField("addr", addr).WithField("env", cfg.Env).Info("api server starting")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.WithError(err).Fatal("server failed")
	}
}
