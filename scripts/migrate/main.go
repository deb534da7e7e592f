package main

import (
	"database/sql"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"mailblast/internal/config"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id SERIAL PRIMARY KEY,
		uuid VARCHAR(36) NOT NULL UNIQUE,
		admin_id INT NOT NULL DEFAULT 0,
		subject TEXT NOT NULL,
		html_body TEXT NOT NULL DEFAULT '',
		text_body TEXT NOT NULL DEFAULT '',
		footer TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		send_start TIMESTAMPTZ,
		send_end TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscribers (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		locale VARCHAR(10) NOT NULL DEFAULT 'en',
		html_email BOOLEAN NOT NULL DEFAULT TRUE,
		tracking_id VARCHAR(36) NOT NULL UNIQUE,
		confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		blacklisted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriber_attributes (
		subscriber_id INT NOT NULL REFERENCES subscribers(id) ON DELETE CASCADE,
		name VARCHAR(100) NOT NULL,
		value TEXT,
		PRIMARY KEY (subscriber_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS lists (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		public BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS list_subscribers (
		list_id INT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
		subscriber_id INT NOT NULL REFERENCES subscribers(id) ON DELETE CASCADE,
		PRIMARY KEY (list_id, subscriber_id)
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_lists (
		campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		list_id INT NOT NULL REFERENCES lists(id) ON DELETE CASCADE,
		PRIMARY KEY (campaign_id, list_id)
	)`,
	`CREATE TABLE IF NOT EXISTS send_outcomes (
		id SERIAL PRIMARY KEY,
		campaign_id INT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		subscriber_id INT NOT NULL REFERENCES subscribers(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_send_outcomes_campaign_subscriber
		ON send_outcomes (campaign_id, subscriber_id)`,
}

func main() {
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

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			log.WithError(err).Error("migration statement failed")
			os.Exit(1)
		}
	}

	log.Info("migrations applied")
}
