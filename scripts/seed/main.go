package main

import (
	"database/sql"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"mailblast/internal/config"
)

var (
	subscribersCount = flag.Int("subscribers", 25, "Number of subscribers to create")
	clearData        = flag.Bool("clear", false, "Clear existing seed data before inserting")
)

func main() {
	flag.Parse()
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

	if *clearData {
		for _, table := range []string{"send_outcomes", "campaign_lists", "list_subscribers", "subscriber_attributes", "subscribers", "lists", "campaigns"} {
			if _, err := db.Exec("DELETE FROM " + table); err != nil {
				log.WithError(err).WithField("table", table).Fatal("failed to clear table")
			}
		}
		log.Info("existing data cleared")
	}

	var listID int
	err = db.QueryRow(
		`INSERT INTO lists (name, public) VALUES ($1, TRUE) RETURNING id`,
		"Monthly newsletter",
	).Scan(&listID)
	if err != nil {
		log.WithError(err).Fatal("failed to create list")
	}

	firstNames := []string{"Alice", "Bob", "Carol", "Dan", "Erin"}
	for i := 0; i < *subscribersCount; i++ {
		var subscriberID int
		err := db.QueryRow(
			`INSERT INTO subscribers (email, locale, html_email, tracking_id, confirmed)
			 VALUES ($1, 'en', $2, $3, TRUE) RETURNING id`,
			fmt.Sprintf("subscriber%d@example.com", i+1),
			i%2 == 0,
			uuid.NewString(),
		).Scan(&subscriberID)
		if err != nil {
			log.WithError(err).Fatal("failed to create subscriber")
		}

		_, err = db.Exec(
			`INSERT INTO subscriber_attributes (subscriber_id, name, value) VALUES ($1, 'FIRSTNAME', $2)`,
			subscriberID,
			firstNames[i%len(firstNames)],
		)
		if err != nil {
			log.WithError(err).Fatal("failed to create attribute")
		}

		_, err = db.Exec(
			`INSERT INTO list_subscribers (list_id, subscriber_id) VALUES ($1, $2)`,
			listID, subscriberID,
		)
		if err != nil {
			log.WithError(err).Fatal("failed to join list")
		}
	}

	var campaignID int
	err = db.QueryRow(
		`INSERT INTO campaigns (uuid, subject, html_body, text_body, footer, status)
		 VALUES ($1, $2, $3, $4, $5, 'draft') RETURNING id`,
		uuid.NewString(),
		"Hello [FIRSTNAME]",
		"<p>Hi [FIRSTNAME], welcome to [LISTS].</p><p>[UNSUBSCRIBE]</p>",
		"Hi [FIRSTNAME], welcome to [LISTS].\n\n[UNSUBSCRIBE]",
		"[SIGNATURE]",
	).Scan(&campaignID)
	if err != nil {
		log.WithError(err).Fatal("failed to create campaign")
	}

	if _, err := db.Exec(
		`INSERT INTO campaign_lists (campaign_id, list_id) VALUES ($1, $2)`,
		campaignID, listID,
	); err != nil {
		log.WithError(err).Fatal("failed to target list")
	}

	log.
		WithField("subscribers", *subscribersCount).
		WithField("campaign_id", campaignID).
		Info("seed data created")
}
