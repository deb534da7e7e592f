package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dispatch engine's prometheus counters.
type Metrics struct {
	registry *prometheus.Registry

	CampaignsDispatched prometheus.Counter
	CampaignsSent       prometheus.Counter
	CampaignsFailed     prometheus.Counter
	CampaignsRequeued   prometheus.Counter

	RecipientsSent    prometheus.Counter
	RecipientsSkipped prometheus.Counter
	RecipientsFailed  prometheus.Counter
}

// New creates and registers the counters on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CampaignsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_campaigns_dispatched_total",
			Help: "Dispatch tasks consumed from the queue.",
		}),
		CampaignsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_campaigns_sent_total",
			Help: "Campaigns that completed all recipients.",
		}),
		CampaignsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_campaigns_failed_total",
			Help: "Campaigns marked failed.",
		}),
		CampaignsRequeued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_campaigns_requeued_total",
			Help: "Dispatch invocations cut short by the time budget.",
		}),
		RecipientsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_recipients_sent_total",
			Help: "Recipients handed to the mail transport successfully.",
		}),
		RecipientsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_recipients_skipped_total",
			Help: "Recipients skipped before a send was attempted.",
		}),
		RecipientsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mailblast_recipients_failed_total",
			Help: "Recipients whose transport send failed.",
		}),
	}

	registry.MustRegister(
		m.CampaignsDispatched,
		m.CampaignsSent,
		m.CampaignsFailed,
		m.CampaignsRequeued,
		m.RecipientsSent,
		m.RecipientsSkipped,
		m.RecipientsFailed,
	)

	return m
}

// RegisterSendRate exposes the dispatcher's per-minute send rate as a
// gauge sampled at scrape time.
func (m *Metrics) RegisterSendRate(sample func() float64) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "mailblast_send_rate_per_minute",
		Help: "Recipients sent over the last minute.",
	}, sample))
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
