package queue

import (
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DispatchTask is the payload of one campaign-dispatch task. Requeueing
// a partially processed campaign publishes the same payload again.
type DispatchTask struct {
	CampaignID int `json:"campaign_id"`
}

// Publisher publishes dispatch tasks to the campaign queue.
type Publisher struct {
	conn      *Connection
	queueName string
}

// NewPublisher declares the durable queue and returns a publisher.
func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get channel")
	}

	// Same settings as the consumer: durable, non-auto-delete.
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to declare queue")
	}

	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

// PublishDispatch enqueues a dispatch task for the campaign.
func (p *Publisher) PublishDispatch(campaignID int) error {
	task := DispatchTask{CampaignID: campaignID}

	body, err := json.Marshal(task)
	if err != nil {
		return errors.Wrap(err, "failed to marshal dispatch task")
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to get channel")
	}

	err = ch.Publish(
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	)
	return errors.Wrap(err, "failed to publish dispatch task")
}
