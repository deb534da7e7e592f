package queue

import (
	"encoding/json"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// TaskHandler processes one dispatch task. A returned error causes the
// delivery to be redelivered; the dispatch engine itself only returns
// errors for infrastructure faults, its domain-level failures are
// absorbed and recorded.
type TaskHandler func(task *DispatchTask) error

// Consumer consumes dispatch tasks from the campaign queue.
type Consumer struct {
	conn      *Connection
	queueName string
	handler   TaskHandler
	stopChan  chan struct{}
	doneChan  chan struct{}
	log       logrus.FieldLogger
}

// NewConsumer declares the queue and returns a consumer.
func NewConsumer(conn *Connection, queueName string, handler TaskHandler, log logrus.FieldLogger) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}
	if log == nil {
		log = logrus.New()
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get channel")
	}

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

	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
		log:       log,
	}, nil
}

// Start begins consuming. One task at a time per consumer; campaign
// processing within an invocation is single-threaded.
func (c *Consumer) Start() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to get channel")
	}

	if err := ch.Qos(1, 0, false); err != nil {
		return errors.Wrap(err, "failed to set QoS")
	}

	msgs, err := ch.Consume(
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (manual acknowledgement)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return errors.Wrap(err, "failed to start consuming")
	}

	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-c.stopChan:
				c.log.Info("consumer stopping")
				return
			case d, ok := <-msgs:
				if !ok {
					c.log.Warn("delivery channel closed")
					return
				}

				if err := c.processDelivery(d); err != nil {
					c.log.WithError(err).Error("failed to process dispatch task")
					d.Nack(false, true)
				} else {
					d.Ack(false)
				}
			}
		}
	}()

	c.log.WithField("queue", c.queueName).Info("consumer started")
	return nil
}

// Stop stops consuming and waits for the in-flight task to finish.
func (c *Consumer) Stop() error {
	close(c.stopChan)
	<-c.doneChan

	c.log.Info("consumer stopped")
	return nil
}

func (c *Consumer) processDelivery(d amqp.Delivery) error {
	var task DispatchTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		// A malformed payload never becomes valid on redelivery;
		// drop it instead of poisoning the queue.
		c.log.WithError(err).Warn("dropping malformed dispatch task")
		return nil
	}

	return c.handler(&task)
}
