package queue

import (
	"sync"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Connection wraps a RabbitMQ connection with reconnection support.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	mu      sync.Mutex
	log     logrus.FieldLogger
}

// NewConnection dials RabbitMQ and opens a channel.
func NewConnection(url string, log logrus.FieldLogger) (*Connection, error) {
	if url == "" {
		return nil, errors.New("rabbitmq url cannot be empty")
	}
	if log == nil {
		log = logrus.New()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to create channel")
	}

	return &Connection{
		conn:    conn,
		channel: channel,
		url:     url,
		log:     log,
	}, nil
}

// Channel returns the channel, reconnecting if necessary.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.conn == nil || c.conn.IsClosed() {
		c.log.Warn("rabbitmq channel closed, reconnecting")
		if err := c.reconnect(); err != nil {
			return nil, errors.Wrap(err, "failed to reconnect")
		}
	}

	return c.channel, nil
}

func (c *Connection) reconnect() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return errors.Wrap(err, "failed to reconnect to rabbitmq")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to create channel on reconnect")
	}

	c.conn = conn
	c.channel = channel

	c.log.Info("reconnected to rabbitmq")
	return nil
}

// Close closes the channel and connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error

	if c.channel != nil {
		if err := c.channel.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "failed to close channel")
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "failed to close connection")
		}
		c.conn = nil
	}

	return firstErr
}

// IsConnected reports whether the connection and channel are open.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn != nil && !c.conn.IsClosed() && c.channel != nil
}
