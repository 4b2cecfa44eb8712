package mq

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Config struct {
	User string
	Pass string
	Host string
	Port int

	MaxReconnect   int
	ReconnectDelay time.Duration
}

// Publisher is the part of *amqp.Channel used to emit messages.
type Publisher interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Conn struct {
	Channel *amqp.Channel
	conn    *amqp.Connection
}

func NewConnection(cfg Config) (Conn, error) {
	log.Info("connecting to mq")

	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Pass, cfg.Host, cfg.Port))
	if err != nil {
		return Conn{}, errors.Wrap(err, "dial mq")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return Conn{}, errors.Wrap(err, "open mq channel")
	}

	log.Info("connected to mq")
	return Conn{Channel: ch, conn: conn}, nil
}

func (c Conn) Close() error {
	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			log.Errorf("error closing mq channel: %v", err)
		}
	}
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c Conn) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	return c.Channel.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (c Conn) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	return c.Channel.Publish(exchange, key, mandatory, immediate, msg)
}

func (c Conn) NotifyClose() <-chan *amqp.Error {
	return c.Channel.NotifyClose(make(chan *amqp.Error, 1))
}

// Dial opens a Conn as a Link for NewChannel.
func Dial(cfg Config) (Link, error) {
	c, err := NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
