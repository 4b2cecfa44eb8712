package mq

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const defaultReconnectDelay = time.Second

// Link is one broker session that can be published on.
type Link interface {
	Publisher
	NotifyClose() <-chan *amqp.Error
	Close() error
}

// Channel publishes on the current Link and dials a new one when the broker
// closes it, see Listen.
type Channel struct {
	cfg  Config
	dial func(Config) (Link, error)

	mu     sync.RWMutex
	link   Link
	closed <-chan *amqp.Error
}

func NewChannel(cfg Config, dial func(Config) (Link, error)) (*Channel, error) {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}

	l, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	c := &Channel{cfg: cfg, dial: dial}
	c.swap(l)
	return c, nil
}

func (c *Channel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	l, _ := c.current()
	return l.ExchangeDeclare(name, kind, durable, autoDelete, internal, noWait, args)
}

func (c *Channel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	l, _ := c.current()
	return l.Publish(exchange, key, mandatory, immediate, msg)
}

func (c *Channel) Close() error {
	l, _ := c.current()
	return l.Close()
}

// Listen blocks until ctx is done or the link is closed normally. When the
// broker drops the link it dials again, at most MaxReconnect times in a row,
// and gives up with an error after that.
func (c *Channel) Listen(ctx context.Context) error {
	for {
		_, closed := c.current()

		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-closed:
			if !ok || err == nil {
				log.Info("mq connection closed normally, will not reconnect")
				return nil
			}
			log.Errorf("closed mq connection: %v", err)
		}

		if err := c.reconnect(ctx); err != nil {
			return err
		}
	}
}

func (c *Channel) reconnect(ctx context.Context) error {
	for i := 0; i < c.cfg.MaxReconnect; i++ {
		log.Info("attempting to reconnect to mq")

		l, err := c.dial(c.cfg)
		if err == nil {
			if err = DeclareExchange(l); err == nil {
				old := c.swap(l)
				if cerr := old.Close(); cerr != nil {
					log.Debugf("closing dropped mq link: %v", cerr)
				}
				log.Info("reconnected to mq")
				return nil
			}
			_ = l.Close()
		}
		log.Warnf("reconnect attempt %d failed: %v", i+1, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelay):
		}
	}

	return errors.Errorf("reached max attempts, unable to reconnect to mq after %d tries", c.cfg.MaxReconnect)
}

func (c *Channel) current() (Link, <-chan *amqp.Error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.link, c.closed
}

func (c *Channel) swap(l Link) Link {
	closed := l.NotifyClose()

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.link
	c.link, c.closed = l, closed
	return old
}
