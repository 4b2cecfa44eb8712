package testmq

import (
	"sync"

	"github.com/streadway/amqp"
)

// Channel records what would have been sent to the broker.
type Channel struct {
	mu         sync.Mutex
	Exchanges  []string
	Published  []amqp.Publishing
	RouteKeys  []string
	PublishErr error
	// FailAfter lets that many publishes succeed before PublishErr is returned.
	FailAfter int
	Closed    bool

	closed chan *amqp.Error
}

func (c *Channel) ExchangeDeclare(name, _ string, _, _, _, _ bool, _ amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Exchanges = append(c.Exchanges, name)
	return nil
}

func (c *Channel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.PublishErr != nil && len(c.Published) >= c.FailAfter {
		return c.PublishErr
	}

	c.Published = append(c.Published, msg)
	c.RouteKeys = append(c.RouteKeys, key)
	return nil
}

// SetPublishErr swaps the publish error while the channel is in use.
func (c *Channel) SetPublishErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PublishErr = err
}

func (c *Channel) Messages() []amqp.Publishing {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]amqp.Publishing, len(c.Published))
	copy(msgs, c.Published)
	return msgs
}

func (c *Channel) NotifyClose() <-chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notify()
}

// Drop closes the channel the way the broker does, a nil err is a normal close.
func (c *Channel) Drop(err *amqp.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := c.notify()
	if err != nil {
		ch <- err
	}
	close(ch)
}

func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed = true
	return nil
}

func (c *Channel) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Closed
}

func (c *Channel) notify() chan *amqp.Error {
	if c.closed == nil {
		c.closed = make(chan *amqp.Error, 1)
	}
	return c.closed
}
