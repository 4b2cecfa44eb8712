package poller

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/fio-api/cmd/api/cursor"
	"github.com/tamasbrandstadter/fio-api/cmd/api/fio"
	"github.com/tamasbrandstadter/fio-api/cmd/api/notification"
	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
	"github.com/tamasbrandstadter/fio-api/internal/mq"
)

// minInterval is the bank's limit for reusing one token.
const minInterval = 30 * time.Second

type Bank interface {
	LastTransactions(ctx context.Context, since fio.Since) (statement.Statement, error)
	Cursor() cursor.Cursor
}

// Poller pulls new transactions, publishes them and stores the cursor of
// the last published transaction under Key.
type Poller struct {
	Bank      Bank
	DB        *sqlx.DB
	Publisher mq.Publisher
	Key       string
	Interval  time.Duration

	seeded bool
	// published is the newest transaction that reached the exchange.
	published cursor.Cursor
	// rewind moves the bank cursor back before the next fetch.
	rewind fio.Since
}

// Poll runs a single round and reports how many transactions it published.
// A failed publish rewinds the bank cursor on the next round, so nothing
// fetched is skipped, at the cost of possible duplicates.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	if !p.seeded {
		stored, err := cursor.Load(p.DB, p.Key)
		if err != nil {
			return 0, err
		}
		p.published = stored

		// the bank keeps its own cursor per token, only rewind it on the first round
		if stored.ID != "" && p.Bank.Cursor().IsZero() {
			p.rewind = fio.Since{ID: stored.ID}
		}
	}

	st, err := p.Bank.LastTransactions(ctx, p.rewind)
	if err != nil {
		return 0, errors.Wrap(err, "fetch last transactions")
	}
	p.seeded = true
	p.rewind = fio.Since{}

	n, pubErr := notification.PublishTransactions(p.Publisher, st.Info, st.Transactions)

	p.published = p.published.Advance(st.Transactions[:n])

	if pubErr != nil {
		p.rewind = resume(p.published, st.Transactions)
		log.Warnf("publish failed after %d of %d transactions, rewinding bank cursor", n, len(st.Transactions))
	}

	if !p.published.IsZero() && (pubErr == nil || n > 0) {
		if err := cursor.Save(p.DB, p.Key, p.published); err != nil {
			return n, err
		}
	}

	return n, pubErr
}

// resume picks where the bank cursor has to go so that every transaction of
// ts newer than published is returned again.
func resume(published cursor.Cursor, ts []statement.Transaction) fio.Since {
	if published.ID != "" {
		return fio.Since{ID: published.ID}
	}
	for _, t := range ts {
		if t.Date != nil {
			return fio.Since{Date: t.Date.AddDate(0, 0, -1)}
		}
	}
	return fio.Since{}
}

// Run polls every Interval until ctx is done. Failed rounds are logged and
// retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval < minInterval {
		interval = minInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if n, err := p.Poll(ctx); err != nil {
			if fio.IsThrottled(err) {
				log.Warnf("poll skipped, token throttled: %v", err)
			} else {
				log.Errorf("poll failed: %v", err)
			}
		} else {
			log.Infof("poll published %d new transactions", n)
		}

		select {
		case <-ctx.Done():
			log.Info("poller stopped")
			return
		case <-ticker.C:
		}
	}
}
