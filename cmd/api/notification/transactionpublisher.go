package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
	"github.com/tamasbrandstadter/fio-api/internal/mq"
)

type TransactionMessage struct {
	Account     *string               `json:"account"`
	Transaction statement.Transaction `json:"transaction"`
	FetchedAt   time.Time             `json:"fetchedAt"`
}

// PublishTransactions sends one message per transaction and stops at the
// first failed publish, returning how many went out before it.
func PublishTransactions(p mq.Publisher, info statement.Info, ts []statement.Transaction) (int, error) {
	fetchedAt := time.Now().UTC()

	for i, t := range ts {
		body, err := json.Marshal(TransactionMessage{
			Account:     info.AccountNumberFull,
			Transaction: t,
			FetchedAt:   fetchedAt,
		})
		if err != nil {
			return i, errors.Wrap(err, "marshal transaction message")
		}

		headers := amqp.Table{}
		if t.TransactionID != nil {
			headers["transaction_id"] = *t.TransactionID
		}

		err = p.Publish(mq.TransactionsExchange, mq.TransactionsRouteKey, false, false, amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.New().String(),
			Timestamp:    fetchedAt,
			Headers:      headers,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
		if err != nil {
			log.Errorf("error sending transaction to %s topic: %v", mq.TransactionsExchange, err)
			return i, errors.Wrap(err, "publish transaction message")
		}
	}

	if len(ts) > 0 {
		log.Infof("published %d transactions to %s", len(ts), mq.TransactionsExchange)
	}
	return len(ts), nil
}
