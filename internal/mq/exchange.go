package mq

import (
	"github.com/pkg/errors"
)

const (
	TransactionsExchange = "fio-transactions"
	TransactionsRouteKey = "tx"

	kind = "topic"
)

// DeclareExchange makes sure the durable transactions topic exists.
func DeclareExchange(p Publisher) error {
	if err := p.ExchangeDeclare(TransactionsExchange, kind, true, false, false, false, nil); err != nil {
		return errors.Wrap(err, "declare transactions exchange")
	}
	return nil
}
