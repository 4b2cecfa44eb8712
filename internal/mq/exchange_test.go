package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/fio-api/internal/testmq"
)

func TestDeclareExchange(t *testing.T) {
	ch := &testmq.Channel{}

	err := DeclareExchange(ch)

	assert.NoError(t, err)
	assert.Equal(t, []string{TransactionsExchange}, ch.Exchanges)
}
