package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/tamasbrandstadter/fio-api/cmd/api/cursor"
	"github.com/tamasbrandstadter/fio-api/cmd/api/fio"
	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
	"github.com/tamasbrandstadter/fio-api/internal/cache"
	"github.com/tamasbrandstadter/fio-api/internal/web"
)

const (
	balance       = "/balance"
	transactions  = "/transactions"
	statementByID = "/statements/:year/:number"
	currentCursor = "/cursor"
)

// Bank is the read side of the client. Fetching "last" transactions moves the
// bank's cursor for the token, which belongs to the poller alone.
type Bank interface {
	Info(ctx context.Context) (statement.Info, error)
	Transactions(ctx context.Context, from, to time.Time) (statement.Statement, error)
	Statement(ctx context.Context, year, number int) ([]statement.Transaction, error)
	Cursor() cursor.Cursor
}

type Application struct {
	Bank    Bank
	Cache   *cache.Redis
	handler http.Handler
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func NewApplication(bank Bank, r *cache.Redis) *Application {
	if r == nil {
		r = &cache.Redis{}
	}

	app := Application{
		Bank:  bank,
		Cache: r,
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, balance, app.GetBalance)
	router.HandlerFunc(http.MethodGet, transactions, app.GetTransactions)
	router.HandlerFunc(http.MethodGet, statementByID, app.GetStatement)
	router.HandlerFunc(http.MethodGet, currentCursor, app.GetCursor)

	app.handler = router
	return &app
}

// respondBankError maps client errors to the status a caller can act on.
func respondBankError(w http.ResponseWriter, err error) {
	var se *fio.StatusError

	switch {
	case fio.IsThrottled(err):
		w.Header().Set("Retry-After", "30")
		web.RespondError(w, http.StatusTooManyRequests, err.Error())
	case errors.Cause(err) == fio.ErrNoData:
		web.RespondError(w, http.StatusNotFound, "bank returned no data")
	case errors.As(err, &se):
		web.RespondError(w, http.StatusBadGateway, fmt.Sprintf("bank answered %d", se.Code))
	default:
		web.RespondError(w, http.StatusBadGateway, fmt.Sprintf("unable to reach bank: %s", err.Error()))
	}
}
