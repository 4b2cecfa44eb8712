package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	rcache "github.com/go-redis/cache/v8"
	"github.com/julienschmidt/httprouter"
	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
	"github.com/tamasbrandstadter/fio-api/internal/cache"
	"github.com/tamasbrandstadter/fio-api/internal/web"
)

func (a *Application) GetTransactions(w http.ResponseWriter, r *http.Request) {
	// request validation
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		web.RespondError(w, http.StatusBadRequest, "from and to are required query parameters")
		return
	}

	from, err := statement.CoerceDate(q.Get("from"))
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, "unable to parse from date")
		return
	}
	to, err := statement.CoerceDate(q.Get("to"))
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, "unable to parse to date")
		return
	}
	if to.Before(from) {
		web.RespondError(w, http.StatusBadRequest, "to date is before from date")
		return
	}

	key := fmt.Sprintf("period:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if b, ok := cache.Load(r.Context(), a.Cache.Recent, key); ok {
		web.RespondRaw(w, http.StatusOK, b)
		return
	}

	st, err := a.Bank.Transactions(r.Context(), from, to)
	if err != nil {
		respondBankError(w, err)
		return
	}

	respondCached(w, r, a.Cache.Recent, cache.RecentTTL, key, st)
}

func (a *Application) GetStatement(w http.ResponseWriter, r *http.Request) {
	// request validation
	params := httprouter.ParamsFromContext(r.Context())

	year, err := strconv.Atoi(params.ByName("year"))
	if err != nil || year <= 0 {
		web.RespondError(w, http.StatusBadRequest, "unable to parse statement year")
		return
	}
	number, err := strconv.Atoi(params.ByName("number"))
	if err != nil || number <= 0 {
		web.RespondError(w, http.StatusBadRequest, "unable to parse statement number")
		return
	}

	key := fmt.Sprintf("statement:%d:%d", year, number)
	if b, ok := cache.Load(r.Context(), a.Cache.Statements, key); ok {
		web.RespondRaw(w, http.StatusOK, b)
		return
	}

	ts, err := a.Bank.Statement(r.Context(), year, number)
	if err != nil {
		respondBankError(w, err)
		return
	}

	respondCached(w, r, a.Cache.Statements, cache.StatementTTL, key, ts)
}

func (a *Application) GetCursor(w http.ResponseWriter, _ *http.Request) {
	web.Respond(w, http.StatusOK, a.Bank.Cursor())
}

// respondCached encodes data, keeps it in c under key and writes it out.
func respondCached(w http.ResponseWriter, r *http.Request, c *rcache.Cache, ttl time.Duration, key string, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		web.RespondError(w, http.StatusInternalServerError, "unable to encode transactions")
		return
	}

	cache.Store(r.Context(), c, key, b, ttl)
	web.RespondRaw(w, http.StatusOK, b)
}
