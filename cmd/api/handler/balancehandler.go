package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
	"github.com/tamasbrandstadter/fio-api/internal/cache"
	"github.com/tamasbrandstadter/fio-api/internal/web"
)

const balanceKey = "balance"

type BalanceResponse struct {
	statement.Info
	Display string `json:"display,omitempty"`
}

func (a *Application) GetBalance(w http.ResponseWriter, r *http.Request) {
	// get balance from cache
	if b, ok := cache.Load(r.Context(), a.Cache.Recent, balanceKey); ok {
		web.RespondRaw(w, http.StatusOK, b)
		return
	}

	// not in cache, ask the bank
	info, err := a.Bank.Info(r.Context())
	if err != nil {
		respondBankError(w, err)
		return
	}

	resp := BalanceResponse{Info: info}
	if info.Balance != nil && info.Currency != nil {
		resp.Display = info.Balance.Money(*info.Currency).Display()
	}

	b, err := json.Marshal(resp)
	if err != nil {
		web.RespondError(w, http.StatusInternalServerError, "unable to encode balance")
		return
	}

	cache.Store(r.Context(), a.Cache.Recent, balanceKey, b, cache.RecentTTL)
	web.RespondRaw(w, http.StatusOK, b)
}
