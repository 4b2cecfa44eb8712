package cursor

import (
	"math/big"
	"sync"
	"time"

	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
)

// Cursor remembers the newest transaction seen so far. Persisting it is up
// to the caller, see Load and Save.
type Cursor struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}

func (c Cursor) IsZero() bool {
	return c.ID == "" && c.Date.IsZero()
}

// Advance returns the cursor moved to the newest transaction in ts. Ids are
// compared as integers when both parse as such, the bank issues them that way.
func (c Cursor) Advance(ts []statement.Transaction) Cursor {
	next := c

	for _, t := range ts {
		if t.TransactionID == nil {
			continue
		}
		if next.ID != "" && !newer(*t.TransactionID, next.ID) {
			continue
		}

		next.ID = *t.TransactionID
		if t.Date != nil {
			next.Date = *t.Date
		}
	}

	return next
}

func newer(id, than string) bool {
	a, okA := new(big.Int).SetString(id, 10)
	b, okB := new(big.Int).SetString(than, 10)
	if okA && okB {
		return a.Cmp(b) > 0
	}
	return id > than
}

// Tracker is a Cursor shared between concurrent callers of one client.
type Tracker struct {
	mu     sync.Mutex
	cursor Cursor
}

func (t *Tracker) Get() Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

func (t *Tracker) Set(c Cursor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = c
}

func (t *Tracker) Advance(ts []statement.Transaction) Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cursor = t.cursor.Advance(ts)
	return t.cursor
}
