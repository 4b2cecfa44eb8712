package testbank

import (
	_ "embed"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

const (
	Token = "test-token"

	restPath = "/v1/rest/"
)

//go:embed transactions.json
var payload []byte

// Payload returns a copy of the sample transactions.json response.
func Payload() []byte {
	b := make([]byte, len(payload))
	copy(b, payload)
	return b
}

// Bank is a fake of the bank's REST API recording every request path.
type Bank struct {
	*httptest.Server

	mu       sync.Mutex
	paths    []string
	body     []byte
	throttle int
	status   int
}

func New() *Bank {
	b := &Bank{body: Payload()}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

func (b *Bank) BaseURL() string {
	return b.URL + restPath
}

// Throttle answers the next n requests with 409 Conflict.
func (b *Bank) Throttle(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.throttle = n
}

// Fail answers every following request with the given status.
func (b *Bank) Fail(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Serve replaces the transactions.json body, nil makes it empty.
func (b *Bank) Serve(body []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.body = body
}

// Paths lists the requested paths relative to the REST root.
func (b *Bank) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	paths := make([]string, len(b.paths))
	copy(paths, b.paths)
	return paths
}

func (b *Bank) Hits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.paths)
}

func (b *Bank) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.paths = append(b.paths, strings.TrimPrefix(r.URL.Path, restPath))

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if b.throttle > 0 {
		b.throttle--
		w.WriteHeader(http.StatusConflict)
		return
	}
	if b.status != 0 {
		w.WriteHeader(b.status)
		return
	}

	if strings.HasSuffix(r.URL.Path, "transactions.json") && len(b.body) > 0 {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b.body)
		return
	}

	w.WriteHeader(http.StatusOK)
}
