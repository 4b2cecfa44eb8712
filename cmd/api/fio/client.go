package fio

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/fio-api/cmd/api/cursor"
	"github.com/tamasbrandstadter/fio-api/cmd/api/statement"
)

type Config struct {
	BaseURL string
	// Decimal keeps amounts as exact decimals instead of float64.
	Decimal bool
	// Attempts is the total number of tries of a throttled request.
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
	Timeout  time.Duration

	HTTPClient *http.Client
}

func DefaultConfig() Config {
	return Config{
		BaseURL:  DefaultBaseURL,
		Decimal:  true,
		Attempts: 3,
		Delay:    time.Second,
		MaxDelay: 2 * time.Minute,
		Timeout:  30 * time.Second,
	}
}

// Since constrains Last to transactions newer than an id or a date.
// The zero value keeps the cursor the bank already holds for the token.
type Since struct {
	ID   string
	Date time.Time
}

type Client struct {
	token  string
	cfg    Config
	http   *http.Client
	parser statement.Parser
	cursor cursor.Tracker
	now    func() time.Time
	delay  retry.DelayTypeFunc
}

func New(token string, cfg Config) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = def.Attempts
	}
	if cfg.Delay <= 0 {
		cfg.Delay = def.Delay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		token:  token,
		cfg:    cfg,
		http:   hc,
		parser: statement.Parser{Decimal: cfg.Decimal},
		now:    time.Now,
	}
	c.delay = c.backoff

	return c, nil
}

// Info returns the account snapshot, read from today's period.
func (c *Client) Info(ctx context.Context) (statement.Info, error) {
	today := c.now()

	data, err := c.fetch(ctx, periods, periodsPath(c.token, today, today))
	if err != nil {
		return statement.Info{}, err
	}

	return c.parser.ParseInfo(data)
}

func (c *Client) Period(ctx context.Context, from, to time.Time) ([]statement.Transaction, error) {
	st, err := c.Transactions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return st.Transactions, nil
}

// Transactions returns the account snapshot together with the transactions
// booked between from and to, both inclusive.
func (c *Client) Transactions(ctx context.Context, from, to time.Time) (statement.Statement, error) {
	data, err := c.fetch(ctx, periods, periodsPath(c.token, from, to))
	if err != nil {
		return statement.Statement{}, err
	}

	return c.parser.Parse(data)
}

// Statement returns the transactions of the official statement number of year.
func (c *Client) Statement(ctx context.Context, year, number int) ([]statement.Transaction, error) {
	data, err := c.fetch(ctx, byID, byIDPath(c.token, year, number))
	if err != nil {
		return nil, err
	}

	return c.parser.ParseTransactions(data)
}

func (c *Client) Last(ctx context.Context, since Since) ([]statement.Transaction, error) {
	st, err := c.LastTransactions(ctx, since)
	if err != nil {
		return nil, err
	}
	return st.Transactions, nil
}

// LastTransactions returns everything booked since the last download and
// moves the cursor past it, both on the bank side and in Cursor.
func (c *Client) LastTransactions(ctx context.Context, since Since) (statement.Statement, error) {
	if since.ID != "" && !since.Date.IsZero() {
		return statement.Statement{}, ErrConflictingSince
	}

	if since.ID != "" {
		if err := c.SetLastID(ctx, since.ID); err != nil {
			return statement.Statement{}, err
		}
	} else if !since.Date.IsZero() {
		if err := c.SetLastDate(ctx, since.Date); err != nil {
			return statement.Statement{}, err
		}
	}

	data, err := c.fetch(ctx, last, lastPath(c.token))
	if err != nil {
		return statement.Statement{}, err
	}

	st, err := c.parser.Parse(data)
	if err != nil {
		return statement.Statement{}, err
	}

	c.cursor.Advance(st.Transactions)
	return st, nil
}

func (c *Client) SetLastID(ctx context.Context, id string) error {
	if _, err := c.request(ctx, setLastID, setLastIDPath(c.token, id)); err != nil {
		return err
	}

	c.cursor.Set(cursor.Cursor{ID: id})
	return nil
}

func (c *Client) SetLastDate(ctx context.Context, date time.Time) error {
	if _, err := c.request(ctx, setLastDate, setLastDatePath(c.token, date)); err != nil {
		return err
	}

	c.cursor.Set(cursor.Cursor{Date: date})
	return nil
}

// Cursor is the newest transaction this client has returned from Last.
func (c *Client) Cursor() cursor.Cursor {
	return c.cursor.Get()
}

func (c *Client) fetch(ctx context.Context, a action, path string) ([]byte, error) {
	data, err := c.request(ctx, a, path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoData
	}
	return data, nil
}

func (c *Client) request(ctx context.Context, a action, path string) ([]byte, error) {
	var body []byte

	err := c.withRetry(ctx, a, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
		if err != nil {
			return errors.Wrapf(redact(err), "build %s request", a)
		}

		log.WithField("action", a).Debug("calling fio api")

		resp, err := c.http.Do(req)
		if err != nil {
			return errors.Wrapf(redact(err), "%s request", a)
		}

		defer func() {
			if err := resp.Body.Close(); err != nil {
				log.WithError(errors.Wrap(err, "close response body")).Info("fio api request")
			}
		}()

		switch {
		case resp.StatusCode == http.StatusConflict:
			_, _ = io.Copy(ioutil.Discard, resp.Body)
			return errConflict
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			_, _ = io.Copy(ioutil.Discard, resp.Body)
			return &StatusError{Action: string(a), Code: resp.StatusCode}
		}

		b, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrapf(redact(err), "read %s response", a)
		}

		body = b
		return nil
	})

	return body, err
}

// redact drops the request URL from transport errors, it carries the token.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
