package statement

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	dateColumn   = "column0"
	amountColumn = "column1"

	dateLayout = "2006-01-02"
)

var (
	ErrMissingStatement = errors.New("payload has no accountStatement")

	originalAmount = regexp.MustCompile(`^(-?\d+(?:\.\d+)?) ([A-Z]{3})$`)

	null = []byte("null")
)

// textColumns maps the bank's column codes to the transaction fields holding
// their sanitized text. column0 and column1 are typed and handled separately.
var textColumns = map[string]func(t *Transaction) **string{
	"column2":  func(t *Transaction) **string { return &t.AccountNumber },
	"column3":  func(t *Transaction) **string { return &t.BankCode },
	"column4":  func(t *Transaction) **string { return &t.ConstantSymbol },
	"column5":  func(t *Transaction) **string { return &t.VariableSymbol },
	"column6":  func(t *Transaction) **string { return &t.SpecificSymbol },
	"column7":  func(t *Transaction) **string { return &t.UserIdentification },
	"column8":  func(t *Transaction) **string { return &t.Type },
	"column9":  func(t *Transaction) **string { return &t.Executor },
	"column10": func(t *Transaction) **string { return &t.AccountName },
	"column12": func(t *Transaction) **string { return &t.BankName },
	"column14": func(t *Transaction) **string { return &t.Currency },
	"column16": func(t *Transaction) **string { return &t.RecipientMessage },
	"column17": func(t *Transaction) **string { return &t.InstructionID },
	"column18": func(t *Transaction) **string { return &t.Specification },
	"column22": func(t *Transaction) **string { return &t.TransactionID },
	"column25": func(t *Transaction) **string { return &t.Comment },
	"column26": func(t *Transaction) **string { return &t.BIC },
	"column27": func(t *Transaction) **string { return &t.Reference },
}

type envelope struct {
	AccountStatement *struct {
		Info            map[string]json.RawMessage `json:"info"`
		TransactionList *struct {
			Transaction []map[string]*column `json:"transaction"`
		} `json:"transactionList"`
	} `json:"accountStatement"`
}

type column struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// Parser decodes the bank's transactions.json payload. With Decimal set,
// amounts keep the exact digits sent by the bank.
type Parser struct {
	Decimal bool
}

func (p Parser) Parse(data []byte) (Statement, error) {
	env, err := decode(data)
	if err != nil {
		return Statement{}, err
	}

	info, err := p.parseInfo(env)
	if err != nil {
		return Statement{}, err
	}

	transactions, err := p.parseTransactions(env)
	if err != nil {
		return Statement{}, err
	}

	return Statement{Info: info, Transactions: transactions}, nil
}

func (p Parser) ParseInfo(data []byte) (Info, error) {
	env, err := decode(data)
	if err != nil {
		return Info{}, err
	}

	return p.parseInfo(env)
}

func (p Parser) ParseTransactions(data []byte) ([]Transaction, error) {
	env, err := decode(data)
	if err != nil {
		return nil, err
	}

	return p.parseTransactions(env)
}

func decode(data []byte) (envelope, error) {
	var env envelope

	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, errors.Wrap(err, "decode statement payload")
	}
	if env.AccountStatement == nil {
		return envelope{}, ErrMissingStatement
	}

	return env, nil
}

func (p Parser) parseInfo(env envelope) (Info, error) {
	var info Info

	for key, raw := range env.AccountStatement.Info {
		var err error

		// the bank has changed the capitalization of these keys before
		switch strings.ToLower(key) {
		case "accountid":
			info.AccountNumber, err = text(raw)
		case "bankid":
			info.BankCode, err = text(raw)
		case "currency":
			info.Currency, err = text(raw)
		case "iban":
			info.IBAN, err = text(raw)
		case "bic":
			info.BIC, err = text(raw)
		case "closingbalance":
			info.Balance, err = p.amount(raw)
		case "openingbalance":
			info.OpeningBalance, err = p.amount(raw)
		case "datestart":
			info.DateStart, err = date(raw)
		case "dateend":
			info.DateEnd, err = date(raw)
		case "idfrom":
			info.IDFrom, err = text(raw)
		case "idto":
			info.IDTo, err = text(raw)
		case "idlastdownload":
			info.IDLastDownload, err = text(raw)
		}

		if err != nil {
			return Info{}, errors.Wrapf(err, "parse info field %s", key)
		}
	}

	info.AccountNumberFull = accountNumberFull(info.AccountNumber, info.BankCode)

	return info, nil
}

func (p Parser) parseTransactions(env envelope) ([]Transaction, error) {
	list := env.AccountStatement.TransactionList
	if list == nil {
		return []Transaction{}, nil
	}

	transactions := make([]Transaction, 0, len(list.Transaction))

	for i, entry := range list.Transaction {
		var t Transaction

		for code, col := range entry {
			if col == nil {
				continue
			}
			if err := p.assign(&t, code, col.Value); err != nil {
				return nil, errors.Wrapf(err, "parse transaction %d %s", i, code)
			}
		}

		if err := p.refine(&t); err != nil {
			return nil, errors.Wrapf(err, "parse transaction %d", i)
		}

		transactions = append(transactions, t)
	}

	return transactions, nil
}

func (p Parser) assign(t *Transaction, code string, raw json.RawMessage) error {
	var err error

	switch code {
	case dateColumn:
		t.Date, err = date(raw)
	case amountColumn:
		t.Amount, err = p.amount(raw)
	default:
		field, ok := textColumns[code]
		if !ok {
			log.WithField("column", code).Debug("skipping unknown transaction column")
			return nil
		}
		*field(t), err = text(raw)
	}

	return err
}

func (p Parser) refine(t *Transaction) error {
	t.AccountNumberFull = accountNumberFull(t.AccountNumber, t.BankCode)

	if t.Specification == nil {
		return nil
	}

	m := originalAmount.FindStringSubmatch(*t.Specification)
	if m == nil {
		return nil
	}

	a, err := parseAmount(m[1], p.Decimal)
	if err != nil {
		return err
	}

	currency := m[2]
	t.OriginalAmount = &a
	t.OriginalCurrency = &currency

	return nil
}

func (p Parser) amount(raw json.RawMessage) (*Amount, error) {
	s, err := text(raw)
	if err != nil || s == nil {
		return nil, err
	}

	a, err := parseAmount(*s, p.Decimal)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func date(raw json.RawMessage) (*time.Time, error) {
	s, err := text(raw)
	if err != nil || s == nil {
		return nil, err
	}

	d, err := CoerceDate(*s)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// text returns the trimmed textual form of a wire value: strings are
// unquoted, numbers keep their literal digits, blanks and nulls become nil.
func text(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return nil, nil
	}

	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, errors.Wrap(err, "decode text value")
		}
	} else {
		s = string(raw)
	}

	return Sanitize(s), nil
}

// Sanitize trims surrounding whitespace and maps blank strings to nil.
func Sanitize(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CoerceDate reads the calendar date from the first ten characters of s,
// which accepts both plain dates and the bank's "2016-08-03+0200" form.
func CoerceDate(s string) (time.Time, error) {
	if len(s) < len(dateLayout) {
		return time.Time{}, errors.Errorf("invalid date %q", s)
	}

	d, err := time.Parse(dateLayout, s[:len(dateLayout)])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
	}

	return d, nil
}
