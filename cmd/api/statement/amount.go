package statement

import (
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Amount is a monetary value kept either as an exact decimal or as a float64,
// depending on how the parser was configured.
type Amount struct {
	value decimal.Decimal
	float float64
	exact bool
}

func NewDecimalAmount(d decimal.Decimal) Amount {
	f, _ := d.Float64()
	return Amount{value: d, float: f, exact: true}
}

func NewFloatAmount(f float64) Amount {
	return Amount{value: decimal.NewFromFloat(f), float: f}
}

func parseAmount(text string, exact bool) (Amount, error) {
	text = strings.TrimSpace(text)

	if exact {
		d, err := decimal.NewFromString(text)
		if err != nil {
			return Amount{}, errors.Wrapf(err, "parse decimal amount %q", text)
		}
		return NewDecimalAmount(d), nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Amount{}, errors.Wrapf(err, "parse float amount %q", text)
	}
	return NewFloatAmount(f), nil
}

func (a Amount) Exact() bool {
	return a.exact
}

func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

func (a Amount) Float64() float64 {
	return a.float
}

func (a Amount) String() string {
	if a.exact {
		return a.value.String()
	}
	return strconv.FormatFloat(a.float, 'f', -1, 64)
}

// Money converts the amount to minor units of the given currency, rounding
// half away from zero when the amount carries more digits than the currency.
func (a Amount) Money(currency string) *money.Money {
	fraction := 2
	if c := money.New(0, currency).Currency(); c.Grapheme != "" {
		fraction = c.Fraction
	}

	minor := a.value.Shift(int32(fraction)).Round(0).IntPart()
	return money.New(minor, currency)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	text := strings.Trim(string(b), `"`)

	parsed, err := parseAmount(text, true)
	if err != nil {
		return err
	}

	*a = parsed
	return nil
}
