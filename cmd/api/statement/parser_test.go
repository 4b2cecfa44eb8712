package statement

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tamasbrandstadter/fio-api/internal/testbank"
)

func TestParse(t *testing.T) {
	st, err := Parser{Decimal: true}.Parse(testbank.Payload())

	assert.NoError(t, err)
	assert.Len(t, st.Transactions, 3)

	first := st.Transactions[0]
	assert.Equal(t, "10000000000", deref(first.TransactionID))
	assert.Equal(t, time.Date(2016, 8, 3, 0, 0, 0, 0, time.UTC), *first.Date)
	assert.True(t, first.Amount.Exact())
	assert.True(t, decimal.NewFromInt(-130).Equal(first.Amount.Decimal()))
	assert.Equal(t, "CZK", deref(first.Currency))
	assert.Equal(t, "Nákup: IKEA, Praha", deref(first.UserIdentification))
	assert.Equal(t, "Platba kartou", deref(first.Type))
	assert.Equal(t, "Javorek, Jan", deref(first.Executor))
	assert.Equal(t, "10000000005", deref(first.InstructionID))
	assert.Nil(t, first.AccountName)
	assert.Nil(t, first.AccountNumber)
	assert.Nil(t, first.AccountNumberFull)
	assert.Nil(t, first.Specification)
	assert.Nil(t, first.OriginalAmount)
	assert.Nil(t, first.OriginalCurrency)

	second := st.Transactions[1]
	assert.Equal(t, "Novák, Petr", deref(second.AccountName))
	assert.Equal(t, "2900000000/2010", deref(second.AccountNumberFull))
	assert.Equal(t, "0558", deref(second.ConstantSymbol))
	assert.Equal(t, "1234567890", deref(second.VariableSymbol))
	assert.Equal(t, "Vratka za obed", deref(second.RecipientMessage))
	assert.Equal(t, "Fio banka, a.s.", deref(second.BankName))
	assert.Equal(t, "FIOBCZPPXXX", deref(second.BIC))
	assert.Nil(t, second.UserIdentification)

	third := st.Transactions[2]
	assert.Equal(t, "3.70 EUR", deref(third.Specification))
	assert.True(t, decimal.RequireFromString("3.7").Equal(third.OriginalAmount.Decimal()))
	assert.Equal(t, "EUR", deref(third.OriginalCurrency))
	assert.Equal(t, "INV-2016-08", deref(third.Reference))

	assert.Equal(t, "2000000000", deref(st.Info.AccountNumber))
	assert.Equal(t, "2010", deref(st.Info.BankCode))
	assert.Equal(t, "2000000000/2010", deref(st.Info.AccountNumberFull))
	assert.Equal(t, "CZK", deref(st.Info.Currency))
	assert.Equal(t, "CZ7920100000002000000000", deref(st.Info.IBAN))
	assert.Equal(t, "FIOBCZPPXXX", deref(st.Info.BIC))
	assert.True(t, decimal.RequireFromString("2060.52").Equal(st.Info.Balance.Decimal()))
	assert.True(t, decimal.RequireFromString("2190.52").Equal(st.Info.OpeningBalance.Decimal()))
	assert.Equal(t, time.Date(2016, 8, 30, 0, 0, 0, 0, time.UTC), *st.Info.DateEnd)
	assert.Equal(t, "10000000002", deref(st.Info.IDTo))
	assert.Nil(t, st.Info.IDLastDownload)
}

func TestParseFloat(t *testing.T) {
	st, err := Parser{}.Parse(testbank.Payload())

	assert.NoError(t, err)
	assert.False(t, st.Transactions[0].Amount.Exact())
	assert.Equal(t, -130.0, st.Transactions[0].Amount.Float64())
	assert.Equal(t, 2060.52, st.Info.Balance.Float64())
	assert.Equal(t, 3.7, st.Transactions[2].OriginalAmount.Float64())
}

func TestParseTransactionsColumnMapping(t *testing.T) {
	tests := []struct {
		code  string
		field func(Transaction) *string
	}{
		{"column2", func(tr Transaction) *string { return tr.AccountNumber }},
		{"column3", func(tr Transaction) *string { return tr.BankCode }},
		{"column4", func(tr Transaction) *string { return tr.ConstantSymbol }},
		{"column5", func(tr Transaction) *string { return tr.VariableSymbol }},
		{"column6", func(tr Transaction) *string { return tr.SpecificSymbol }},
		{"column7", func(tr Transaction) *string { return tr.UserIdentification }},
		{"column8", func(tr Transaction) *string { return tr.Type }},
		{"column9", func(tr Transaction) *string { return tr.Executor }},
		{"column10", func(tr Transaction) *string { return tr.AccountName }},
		{"column12", func(tr Transaction) *string { return tr.BankName }},
		{"column14", func(tr Transaction) *string { return tr.Currency }},
		{"column16", func(tr Transaction) *string { return tr.RecipientMessage }},
		{"column17", func(tr Transaction) *string { return tr.InstructionID }},
		{"column18", func(tr Transaction) *string { return tr.Specification }},
		{"column22", func(tr Transaction) *string { return tr.TransactionID }},
		{"column25", func(tr Transaction) *string { return tr.Comment }},
		{"column26", func(tr Transaction) *string { return tr.BIC }},
		{"column27", func(tr Transaction) *string { return tr.Reference }},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
				for _, tx := range txs {
					tx.(map[string]interface{})[tt.code] = map[string]interface{}{"value": json.Number("30.8")}
				}
			})

			transactions, err := Parser{}.ParseTransactions(data)

			assert.NoError(t, err)
			assert.Len(t, transactions, 3)
			for _, tr := range transactions {
				assert.Equal(t, "30.8", deref(tt.field(tr)))
			}
		})
	}
}

func TestParseTransactionsDateAndAmount(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		tx := txs[0].(map[string]interface{})
		tx["column0"] = map[string]interface{}{"value": "2015-08-30"}
		tx["column1"] = map[string]interface{}{"value": json.Number("30.8")}
	})

	transactions, err := Parser{Decimal: true}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Equal(t, time.Date(2015, 8, 30, 0, 0, 0, 0, time.UTC), *transactions[0].Date)
	assert.Equal(t, "30.8", transactions[0].Amount.String())
}

func TestParseTransactionsUnsanitized(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		txs[0].(map[string]interface{})["column10"] = map[string]interface{}{"value": "             Honza\n"}
	})

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Equal(t, "Honza", deref(transactions[0].AccountName))
}

func TestParseTransactionsMissingColumn(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		delete(txs[1].(map[string]interface{}), "column10")
	})

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Nil(t, transactions[1].AccountName)
}

func TestParseTransactionsNullValue(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		tx := txs[1].(map[string]interface{})
		tx["column2"] = map[string]interface{}{"value": json.Number("10000000002")}
		tx["column3"] = map[string]interface{}{"value": nil}
	})

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Equal(t, "10000000002", deref(transactions[1].AccountNumber))
	assert.Nil(t, transactions[1].BankCode)
	assert.Nil(t, transactions[1].AccountNumberFull)
}

func TestParseTransactionsUnknownColumn(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		txs[0].(map[string]interface{})["column99"] = map[string]interface{}{"value": "x"}
	})

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestParseTransactionsOriginalAmount(t *testing.T) {
	tests := []struct {
		specification string
		amount        string
		currency      string
	}{
		{"650.00 HRK", "650", "HRK"},
		{"-308 EUR", "-308", "EUR"},
		{"46052.01 HUF", "46052.01", "HUF"},
	}

	for _, tt := range tests {
		for _, exact := range []bool{true, false} {
			data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
				txs[0].(map[string]interface{})["column18"] = map[string]interface{}{"value": tt.specification}
			})

			transactions, err := Parser{Decimal: exact}.ParseTransactions(data)

			assert.NoError(t, err)
			tr := transactions[0]
			assert.Equal(t, tt.specification, deref(tr.Specification))
			assert.Equal(t, exact, tr.OriginalAmount.Exact())
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(tr.OriginalAmount.Decimal()))
			assert.Equal(t, tt.currency, deref(tr.OriginalCurrency))
		}
	}
}

func TestParseTransactionsSpecificationWithTrailingText(t *testing.T) {
	for _, spec := range []string{"3.70 EURO", "3.70 EUR paid"} {
		data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
			txs[0].(map[string]interface{})["column18"] = map[string]interface{}{"value": spec}
		})

		transactions, err := Parser{Decimal: true}.ParseTransactions(data)

		assert.NoError(t, err)
		assert.Nil(t, transactions[0].OriginalAmount, spec)
		assert.Nil(t, transactions[0].OriginalCurrency, spec)
	}
}

func TestParseTransactionsSpecificationWithoutAmount(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		txs[0].(map[string]interface{})["column18"] = map[string]interface{}{"value": "splatka uveru"}
	})

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Equal(t, "splatka uveru", deref(transactions[0].Specification))
	assert.Nil(t, transactions[0].OriginalAmount)
	assert.Nil(t, transactions[0].OriginalCurrency)
}

func TestParseTransactionsInvalidDate(t *testing.T) {
	data := modify(t, func(_ map[string]interface{}, txs []interface{}) {
		txs[0].(map[string]interface{})["column0"] = map[string]interface{}{"value": "fio@fio.cz"}
	})

	_, err := Parser{}.ParseTransactions(data)

	assert.Error(t, err)
}

func TestParseTransactionsNoList(t *testing.T) {
	data := []byte(`{"accountStatement":{"info":{"accountId":"2000000000"},"transactionList":null}}`)

	transactions, err := Parser{}.ParseTransactions(data)

	assert.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestParseMissingStatement(t *testing.T) {
	_, err := Parser{}.Parse([]byte(`{"something":"else"}`))

	assert.Equal(t, ErrMissingStatement, errors.Cause(err))
}

func TestParseInfoCaseInsensitive(t *testing.T) {
	data := modify(t, func(info map[string]interface{}, _ []interface{}) {
		value := info["accountId"]
		delete(info, "accountId")
		info["acCOUNTid"] = value
	})

	info, err := Parser{}.ParseInfo(data)

	assert.NoError(t, err)
	assert.Equal(t, "2000000000", deref(info.AccountNumber))
}

func TestParseInfoNoAccountNumberFull(t *testing.T) {
	data := modify(t, func(info map[string]interface{}, _ []interface{}) {
		delete(info, "bankId")
	})

	info, err := Parser{}.ParseInfo(data)

	assert.NoError(t, err)
	assert.Nil(t, info.BankCode)
	assert.Nil(t, info.AccountNumberFull)
}

func TestCoerceDate(t *testing.T) {
	for _, in := range []string{"2016-08-03", "2016-08-03T21:03:42", "2016-08-03+0200"} {
		d, err := CoerceDate(in)

		assert.NoError(t, err)
		assert.Equal(t, time.Date(2016, 8, 3, 0, 0, 0, 0, time.UTC), d)
	}

	for _, in := range []string{"21:03:42", "fio@fio.cz", ""} {
		_, err := CoerceDate(in)

		assert.Error(t, err, in)
	}
}

func TestSanitize(t *testing.T) {
	assert.Nil(t, Sanitize(""))
	assert.Nil(t, Sanitize("     \n     "))
	assert.Equal(t, "fio", *Sanitize("\nfio    "))
	assert.Equal(t, "žluťoučký kůň", *Sanitize("žluťoučký kůň"))
}

func modify(t *testing.T, fn func(info map[string]interface{}, txs []interface{})) []byte {
	t.Helper()

	var doc map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(testbank.Payload()))
	d.UseNumber()
	if err := d.Decode(&doc); err != nil {
		t.Fatalf("decode sample payload: %v", err)
	}

	st := doc["accountStatement"].(map[string]interface{})
	info := st["info"].(map[string]interface{})
	txs := st["transactionList"].(map[string]interface{})["transaction"].([]interface{})

	fn(info, txs)

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("encode modified payload: %v", err)
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
