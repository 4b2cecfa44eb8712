package statement

import (
	"time"
)

type Info struct {
	AccountNumber     *string    `json:"account_number"`
	BankCode          *string    `json:"bank_code"`
	AccountNumberFull *string    `json:"account_number_full"`
	Currency          *string    `json:"currency"`
	IBAN              *string    `json:"iban"`
	BIC               *string    `json:"bic"`
	Balance           *Amount    `json:"balance"`
	OpeningBalance    *Amount    `json:"opening_balance"`
	DateStart         *time.Time `json:"date_start"`
	DateEnd           *time.Time `json:"date_end"`
	IDFrom            *string    `json:"id_from"`
	IDTo              *string    `json:"id_to"`
	IDLastDownload    *string    `json:"id_last_download"`
}

type Transaction struct {
	TransactionID      *string    `json:"transaction_id"`
	Date               *time.Time `json:"date"`
	Amount             *Amount    `json:"amount"`
	Currency           *string    `json:"currency"`
	AccountNumber      *string    `json:"account_number"`
	AccountName        *string    `json:"account_name"`
	BankCode           *string    `json:"bank_code"`
	BIC                *string    `json:"bic"`
	BankName           *string    `json:"bank_name"`
	ConstantSymbol     *string    `json:"constant_symbol"`
	VariableSymbol     *string    `json:"variable_symbol"`
	SpecificSymbol     *string    `json:"specific_symbol"`
	UserIdentification *string    `json:"user_identification"`
	RecipientMessage   *string    `json:"recipient_message"`
	Type               *string    `json:"type"`
	Executor           *string    `json:"executor"`
	Specification      *string    `json:"specification"`
	Comment            *string    `json:"comment"`
	InstructionID      *string    `json:"instruction_id"`
	Reference          *string    `json:"reference"`
	AccountNumberFull  *string    `json:"account_number_full"`
	OriginalAmount     *Amount    `json:"original_amount"`
	OriginalCurrency   *string    `json:"original_currency"`
}

// Statement is one decoded API response: the account snapshot and the
// transactions it lists.
type Statement struct {
	Info         Info          `json:"info"`
	Transactions []Transaction `json:"transactions"`
}

func accountNumberFull(number, bank *string) *string {
	if number == nil || bank == nil {
		return nil
	}

	full := *number + "/" + *bank
	return &full
}
