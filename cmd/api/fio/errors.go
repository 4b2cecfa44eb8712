package fio

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

var (
	ErrNoData           = errors.New("no data available")
	ErrMissingToken     = errors.New("api token is required")
	ErrConflictingSince = errors.New("only one of transaction id and date can be used as cursor")
)

// ThrottlingError is returned once the bank keeps answering 409 Conflict,
// which it does when a token is used more than once per 30 seconds.
type ThrottlingError struct {
	Attempts uint
}

func (te *ThrottlingError) Error() string {
	return fmt.Sprintf("token can be used only once per 30s, gave up after %d attempts", te.Attempts)
}

// StatusError is any other non-2xx answer of the bank.
type StatusError struct {
	Action string
	Code   int
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("%s request failed: %d %s", se.Action, se.Code, http.StatusText(se.Code))
}

func IsThrottled(err error) bool {
	var te *ThrottlingError
	return errors.As(err, &te)
}
