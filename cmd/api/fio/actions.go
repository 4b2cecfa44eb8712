package fio

import (
	"fmt"
	"net/url"
	"time"
)

const (
	DefaultBaseURL = "https://fioapi.fio.cz/v1/rest/"

	dateLayout = "2006-01-02"
)

type action string

const (
	periods     action = "periods"
	byID        action = "by-id"
	last        action = "last"
	setLastID   action = "set-last-id"
	setLastDate action = "set-last-date"
)

func periodsPath(token string, from, to time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s/transactions.json", periods, esc(token), from.Format(dateLayout), to.Format(dateLayout))
}

func byIDPath(token string, year, number int) string {
	return fmt.Sprintf("%s/%s/%d/%d/transactions.json", byID, esc(token), year, number)
}

func lastPath(token string) string {
	return fmt.Sprintf("%s/%s/transactions.json", last, esc(token))
}

func setLastIDPath(token, id string) string {
	return fmt.Sprintf("%s/%s/%s/", setLastID, esc(token), esc(id))
}

func setLastDatePath(token string, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s/", setLastDate, esc(token), date.Format(dateLayout))
}

func esc(s string) string {
	return url.PathEscape(s)
}
