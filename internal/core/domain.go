package core

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the canonical transaction date format.
const DateLayout = "2006-01-02"

// MonthLayout is the canonical budget month format.
const MonthLayout = "2006-01"

type (
	// Transaction is a single ledger entry as read from the store.
	// Once materialized into a snapshot it is treated as immutable.
	Transaction struct {
		ID       int64   `json:"id"`
		UserID   int64   `json:"user_id"`
		Date     string  `json:"date"` // YYYY-MM-DD
		Category string  `json:"category"`
		Amount   float64 `json:"amount"`
	}

	// Budget is the spending limit a user set for one calendar month.
	// One row per (user, month); setting it again replaces the value.
	Budget struct {
		UserID int64   `json:"user_id"`
		Month  string  `json:"month"` // YYYY-MM
		Amount float64 `json:"amount"`
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidUserID = errors.New("invalid user id")
)

// ValidDate reports whether s is a well-formed YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// ValidMonth reports whether s is a well-formed YYYY-MM month.
func ValidMonth(s string) bool {
	_, err := time.Parse(MonthLayout, s)
	return err == nil
}

// MonthOf returns the YYYY-MM prefix of a transaction date. The second
// return value is false when the date is malformed; callers use it as the
// validity predicate that keeps broken records out of aggregates.
func MonthOf(date string) (string, bool) {
	if !ValidDate(date) {
		return "", false
	}
	return date[:7], true
}

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrInvalidUserID
	}
	if !ValidDate(t.Date) {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrInvalidUserID
	}
	if !ValidMonth(b.Month) {
		return ErrInvalidMonth
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}
