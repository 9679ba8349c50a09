package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxStatus represents the settlement state of a ledger row.
type TxStatus string

const (
	StatusSettled  TxStatus = "settled"
	StatusPending  TxStatus = "pending"
	StatusDeclined TxStatus = "declined"
	StatusReversed TxStatus = "reversed"
)

// Transaction is a single parsed ledger row. Immutable once ingested.
type Transaction struct {
	UserID       string
	Timestamp    time.Time
	ActivityType string
	Side         string
	Amount       decimal.Decimal // non-negative magnitude in the reporting currency
	Status       TxStatus
	Currency     string
	Seq          int // 1-based ingestion order, tie-break for identical timestamps
}

// Settled reports whether the row participates in balance and metric computation.
func (t Transaction) Settled() bool { return t.Status == StatusSettled }

// Month returns the calendar month the transaction falls in.
func (t Transaction) Month() Month { return MonthOf(t.Timestamp) }
