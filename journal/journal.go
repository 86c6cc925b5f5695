// Package journal records what each scheduled pass did: every applied
// decision and a per-pass summary. The portfolio file only keeps the
// current state; the journal is the history.
package journal

import (
	"time"
)

// DecisionRecord is one applied decision within a pass.
type DecisionRecord struct {
	PassID    string
	Ticker    string
	Action    string
	Quantity  int
	Price     float64
	CashAfter float64
	Time      time.Time
}

// PassRecord summarizes one full pass over the ticker list.
type PassRecord struct {
	PassID    string
	Start     time.Time
	End       time.Time
	Tickers   int
	Applied   int
	Skipped   int
	CashAfter float64
}

type Journal interface {
	RecordDecision(DecisionRecord) error
	RecordPass(PassRecord) error
	Close() error
}

// Nop discards all records. Used when journaling is not configured.
type Nop struct{}

func (Nop) RecordDecision(DecisionRecord) error { return nil }
func (Nop) RecordPass(PassRecord) error         { return nil }
func (Nop) Close() error                        { return nil }
