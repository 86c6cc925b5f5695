// Package portfolio holds the locally persisted ledger of cash and open
// positions that scheduled analysis passes mutate. It is pure bookkeeping:
// shares times price, no margin or funds checks.
package portfolio

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Position is a single holding: a share count and its cached
// mark-to-market value as of the last observed price.
type Position struct {
	Shares float64 `json:"shares"`
	Value  float64 `json:"value"`
}

// Portfolio tracks cash and per-ticker positions. Cash may go negative:
// buys are never rejected for insufficient funds. A stored position always
// has Shares > 0; anything that would leave shares at or below zero
// removes the entry instead.
type Portfolio struct {
	Cash      float64             `json:"cash"`
	Positions map[string]Position `json:"positions"`
}

// New returns an empty portfolio with the given starting cash.
func New(cash float64) *Portfolio {
	return &Portfolio{Cash: cash, Positions: map[string]Position{}}
}

// Load reads a previously saved portfolio from path. A missing file is not
// an error: it returns a fresh portfolio with defaultCash. A file that
// exists but does not parse is an error the caller should treat as fatal.
func Load(path string, defaultCash float64) (*Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(defaultCash), nil
		}
		return nil, fmt.Errorf("read portfolio file: %w", err)
	}

	var raw struct {
		Cash      *float64            `json:"cash"`
		Positions map[string]Position `json:"positions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse portfolio file %s: %w", path, err)
	}

	p := New(defaultCash)
	if raw.Cash != nil {
		p.Cash = *raw.Cash
	}
	if raw.Positions != nil {
		p.Positions = raw.Positions
	}
	return p, nil
}

// Save writes the portfolio as indented JSON. It writes to a temp file in
// the target directory and renames it into place so a crash mid-write
// never leaves a corrupt ledger behind.
func (p *Portfolio) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp portfolio file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write portfolio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close portfolio file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace portfolio file: %w", err)
	}
	return nil
}

// Shares returns the held share count for ticker, 0 if not held.
func (p *Portfolio) Shares(ticker string) float64 {
	return p.Positions[ticker].Shares
}

// ApplyDecision folds one analysis decision into the ledger at the given
// price. Buys debit cash by quantity*price with no funds check; sells
// credit the full quantity*price even when overselling, and a position
// whose shares end at or below zero is deleted rather than kept at zero.
// Any other action leaves shares and cash alone but still refreshes the
// position's cached value if the ticker is held.
func (p *Portfolio) ApplyDecision(ticker string, d Decision, price float64) {
	shares := p.Positions[ticker].Shares

	switch d.Action {
	case ActionBuy:
		shares += float64(d.Quantity)
		p.Cash -= float64(d.Quantity) * price
	case ActionSell:
		shares -= float64(d.Quantity)
		p.Cash += float64(d.Quantity) * price
	}

	if shares <= 0 {
		delete(p.Positions, ticker)
		return
	}
	p.Positions[ticker] = Position{
		Shares: shares,
		Value:  round2(shares * price),
	}
}

// UpdatePrice recomputes the cached value of ticker at price. No-op if
// the ticker is not held.
func (p *Portfolio) UpdatePrice(ticker string, price float64) {
	pos, ok := p.Positions[ticker]
	if !ok {
		return
	}
	pos.Value = round2(pos.Shares * price)
	p.Positions[ticker] = pos
}

// TotalValue returns cash plus the cached value of every position.
func (p *Portfolio) TotalValue() float64 {
	total := p.Cash
	for _, pos := range p.Positions {
		total += pos.Value
	}
	return total
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
