package portfolio

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Actions the ledger reacts to. Anything else (hold, unknown, absent)
// only refreshes the cached value of a held position.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Decision is one analysis verdict for a single ticker: what to do and
// how many shares. Quantity is always a non-negative whole number.
type Decision struct {
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
}

// UnmarshalJSON tolerates the loose payloads the analysis backend emits:
// quantity may arrive as a JSON number (fractions are truncated) or as a
// numeric string. Negative quantities are clamped to 0 so a bad payload
// cannot turn a buy into a sell.
func (d *Decision) UnmarshalJSON(data []byte) error {
	var raw struct {
		Action   string          `json:"action"`
		Quantity json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Action = strings.ToLower(strings.TrimSpace(raw.Action))
	d.Quantity = parseQuantity(raw.Quantity)
	return nil
}

func parseQuantity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampQty(int(f))
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return clampQty(int(f))
		}
	}
	return 0
}

func clampQty(q int) int {
	if q < 0 {
		return 0
	}
	return q
}
