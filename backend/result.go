package backend

import (
	"encoding/json"

	"github.com/rustyeddy/analyst/portfolio"
)

// Result is the payload of a finished analysis job. The backend is loose
// about final_decision: it may be a JSON object, a string containing
// encoded JSON, null, or missing entirely.
type Result struct {
	FinalDecision json.RawMessage `json:"final_decision"`
}

// Decision normalizes the final_decision field into a structured
// decision. ok is false when there is no usable decision: the field is
// absent, null, unparseable, or not an object in either form. That is
// never an error; the caller just leaves the ledger's shares and cash
// alone.
func (r *Result) Decision() (portfolio.Decision, bool) {
	raw := r.FinalDecision
	if len(raw) == 0 || string(raw) == "null" {
		return portfolio.Decision{}, false
	}

	// String form carries a second layer of encoding.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = []byte(s)
	}

	var d portfolio.Decision
	if err := json.Unmarshal(raw, &d); err != nil {
		return portfolio.Decision{}, false
	}
	if d.Action == "" {
		return portfolio.Decision{}, false
	}
	return d, true
}
