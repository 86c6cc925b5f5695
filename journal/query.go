package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetPass returns a single pass summary by id.
func (j *SQLite) GetPass(passID string) (PassRecord, error) {
	var rec PassRecord

	row := j.db.QueryRow(`
		SELECT pass_id, start_time, end_time, tickers, applied, skipped, cash_after
		FROM passes
		WHERE pass_id = ?`, passID)

	err := row.Scan(
		&rec.PassID,
		&rec.Start,
		&rec.End,
		&rec.Tickers,
		&rec.Applied,
		&rec.Skipped,
		&rec.CashAfter,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return PassRecord{}, fmt.Errorf("pass %q not found", passID)
		}
		return PassRecord{}, err
	}
	return rec, nil
}

// ListDecisionsByPass returns the decisions applied during one pass, in
// application order.
func (j *SQLite) ListDecisionsByPass(passID string) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT pass_id, ticker, action, quantity, price, cash_after, time
		FROM decisions
		WHERE pass_id = ?
		ORDER BY time ASC`, passID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// ListDecisionsBetween returns decisions applied within [start, end).
func (j *SQLite) ListDecisionsBetween(start, end time.Time) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT pass_id, ticker, action, quantity, price, cash_after, time
		FROM decisions
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]DecisionRecord, error) {
	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		if err := rows.Scan(
			&rec.PassID,
			&rec.Ticker,
			&rec.Action,
			&rec.Quantity,
			&rec.Price,
			&rec.CashAfter,
			&rec.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
