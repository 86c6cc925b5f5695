package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists the journal to a local SQLite database.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(pass_id, ticker, action, quantity, price, cash_after, time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.PassID, d.Ticker, d.Action, d.Quantity, d.Price, d.CashAfter, d.Time,
	)
	return err
}

func (j *SQLite) RecordPass(p PassRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO passes
		(pass_id, start_time, end_time, tickers, applied, skipped, cash_after)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PassID, p.Start, p.End, p.Tickers, p.Applied, p.Skipped, p.CashAfter,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
