package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends journal records to two flat files, one for decisions and
// one for pass summaries.
type CSV struct {
	decisions *csv.Writer
	passes    *csv.Writer
	df, pf    *os.File
}

func NewCSV(decisionsPath, passesPath string) (*CSV, error) {
	df, err := os.Create(decisionsPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(passesPath)
	if err != nil {
		df.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	pw := csv.NewWriter(pf)

	if err := dw.Write([]string{"pass_id", "ticker", "action", "quantity", "price", "cash_after", "time"}); err != nil {
		return nil, err
	}
	if err := pw.Write([]string{"pass_id", "start_time", "end_time", "tickers", "applied", "skipped", "cash_after"}); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	pw.Flush()
	if err := pw.Error(); err != nil {
		return nil, err
	}

	return &CSV{dw, pw, df, pf}, nil
}

func (j *CSV) RecordDecision(d DecisionRecord) error {
	err := j.decisions.Write([]string{
		d.PassID,
		d.Ticker,
		d.Action,
		strconv.Itoa(d.Quantity),
		f(d.Price),
		f(d.CashAfter),
		d.Time.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSV) RecordPass(p PassRecord) error {
	err := j.passes.Write([]string{
		p.PassID,
		p.Start.Format(time.RFC3339),
		p.End.Format(time.RFC3339),
		strconv.Itoa(p.Tickers),
		strconv.Itoa(p.Applied),
		strconv.Itoa(p.Skipped),
		f(p.CashAfter),
	})
	if err != nil {
		return err
	}
	j.passes.Flush()
	return j.passes.Error()
}

func (j *CSV) Close() error {
	j.decisions.Flush()
	if err := j.decisions.Error(); err != nil {
		return err
	}
	j.passes.Flush()
	if err := j.passes.Error(); err != nil {
		return err
	}

	if err := j.df.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
