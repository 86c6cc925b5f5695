package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/analyst/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the pass/decision journal",
	Long: `Query and display scheduler history from the SQLite journal.

Subcommands:
  pass   - Show one pass and its decisions by pass id
  today  - List decisions applied today
  day    - List decisions applied on a specific day

Examples:
  analyst journal pass <pass-id>
  analyst journal today
  analyst journal day 2026-08-31`,
}

var journalPassCmd = &cobra.Command{
	Use:   "pass <pass-id>",
	Short: "Show one pass and its decisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalPass,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List decisions applied today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List decisions applied on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalPassCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./analyst.sqlite", "path to SQLite journal DB")
}

func runJournalPass(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	passID := args[0]
	pass, err := j.GetPass(passID)
	if err != nil {
		return fmt.Errorf("get pass: %w", err)
	}

	fmt.Printf("Pass %s\n", pass.PassID)
	fmt.Printf("  Ran: %s -> %s\n", pass.Start.Format(time.RFC3339), pass.End.Format(time.RFC3339))
	fmt.Printf("  Tickers: %d  Applied: %d  Skipped: %d\n", pass.Tickers, pass.Applied, pass.Skipped)
	fmt.Printf("  Cash after: %.2f\n", pass.CashAfter)

	recs, err := j.ListDecisionsByPass(passID)
	if err != nil {
		return fmt.Errorf("query decisions: %w", err)
	}
	printDecisions(recs)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	return journalForDay(time.Now().Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return journalForDay(args[0])
}

func journalForDay(day string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListDecisionsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query decisions: %w", err)
	}
	printDecisions(recs)
	return nil
}

func printDecisions(recs []journal.DecisionRecord) {
	if len(recs) == 0 {
		fmt.Println("No decisions.")
		return
	}
	for _, rec := range recs {
		fmt.Printf("%s  %-6s %-4s %6d @ %.2f  cash %.2f  (pass %s)\n",
			rec.Time.Format("15:04:05"), rec.Ticker, rec.Action, rec.Quantity,
			rec.Price, rec.CashAfter, rec.PassID)
	}
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
