package cmd

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/analyst/portfolio"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Show the current portfolio ledger",
	Long: `Print the cash balance and positions from the portfolio file.

Example:
  analyst portfolio --file portfolio.json`,
	RunE: runPortfolio,
}

var portfolioFile string

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.Flags().StringVarP(&portfolioFile, "file", "f", "portfolio.json", "path to portfolio file")
}

func runPortfolio(cmd *cobra.Command, args []string) error {
	p, err := portfolio.Load(portfolioFile, 0)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	fmt.Printf("Cash: %.2f\n", p.Cash)
	if len(p.Positions) == 0 {
		fmt.Println("No positions.")
		return nil
	}

	tickers := make([]string, 0, len(p.Positions))
	for t := range p.Positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	fmt.Println("Positions:")
	for _, t := range tickers {
		pos := p.Positions[t]
		fmt.Printf("  %-6s %10.2f shares  value %12.2f\n", t, pos.Shares, pos.Value)
	}
	fmt.Printf("Total value: %.2f\n", p.TotalValue())
	return nil
}
