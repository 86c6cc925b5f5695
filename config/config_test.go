package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/analyst/portfolio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "analyst.yaml", `
tickers:
  - AAPL
  - MSFT
run_times: "09:30,15:30"
backend_url: http://localhost:9000
total_cash: 50000
portfolio_path: ledger.json
polling:
  interval: 10s
  max_wait: 2h
journal:
  type: sqlite
  db_path: ./analyst.sqlite
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	tickers, err := cfg.Tickers.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
	assert.Equal(t, "09:30,15:30", cfg.RunTimes)
	assert.Equal(t, "http://localhost:9000", cfg.BackendURL)
	require.NotNil(t, cfg.TotalCash)
	assert.InDelta(t, 50000.0, *cfg.TotalCash, 1e-9)
	assert.Equal(t, "ledger.json", cfg.Portfolio)
	assert.Equal(t, 10*time.Second, Duration(cfg.Polling.Interval, 0))
	assert.Equal(t, 2*time.Hour, Duration(cfg.Polling.MaxWait, 0))
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := writeFile(t, "analyst.json", `{
		"tickers": "AAPL, MSFT",
		"run_times": "09:30",
		"backend_url": "http://localhost:8000",
		"total_cash": 100000,
		"portfolio": {"cash": 25000, "positions": {"AAPL": {"shares": 5, "value": 750}}}
	}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	tickers, err := cfg.Tickers.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)

	require.NotNil(t, cfg.Seed)
	require.NotNil(t, cfg.Seed.Cash)
	assert.InDelta(t, 25000.0, *cfg.Seed.Cash, 1e-9)
	assert.InDelta(t, 5.0, cfg.Seed.Positions["AAPL"].Shares, 1e-9)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad_run_times", `{"run_times": "not-a-time"}`},
		{"negative_cash", `{"total_cash": -1}`},
		{"bad_duration", `{"polling": {"interval": "soon"}}`},
		{"bad_journal_type", `{"journal": {"type": "parquet"}}`},
		{"sqlite_without_path", `{"journal": {"type": "sqlite"}}`},
		{"seed_zero_shares", `{"portfolio": {"positions": {"AAPL": {"shares": 0}}}}`},
		{"not_parseable", `{{{`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.json", tt.content)
			_, err := LoadFromFile(path)
			assert.Error(t, err)
		})
	}
}

func TestResolveTickers(t *testing.T) {
	t.Run("inline_commas", func(t *testing.T) {
		got, err := ResolveTickers(" AAPL, MSFT ,,GOOG ")
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, got)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "tickers.txt", "AAPL\n\n  MSFT  \nGOOG\n")
		got, err := ResolveTickers(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT", "GOOG"}, got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := ResolveTickers("  ")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestTickerList_SingleStringElement(t *testing.T) {
	list := TickerList{"AAPL,MSFT"}
	got, err := list.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	for _, ext := range []string{"yaml", "json"} {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "analyst."+ext)
			require.NoError(t, Default().SaveToFile(path))

			cfg, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, Default().RunTimes, cfg.RunTimes)
			assert.Equal(t, Default().BackendURL, cfg.BackendURL)
		})
	}
}

func TestLoadFromFile_ExplicitZeroCashKept(t *testing.T) {
	path := writeFile(t, "analyst.json", `{"total_cash": 0}`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.TotalCash)
	assert.Zero(t, *cfg.TotalCash)
}

func TestLoadLedger(t *testing.T) {
	seedCash := 25000.0

	t.Run("seed_used_when_file_absent", func(t *testing.T) {
		cfg := &Config{Seed: &SeedConfig{
			Cash:      &seedCash,
			Positions: map[string]portfolio.Position{"AAPL": {Shares: 5, Value: 750}},
		}}

		p, err := cfg.LoadLedger(filepath.Join(t.TempDir(), "ledger.json"), 100000)
		require.NoError(t, err)
		assert.InDelta(t, 25000.0, p.Cash, 1e-9)
		assert.InDelta(t, 5.0, p.Shares("AAPL"), 1e-9)
	})

	t.Run("seed_ignored_when_file_present", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"cash": 42, "positions": {}}`), 0644))

		cfg := &Config{Seed: &SeedConfig{Cash: &seedCash}}
		p, err := cfg.LoadLedger(path, 100000)
		require.NoError(t, err)
		assert.InDelta(t, 42.0, p.Cash, 1e-9)
		assert.Empty(t, p.Positions)
	})

	t.Run("seed_without_cash_falls_back", func(t *testing.T) {
		cfg := &Config{Seed: &SeedConfig{
			Positions: map[string]portfolio.Position{"AAPL": {Shares: 5, Value: 750}},
		}}

		p, err := cfg.LoadLedger(filepath.Join(t.TempDir(), "ledger.json"), 100000)
		require.NoError(t, err)
		assert.InDelta(t, 100000.0, p.Cash, 1e-9)
		assert.InDelta(t, 5.0, p.Shares("AAPL"), 1e-9)
	})

	t.Run("no_seed_missing_file_is_fresh", func(t *testing.T) {
		cfg := &Config{}
		p, err := cfg.LoadLedger(filepath.Join(t.TempDir(), "ledger.json"), 100000)
		require.NoError(t, err)
		assert.InDelta(t, 100000.0, p.Cash, 1e-9)
		assert.Empty(t, p.Positions)
	})

	t.Run("malformed_file_is_error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ledger.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		cfg := &Config{}
		_, err := cfg.LoadLedger(path, 100000)
		assert.Error(t, err)
	})
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, Duration("", 5*time.Second))
	assert.Equal(t, time.Minute, Duration("1m", 5*time.Second))
	assert.Equal(t, 5*time.Second, Duration("junk", 5*time.Second))
}
