package portfolio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDecision_BuySellSequence(t *testing.T) {
	t.Parallel()

	// Net shares after a sequence equals bought minus sold; a non-positive
	// net removes the position entirely.
	tests := []struct {
		name      string
		decisions []Decision
		wantHeld  bool
		wantNet   float64
	}{
		{
			name: "accumulate",
			decisions: []Decision{
				{Action: "buy", Quantity: 10},
				{Action: "buy", Quantity: 5},
			},
			wantHeld: true,
			wantNet:  15,
		},
		{
			name: "partial_sell",
			decisions: []Decision{
				{Action: "buy", Quantity: 10},
				{Action: "sell", Quantity: 4},
			},
			wantHeld: true,
			wantNet:  6,
		},
		{
			name: "sell_to_zero",
			decisions: []Decision{
				{Action: "buy", Quantity: 10},
				{Action: "sell", Quantity: 10},
			},
			wantHeld: false,
		},
		{
			name: "oversell",
			decisions: []Decision{
				{Action: "buy", Quantity: 10},
				{Action: "sell", Quantity: 25},
			},
			wantHeld: false,
		},
		{
			name: "zero_quantity_buy",
			decisions: []Decision{
				{Action: "buy", Quantity: 0},
			},
			wantHeld: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(1000)
			for _, d := range tt.decisions {
				p.ApplyDecision("AAPL", d, 10)
			}

			pos, held := p.Positions["AAPL"]
			assert.Equal(t, tt.wantHeld, held)
			if tt.wantHeld {
				assert.InDelta(t, tt.wantNet, pos.Shares, 1e-9)
				assert.InDelta(t, tt.wantNet*10, pos.Value, 1e-9)
			}
		})
	}
}

func TestApplyDecision_CashMovement(t *testing.T) {
	t.Parallel()

	p := New(1000)
	p.ApplyDecision("AAPL", Decision{Action: "buy", Quantity: 10}, 150)
	assert.InDelta(t, 1000-10*150.0, p.Cash, 1e-9)

	p.ApplyDecision("AAPL", Decision{Action: "sell", Quantity: 4}, 160)
	assert.InDelta(t, 1000-10*150.0+4*160.0, p.Cash, 1e-9)
}

func TestApplyDecision_CashMayGoNegative(t *testing.T) {
	t.Parallel()

	p := New(100)
	p.ApplyDecision("AAPL", Decision{Action: "buy", Quantity: 10}, 150)
	assert.InDelta(t, -1400.0, p.Cash, 1e-9)
	assert.InDelta(t, 10.0, p.Positions["AAPL"].Shares, 1e-9)
}

func TestApplyDecision_OversellCreditsFullQuantity(t *testing.T) {
	t.Parallel()

	// Selling 100 out of 50 held removes the position and still credits
	// the full 100 shares at the sale price.
	p := New(0)
	p.Positions["AAPL"] = Position{Shares: 50, Value: 7500}

	p.ApplyDecision("AAPL", Decision{Action: "sell", Quantity: 100}, 150)

	_, held := p.Positions["AAPL"]
	assert.False(t, held)
	assert.InDelta(t, 100*150.0, p.Cash, 1e-9)
}

func TestApplyDecision_HoldRefreshesValueOnly(t *testing.T) {
	t.Parallel()

	p := New(500)
	p.Positions["AAPL"] = Position{Shares: 3, Value: 300}

	p.ApplyDecision("AAPL", Decision{Action: "hold", Quantity: 7}, 120)

	pos := p.Positions["AAPL"]
	assert.InDelta(t, 3.0, pos.Shares, 1e-9)
	assert.InDelta(t, 360.0, pos.Value, 1e-9)
	assert.InDelta(t, 500.0, p.Cash, 1e-9)
}

func TestApplyDecision_HoldOnUnheldTickerStoresNothing(t *testing.T) {
	t.Parallel()

	p := New(500)
	p.ApplyDecision("AAPL", Decision{Action: "hold", Quantity: 0}, 120)

	assert.Empty(t, p.Positions)
	assert.InDelta(t, 500.0, p.Cash, 1e-9)
}

func TestApplyDecision_ValueRoundedToCents(t *testing.T) {
	t.Parallel()

	p := New(1000)
	p.ApplyDecision("AAPL", Decision{Action: "buy", Quantity: 3}, 10.333)
	assert.InDelta(t, 31.0, p.Positions["AAPL"].Value, 1e-9)
}

func TestUpdatePrice(t *testing.T) {
	t.Parallel()

	p := New(0)
	p.Positions["AAPL"] = Position{Shares: 4, Value: 0}

	p.UpdatePrice("AAPL", 25.555)
	assert.InDelta(t, 102.22, p.Positions["AAPL"].Value, 1e-9)
	assert.InDelta(t, 4.0, p.Positions["AAPL"].Shares, 1e-9)

	// Idempotent at the same price.
	p.UpdatePrice("AAPL", 25.555)
	assert.InDelta(t, 102.22, p.Positions["AAPL"].Value, 1e-9)

	// No-op for tickers not held.
	p.UpdatePrice("MSFT", 100)
	_, held := p.Positions["MSFT"]
	assert.False(t, held)
}

func TestLoad_MissingFileReturnsFresh(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portfolio.json")
	p, err := Load(path, 50000)
	require.NoError(t, err)
	assert.InDelta(t, 50000.0, p.Cash, 1e-9)
	assert.Empty(t, p.Positions)
}

func TestLoad_MalformedFileIsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path, 50000)
	assert.Error(t, err)
}

func TestLoad_MissingFieldsFallBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"positions": {"AAPL": {"shares": 2, "value": 300}}}`), 0644))

	p, err := Load(path, 50000)
	require.NoError(t, err)
	assert.InDelta(t, 50000.0, p.Cash, 1e-9)
	assert.InDelta(t, 2.0, p.Positions["AAPL"].Shares, 1e-9)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "portfolio.json")

	p := New(12345.67)
	p.ApplyDecision("AAPL", Decision{Action: "buy", Quantity: 10}, 150.25)
	p.ApplyDecision("MSFT", Decision{Action: "buy", Quantity: 3}, 410.10)
	require.NoError(t, p.Save(path))

	got, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSave_OverwritesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.json")

	p := New(100)
	require.NoError(t, p.Save(path))

	p.Cash = 42
	require.NoError(t, p.Save(path))

	got, err := Load(path, 0)
	require.NoError(t, err)
	assert.InDelta(t, 42.0, got.Cash, 1e-9)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "portfolio.json", entries[0].Name())
}

func TestShares(t *testing.T) {
	t.Parallel()

	p := New(0)
	assert.Zero(t, p.Shares("AAPL"))
	p.Positions["AAPL"] = Position{Shares: 7}
	assert.InDelta(t, 7.0, p.Shares("AAPL"), 1e-9)
}

func TestTotalValue(t *testing.T) {
	t.Parallel()

	p := New(100)
	p.Positions["AAPL"] = Position{Shares: 1, Value: 150}
	p.Positions["MSFT"] = Position{Shares: 1, Value: 400}
	assert.InDelta(t, 650.0, p.TotalValue(), 1e-9)
}
