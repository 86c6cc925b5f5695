// Package config loads the scheduler configuration from a YAML or JSON
// file, with defaults and validation. Values set on the command line
// still win field by field, see cmd/analyst.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/analyst/portfolio"
	"github.com/rustyeddy/analyst/schedule"
	"gopkg.in/yaml.v3"
)

// Config is the complete scheduler configuration.
type Config struct {
	Tickers    TickerList  `json:"tickers,omitempty" yaml:"tickers,omitempty"`
	RunTimes   string      `json:"run_times,omitempty" yaml:"run_times,omitempty"`
	BackendURL string      `json:"backend_url,omitempty" yaml:"backend_url,omitempty"`
	// TotalCash is a pointer so an explicit 0 in the file is not
	// mistaken for an absent field.
	TotalCash *float64 `json:"total_cash,omitempty" yaml:"total_cash,omitempty"`
	Portfolio  string      `json:"portfolio_path,omitempty" yaml:"portfolio_path,omitempty"`
	Polling    Polling     `json:"polling,omitempty" yaml:"polling,omitempty"`
	Journal    Journal     `json:"journal,omitempty" yaml:"journal,omitempty"`
	Seed       *SeedConfig `json:"portfolio,omitempty" yaml:"portfolio,omitempty"`
}

// Polling controls the pacing of the scheduler's two wait loops.
type Polling struct {
	// Interval between job status checks.
	Interval string `json:"interval,omitempty" yaml:"interval,omitempty"`
	// MaxWait caps a single job's poll loop; empty or "0s" waits forever.
	MaxWait string `json:"max_wait,omitempty" yaml:"max_wait,omitempty"`
	// Tick is the wall-clock cadence of the scheduler's main loop.
	Tick string `json:"tick,omitempty" yaml:"tick,omitempty"`
}

// Journal selects where pass history goes: "none", "sqlite" or "csv".
type Journal struct {
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	PassesFile    string `json:"passes_file,omitempty" yaml:"passes_file,omitempty"`
}

// SeedConfig is an initial ledger embedded in the config file. It is
// only used when the portfolio file does not exist yet.
type SeedConfig struct {
	Cash      *float64                      `json:"cash,omitempty" yaml:"cash,omitempty"`
	Positions map[string]portfolio.Position `json:"positions,omitempty" yaml:"positions,omitempty"`
}

// TickerList accepts either a list of tickers or a single string holding
// an inline comma-separated list or a file path (see ResolveTickers).
type TickerList []string

func (t *TickerList) UnmarshalYAML(value *yaml.Node) error {
	var list []string
	if err := value.Decode(&list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("tickers must be a list or a string")
	}
	*t = TickerList{s}
	return nil
}

func (t *TickerList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tickers must be a list or a string")
	}
	*t = TickerList{s}
	return nil
}

// Resolve expands the list into clean ticker symbols. A single-element
// list is treated like a CLI --tickers value: a file path (one ticker
// per line) or an inline comma-separated list.
func (t TickerList) Resolve() ([]string, error) {
	if len(t) == 1 {
		return ResolveTickers(t[0])
	}
	var out []string
	for _, item := range t {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// ResolveTickers turns a --tickers value into a list of symbols. If the
// value names an existing file, it is read one ticker per line;
// otherwise it is split on commas.
func ResolveTickers(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if info, err := os.Stat(value); err == nil && !info.IsDir() {
		data, err := os.ReadFile(value)
		if err != nil {
			return nil, fmt.Errorf("read tickers file: %w", err)
		}
		var out []string
		for _, line := range strings.Split(string(data), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out, nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON). A .env
// file in the working directory is loaded first so ${VAR} style
// expansion in the shell and env-driven defaults behave the same in dev
// and deployed setups.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks everything that can be checked without the CLI layer.
// Tickers and run times may legitimately be absent here because the
// command line can supply them; cmd/analyst enforces their presence
// after merging.
func (c *Config) Validate() error {
	if c.RunTimes != "" {
		if _, err := schedule.ParseMarks(c.RunTimes); err != nil {
			return fmt.Errorf("run_times: %w", err)
		}
	}
	if c.TotalCash != nil && *c.TotalCash < 0 {
		return fmt.Errorf("total_cash must not be negative")
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"polling.interval", c.Polling.Interval},
		{"polling.max_wait", c.Polling.MaxWait},
		{"polling.tick", c.Polling.Tick},
	} {
		if field.value == "" {
			continue
		}
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	switch c.Journal.Type {
	case "", "none", "sqlite", "csv":
	default:
		return fmt.Errorf("journal.type must be 'none', 'sqlite' or 'csv'")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite journal")
	}
	if c.Journal.Type == "csv" && (c.Journal.DecisionsFile == "" || c.Journal.PassesFile == "") {
		return fmt.Errorf("journal decisions_file and passes_file required for csv journal")
	}
	if c.Seed != nil {
		for ticker, pos := range c.Seed.Positions {
			if pos.Shares <= 0 {
				return fmt.Errorf("portfolio seed position %s must have positive shares", ticker)
			}
		}
	}
	return nil
}

// LoadLedger loads the persisted portfolio from path. When the config
// carries an embedded seed and no portfolio file exists yet, the seed
// is used instead; an existing file always wins over the seed.
func (c *Config) LoadLedger(path string, defaultCash float64) (*portfolio.Portfolio, error) {
	if c.Seed != nil {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			p := portfolio.New(defaultCash)
			if c.Seed.Cash != nil {
				p.Cash = *c.Seed.Cash
			}
			for ticker, pos := range c.Seed.Positions {
				p.Positions[ticker] = pos
			}
			return p, nil
		}
	}

	p, err := portfolio.Load(path, defaultCash)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	return p, nil
}

// Duration returns the parsed value of a polling field, or fallback when
// the field is empty. Validate has already rejected unparseable values.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	cash := 100000.0
	return &Config{
		Tickers:    TickerList{"AAPL", "MSFT"},
		RunTimes:   "09:30,15:30",
		BackendURL: "http://localhost:8000",
		TotalCash:  &cash,
		Portfolio:  "portfolio.json",
		Polling: Polling{
			Interval: "5s",
			Tick:     "30s",
		},
		Journal: Journal{
			Type:   "sqlite",
			DBPath: "./analyst.sqlite",
		},
	}
}
