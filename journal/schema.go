package journal

const schema = `
CREATE TABLE IF NOT EXISTS passes (
	pass_id TEXT PRIMARY KEY,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	tickers INTEGER NOT NULL,
	applied INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	cash_after REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	pass_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	action TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	cash_after REAL NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_pass ON decisions(pass_id);
CREATE INDEX IF NOT EXISTS idx_decisions_time ON decisions(time);
`
