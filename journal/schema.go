package journal

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	action TEXT NOT NULL,
	price REAL NOT NULL,
	volume REAL NOT NULL,
	instrument TEXT NOT NULL,
	position_id TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT PRIMARY KEY,
	direction TEXT NOT NULL,
	volume REAL NOT NULL,
	instrument TEXT NOT NULL,
	order_id TEXT NOT NULL,
	open_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_price REAL NOT NULL,
	close_time DATETIME NOT NULL,
	profit TEXT NOT NULL,
	spread TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_instrument ON orders(instrument);
CREATE INDEX IF NOT EXISTS idx_positions_close_time ON positions(close_time);
`
