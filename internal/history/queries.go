package history

// SQL query constants. All SQL lives here; the SQLite and Postgres stores
// reference these constants.

// SQLite queries.
const (
	querySQLiteSchema = `
		CREATE TABLE IF NOT EXISTS sent_listings (
			url     TEXT PRIMARY KEY,
			sent_at TEXT NOT NULL
		)`

	querySQLiteLoad = `SELECT url FROM sent_listings ORDER BY rowid`

	querySQLiteInsert = `INSERT INTO sent_listings (url, sent_at) VALUES (?, ?)`
)

// Postgres queries.
const (
	queryPostgresLoad = `SELECT url FROM sent_listings ORDER BY id`

	queryPostgresInsert = `INSERT INTO sent_listings (url) VALUES ($1)`

	queryPostgresCount = `SELECT count(*) FROM sent_listings`
)

// Postgres migration bookkeeping. The sent_listings DDL itself lives in
// migrations/.
const (
	queryPostgresMigrationsTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	queryPostgresMigrationApplied = `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`

	queryPostgresRecordMigration = `INSERT INTO schema_migrations (version) VALUES ($1)`

	queryPostgresMigrationCount = `SELECT count(*) FROM schema_migrations`
)
