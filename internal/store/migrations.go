package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create command history",
		SQL: `
			CREATE TABLE history (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				line        TEXT NOT NULL,
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_history_created ON history (created_at);
		`,
	},
	{
		Version: 2,
		Name:    "create plugin events",
		SQL: `
			CREATE TABLE plugin_events (
				id          TEXT PRIMARY KEY,
				seq         INTEGER NOT NULL,
				event       TEXT NOT NULL,
				plugin      TEXT NOT NULL,
				path        TEXT NOT NULL DEFAULT '',
				origin      TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL
			);

			CREATE INDEX idx_plugin_events_seq ON plugin_events (seq);
			CREATE INDEX idx_plugin_events_plugin ON plugin_events (plugin);
		`,
	},
}
