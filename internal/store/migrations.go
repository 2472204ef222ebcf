package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS accounts (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	address             TEXT NOT NULL UNIQUE COLLATE NOCASE,
	display_name        TEXT NOT NULL DEFAULT '',
	incoming            TEXT NOT NULL DEFAULT '{}',
	outgoing            TEXT NOT NULL DEFAULT '{}',
	retrieval_mode      INTEGER NOT NULL DEFAULT 0,
	outgoing_size_limit INTEGER NOT NULL DEFAULT 0,
	provider_id         TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE accounts ADD COLUMN notify_enabled INTEGER NOT NULL DEFAULT 1;
ALTER TABLE accounts ADD COLUMN notify_vibrate INTEGER NOT NULL DEFAULT 1;
ALTER TABLE accounts ADD COLUMN notify_ringtone TEXT NOT NULL DEFAULT 'default';
ALTER TABLE accounts ADD COLUMN notify_badge INTEGER NOT NULL DEFAULT 1;
ALTER TABLE accounts ADD COLUMN signature_enabled INTEGER NOT NULL DEFAULT 1;
ALTER TABLE accounts ADD COLUMN signature_text TEXT NOT NULL DEFAULT '';

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
