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
		Name:    "create conversations and participants",
		SQL: `
			CREATE TABLE conversations (
				id                 TEXT PRIMARY KEY,
				last_speaker_id    TEXT NOT NULL DEFAULT '',
				last_speaker_name  TEXT NOT NULL DEFAULT '',
				created_at         TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at         TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE TABLE participants (
				conversation_id  TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
				participant_id   TEXT NOT NULL,
				name             TEXT NOT NULL,
				updated_at       TEXT NOT NULL DEFAULT (datetime('now')),
				PRIMARY KEY (conversation_id, participant_id)
			);

			CREATE INDEX idx_participants_conversation ON participants (conversation_id);
		`,
	},
}
