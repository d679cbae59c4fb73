package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/voxhall/tavus-relay/internal/roster"
)

// SQLiteRosterStore implements roster.Store backed by SQLite, so the
// conversation state survives restarts.
type SQLiteRosterStore struct {
	db *DB

	// Serializes read-modify-write cycles in Update. SQLite transactions
	// alone would make concurrent updaters fail with SQLITE_BUSY instead
	// of queueing.
	mu sync.Mutex
}

// NewSQLiteRosterStore creates a roster store using the given database.
func NewSQLiteRosterStore(db *DB) *SQLiteRosterStore {
	return &SQLiteRosterStore{db: db}
}

// Get returns the entry for a conversation, or false if it has never been seen.
func (s *SQLiteRosterStore) Get(conversationID string) (roster.Entry, bool) {
	return s.load(conversationID)
}

// Update applies fn to the conversation's entry and persists the result.
// The entry is created on first use.
func (s *SQLiteRosterStore) Update(conversationID string, fn func(*roster.Entry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.load(conversationID)
	if !ok {
		entry = roster.Entry{Participants: map[string]string{}}
	}
	fn(&entry)
	return s.save(conversationID, entry)
}

// Conversations returns the IDs of all known conversations.
func (s *SQLiteRosterStore) Conversations() []string {
	rows, err := s.db.sql.Query(`SELECT id FROM conversations ORDER BY created_at, id`)
	if err != nil {
		s.db.log.Error().Err(err).Msg("failed to list conversations")
		return nil
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (s *SQLiteRosterStore) load(conversationID string) (roster.Entry, bool) {
	entry := roster.Entry{Participants: map[string]string{}}

	err := s.db.sql.QueryRow(
		`SELECT last_speaker_id, last_speaker_name FROM conversations WHERE id = ?`,
		conversationID,
	).Scan(&entry.LastSpeakerID, &entry.LastSpeakerName)
	if err == sql.ErrNoRows {
		return entry, false
	}
	if err != nil {
		s.db.log.Error().Err(err).Str("conversation", conversationID).Msg("failed to load conversation")
		return entry, false
	}

	rows, err := s.db.sql.Query(
		`SELECT participant_id, name FROM participants WHERE conversation_id = ?`,
		conversationID,
	)
	if err != nil {
		s.db.log.Error().Err(err).Str("conversation", conversationID).Msg("failed to load participants")
		return entry, true
	}
	defer rows.Close()

	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			continue
		}
		entry.Participants[id] = name
	}
	return entry, true
}

func (s *SQLiteRosterStore) save(conversationID string, entry roster.Entry) error {
	tx, err := s.db.sql.Begin()
	if err != nil {
		return err
	}

	now := time.Now().Format(time.DateTime)
	if _, err := tx.Exec(
		`INSERT INTO conversations (id, last_speaker_id, last_speaker_name, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			last_speaker_id = excluded.last_speaker_id,
			last_speaker_name = excluded.last_speaker_name,
			updated_at = excluded.updated_at`,
		conversationID, entry.LastSpeakerID, entry.LastSpeakerName, now,
	); err != nil {
		tx.Rollback()
		return err
	}

	for id, name := range entry.Participants {
		if _, err := tx.Exec(
			`INSERT INTO participants (conversation_id, participant_id, name, updated_at)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT(conversation_id, participant_id) DO UPDATE SET
				name = excluded.name,
				updated_at = excluded.updated_at`,
			conversationID, id, name, now,
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
