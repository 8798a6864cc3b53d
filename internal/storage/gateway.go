package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Namespace prefixes every key so the table can be shared with other tools
const Namespace = "leitbox"

// SchemaVersion is baked into every key. Bumping it makes old payloads
// invisible rather than unreadable: Load on the new key finds nothing and
// degrades to an empty result.
const SchemaVersion = "1"

// Data kinds stored under independent keys. No cross-kind transactionality
// is provided.
const (
	KindCards        = "cards"
	KindProgress     = "progress"
	KindAchievements = "achievements"
)

// Metadata travels with every persisted payload
type Metadata struct {
	Version   string `json:"version"`
	LastSaved string `json:"lastSaved"`
	LessonID  string `json:"lessonId"`
}

// Envelope is the persisted record shape
type Envelope struct {
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
}

// Key builds the namespaced storage key for one lesson and data kind
func Key(lessonID, kind string) string {
	return fmt.Sprintf("%s-%s-%s-v%s", Namespace, lessonID, kind, SchemaVersion)
}

// Save wraps data in an envelope and upserts it under the given key
func (s *Store) Save(lessonID, kind string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %v", err)
	}
	env := Envelope{
		Data: raw,
		Metadata: Metadata{
			Version:   SchemaVersion,
			LastSaved: time.Now().Format(time.RFC3339),
			LessonID:  lessonID,
		},
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %v", err)
	}

	var query string
	if s.dbType == "postgres" {
		query = `
			INSERT INTO kv_store (key, payload, updated_at) VALUES ($1, $2, NOW())
			ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
		`
	} else {
		query = `
			INSERT INTO kv_store (key, payload, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
			ON CONFLICT (key) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP
		`
	}
	if _, err := s.db.Exec(query, Key(lessonID, kind), string(payload)); err != nil {
		return fmt.Errorf("failed to save %s: %v", Key(lessonID, kind), err)
	}
	return nil
}

// Load reads the payload stored for a lesson and kind into out. The boolean
// reports whether usable data was found: a missing key, a corrupt envelope or
// a payload that no longer matches the expected shape all come back as
// (false, nil) — corruption is treated as absence, never as a fatal error.
func (s *Store) Load(lessonID, kind string, out interface{}) (bool, error) {
	var payload string
	err := s.db.Get(&payload, "SELECT payload FROM kv_store WHERE key = $1", Key(lessonID, kind))
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %v", Key(lessonID, kind), err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return false, nil
	}
	if env.Data == nil {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, nil
	}
	return true, nil
}

// LoadMetadata reads only the envelope metadata for a key
func (s *Store) LoadMetadata(lessonID, kind string) (*Metadata, bool) {
	var payload string
	err := s.db.Get(&payload, "SELECT payload FROM kv_store WHERE key = $1", Key(lessonID, kind))
	if err != nil {
		return nil, false
	}
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, false
	}
	return &env.Metadata, true
}

// Clear removes the payload stored for a lesson and kind. Clearing an absent
// key is not an error.
func (s *Store) Clear(lessonID, kind string) error {
	if _, err := s.db.Exec("DELETE FROM kv_store WHERE key = $1", Key(lessonID, kind)); err != nil {
		return fmt.Errorf("failed to clear %s: %v", Key(lessonID, kind), err)
	}
	return nil
}

// ResetLesson removes every kind stored for a lesson
func (s *Store) ResetLesson(lessonID string) error {
	for _, kind := range []string{KindCards, KindProgress, KindAchievements} {
		if err := s.Clear(lessonID, kind); err != nil {
			return err
		}
	}
	return nil
}

// Lessons lists the lesson ids that have card state in the store
func (s *Store) Lessons() ([]string, error) {
	pattern := fmt.Sprintf("%s-%%-%s-v%s", Namespace, KindCards, SchemaVersion)
	var keys []string
	if err := s.db.Select(&keys, "SELECT key FROM kv_store WHERE key LIKE $1 ORDER BY key", pattern); err != nil {
		return nil, fmt.Errorf("failed to list lessons: %v", err)
	}
	suffix := fmt.Sprintf("-%s-v%s", KindCards, SchemaVersion)
	lessons := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(k) > len(Namespace)+1+len(suffix) {
			lessons = append(lessons, k[len(Namespace)+1:len(k)-len(suffix)])
		}
	}
	return lessons, nil
}
