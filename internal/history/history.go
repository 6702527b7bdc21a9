// Package history provides the append-only, user-prunable store of
// previously generated proposals, persisted across sessions through the
// key-value collaborator.
package history

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/proposalstudio/proposalstudio/internal/document"
	"github.com/proposalstudio/proposalstudio/internal/kvstore"
	"github.com/proposalstudio/proposalstudio/internal/log"
)

// storageKey is the persistence record holding the serialized entry list.
const storageKey = "history"

// Entry is an immutable saved record of one past successful generation.
// Deleted only by explicit operator action, never mutated.
type Entry struct {
	ID          string            `json:"id"`
	Document    document.Document `json:"document"`
	Depth       string            `json:"depth"`
	GeneratedAt time.Time         `json:"generated_at"`
	TurnCount   int               `json:"turn_count"`
}

// NewEntry builds an entry with a fresh unique ID.
func NewEntry(doc document.Document, depth string, generatedAt time.Time, turnCount int) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Document:    doc,
		Depth:       depth,
		GeneratedAt: generatedAt,
		TurnCount:   turnCount,
	}
}

// Store keeps history entries most-recent-first and mirrors every mutation
// to the persistence collaborator.
//
// Malformed persisted data is ignored on load: the store starts empty rather
// than failing, so a corrupt record can never take the application down.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	kv      kvstore.KV
	logger  log.Logger
}

// New creates a Store, loading any persisted entries.
func New(kv kvstore.KV, logger log.Logger) *Store {
	s := &Store{kv: kv, logger: logger}
	s.load()
	return s
}

func (s *Store) load() {
	data, found, err := s.kv.Get(storageKey)
	if err != nil {
		s.logger.Warn("loading history", "error", err)
		return
	}
	if !found {
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("ignoring malformed history record", "error", err)
		return
	}
	s.entries = entries
}

// persist writes the current entry list. Best-effort: failures are logged,
// the in-memory state stays authoritative for the session.
// Caller must hold s.mu.
func (s *Store) persist() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Warn("serializing history", "error", err)
		return
	}
	if err := s.kv.Set(storageKey, data); err != nil {
		s.logger.Warn("persisting history", "error", err)
	}
}

// Append prepends an entry, keeping most-recent-first ordering.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]Entry{e}, s.entries...)
	s.persist()
}

// Remove deletes the entry with the given ID. Unknown IDs are a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.entries[:0]
	removed := false
	for _, e := range s.entries {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	if removed {
		s.persist()
	}
}

// All returns a copy of all entries, most recent first.
func (s *Store) All() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
