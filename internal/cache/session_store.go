// Package cache implements the transient conversation store on Redis.
//
// A session is a Redis value keyed by "session:<id>" holding the system
// instruction and the ordered turn history of one conversation. Records
// expire after a fixed TTL; every write refreshes it. Expiry is handled
// entirely by Redis, there is no sweeper here.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// ErrSessionExpired is returned when a session key is absent. An expired
// session and one that never existed are indistinguishable by design of the
// cache; handlers report both as the session being gone.
var ErrSessionExpired = errors.New("session expired or unknown")

// ErrBadRecord is returned when a stored payload does not decode into the
// tagged session schema. A version mismatch or corruption fails loudly
// instead of yielding a malformed in-memory history.
var ErrBadRecord = errors.New("malformed session record")

const keyPrefix = "session:"

// SessionRecord is the value stored per conversation: the system instruction
// rendered at init time plus every turn exchanged since.
type SessionRecord struct {
	System  string       `json:"system"`
	History []model.Turn `json:"history"`
}

// SessionStore reads and writes session records with a fixed TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Get loads and validates the record for a session id.
func (s *SessionStore) Get(ctx context.Context, sessionID string) (SessionRecord, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionRecord{}, ErrSessionExpired
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("session get: %w", err)
	}
	return decodeRecord(raw)
}

// Put stores the full record under the session id and refreshes the TTL.
func (s *SessionStore) Put(ctx context.Context, sessionID string, rec SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+sessionID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// decodeRecord parses a stored payload and rejects anything that does not
// match the tagged schema: a system string plus turns tagged user/model.
func decodeRecord(raw []byte) (SessionRecord, error) {
	var rec SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return SessionRecord{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if rec.History == nil {
		rec.History = []model.Turn{}
	}
	for i, t := range rec.History {
		if t.Role != model.TurnRoleUser && t.Role != model.TurnRoleModel {
			return SessionRecord{}, fmt.Errorf("%w: turn %d has role %q", ErrBadRecord, i, t.Role)
		}
	}
	return rec, nil
}
