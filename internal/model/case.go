package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Case statuses stored in cases.status. Rows are created as pending and the
// assistant never transitions them; status management belongs to a future
// admin surface.
const (
	CaseStatusPending    = "pending"
	CaseStatusInProgress = "in_progress"
	CaseStatusCompleted  = "completed"
	CaseStatusCancelled  = "cancelled"
)

// Conversation turn roles. These match the roles the Gemini API expects, so
// the history can be replayed to the model without translation.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// Turn is one message of a conversation, tagged by who produced it.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Case represents a row in the `cases` table. The primary key is an opaque
// UUID generated at creation time. HistoryJSON holds the durable snapshot of
// the conversation as a JSON array of turns; it is NULL until the first chat
// turn is committed.
type Case struct {
	ID              string     // cases.id (char(36) uuid)
	UserID          uint64     // cases.user_id
	CaseType        string     // cases.case_type
	Status          string     // cases.status
	CaseDescription string     // cases.case_description
	Location        string     // cases.location (nullable)
	ProsecuteDate   *time.Time // cases.prosecute_date (nullable)
	HistoryJSON     []byte     // cases.history_conversation (nullable)
	CreatedAt       time.Time  // cases.created_at
	UpdatedAt       time.Time  // cases.updated_at
}

// ErrBadHistory reports a snapshot column that does not decode into the
// tagged turn schema. A corrupt snapshot must fail loudly rather than
// produce a malformed in-memory history.
var ErrBadHistory = errors.New("malformed conversation history")

// EncodeHistory serializes a full turn history for the snapshot column.
func EncodeHistory(history []Turn) ([]byte, error) {
	return json.Marshal(history)
}

// DecodeHistory parses a snapshot column back into turns. A NULL (empty)
// snapshot means the conversation has no committed turns yet and decodes to
// an empty history. Unknown roles are rejected.
func DecodeHistory(raw []byte) ([]Turn, error) {
	if len(raw) == 0 {
		return []Turn{}, nil
	}
	var history []Turn
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHistory, err)
	}
	for i, t := range history {
		if t.Role != TurnRoleUser && t.Role != TurnRoleModel {
			return nil, fmt.Errorf("%w: turn %d has role %q", ErrBadHistory, i, t.Role)
		}
	}
	return history, nil
}
