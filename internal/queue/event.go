// Package queue defines the domain events exchanged over the message broker,
// the best-effort publisher, and the background consumer that turns events
// into an audit log.
package queue

// CaseOpenedEvent is published when a case conversation is initialized. It
// carries enough for downstream consumers to log or notify without querying
// the primary database.
type CaseOpenedEvent struct {
	CaseID    string `json:"case_id"`
	UserID    uint64 `json:"user_id"`
	SessionID string `json:"session_id"`
	CaseType  string `json:"case_type"`
	Location  string `json:"location,omitempty"`
	OpenedAt  string `json:"opened_at"`
}
