// Package service holds the business logic: the conversation orchestrator
// and the lawyer matcher. Dependencies are taken as narrow interfaces so the
// logic can be exercised against in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// ErrValidation reports malformed or missing request fields. Requests are
// rejected with it before any side effect happens.
var ErrValidation = errors.New("invalid request")

// UpstreamDataError reports a completion that arrived fine on the wire but
// is semantically unusable (not JSON, or missing a required field). The raw
// upstream text rides along for caller-side diagnosis; it is never silently
// replaced with a default.
type UpstreamDataError struct {
	Msg string
	Raw string
}

func (e *UpstreamDataError) Error() string {
	return fmt.Sprintf("unusable completion: %s", e.Msg)
}

// CaseStore is the slice of the case repository the services need.
type CaseStore interface {
	Create(ctx context.Context, c model.Case) error
	GetForUser(ctx context.Context, id string, userID uint64) (model.Case, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Case, error)
	UpdateHistory(ctx context.Context, id string, userID uint64, historyJSON []byte) error
	DeleteForUser(ctx context.Context, id string, userID uint64) error
}

// LessonStore reads lesson content.
type LessonStore interface {
	GetByID(ctx context.Context, id uint64) (model.Lesson, error)
}

// LawyerStore reads the candidate table.
type LawyerStore interface {
	GetByID(ctx context.Context, id uint64) (model.Lawyer, error)
	ListAll(ctx context.Context) ([]model.Lawyer, error)
}

// SessionStore is the transient conversation store.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (cache.SessionRecord, error)
	Put(ctx context.Context, sessionID string, rec cache.SessionRecord) error
}

// Completer is the AI completion gateway.
type Completer interface {
	Complete(ctx context.Context, history []model.Turn, system string) (string, error)
	CompleteOnce(ctx context.Context, userText, system string) (string, error)
}
