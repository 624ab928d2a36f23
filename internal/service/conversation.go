package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shihaotian/ai-legal-assistant/internal/ai"
	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/prompt"
	"github.com/shihaotian/ai-legal-assistant/internal/queue"
)

// Dates are embedded into prompts the way the client sends them.
const dateLayout = "2006-01-02T15:04:05"

const quizUserTurn = "Please generate the quiz questions based on the lesson content."

// Conversation orchestrates AI-backed conversations: it keeps the transient
// session record in Redis and the durable case snapshot in MySQL consistent
// at every committed turn.
type Conversation struct {
	Cases    CaseStore
	Lessons  LessonStore
	Sessions SessionStore
	AI       Completer

	// PublishCaseOpened is best-effort; nil disables publishing (tests).
	PublishCaseOpened func(ctx context.Context, ev queue.CaseOpenedEvent) error
}

func NewConversation(cases CaseStore, lessons LessonStore, sessions SessionStore, completer Completer) *Conversation {
	return &Conversation{
		Cases:             cases,
		Lessons:           lessons,
		Sessions:          sessions,
		AI:                completer,
		PublishCaseOpened: queue.PublishCaseOpened,
	}
}

// InitCaseInput carries the fields of a new case conversation.
type InitCaseInput struct {
	CaseType      string
	Description   string
	Location      string
	ProsecuteDate *time.Time
}

// InitCase starts a case conversation: a fresh session record under a new
// id, then a new case row owned by the caller. The cache write deliberately
// happens first; if the insert fails afterwards the orphaned session simply
// ages out with its TTL.
func (s *Conversation) InitCase(ctx context.Context, p auth.Principal, in InitCaseInput) (sessionID, caseID string, err error) {
	if strings.TrimSpace(in.CaseType) == "" || strings.TrimSpace(in.Description) == "" {
		return "", "", fmt.Errorf("%w: case_type and case_description are required", ErrValidation)
	}

	system := prompt.Case(in.CaseType, in.Description, in.Location, formatDate(in.ProsecuteDate))

	sessionID = uuid.NewString()
	if err := s.Sessions.Put(ctx, sessionID, cache.SessionRecord{
		System:  system,
		History: []model.Turn{},
	}); err != nil {
		return "", "", err
	}

	caseID = uuid.NewString()
	if err := s.Cases.Create(ctx, model.Case{
		ID:              caseID,
		UserID:          p.AccountID,
		CaseType:        in.CaseType,
		CaseDescription: in.Description,
		Location:        in.Location,
		ProsecuteDate:   in.ProsecuteDate,
	}); err != nil {
		return "", "", err
	}

	if s.PublishCaseOpened != nil {
		if err := s.PublishCaseOpened(ctx, queue.CaseOpenedEvent{
			CaseID:    caseID,
			UserID:    p.AccountID,
			SessionID: sessionID,
			CaseType:  in.CaseType,
			Location:  in.Location,
			OpenedAt:  time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			log.Printf("conversation: publish case.opened failed: %v", err)
		}
	}
	return sessionID, caseID, nil
}

// InitLesson starts a lesson conversation. No case row is created and the
// session is never mirrored to the database.
func (s *Conversation) InitLesson(ctx context.Context, lessonID uint64) (string, error) {
	lesson, err := s.Lessons.GetByID(ctx, lessonID)
	if err != nil {
		return "", err
	}
	system := prompt.Lesson(lesson.Title, lesson.Description, lesson.LessonType, lesson.Summary)

	sessionID := uuid.NewString()
	if err := s.Sessions.Put(ctx, sessionID, cache.SessionRecord{
		System:  system,
		History: []model.Turn{},
	}); err != nil {
		return "", err
	}
	return sessionID, nil
}

// Continue runs one chat turn: append the user turn, complete, append the
// model turn, write the record back with a fresh TTL and, for case-bound
// conversations, overwrite the case's durable snapshot with the full
// history. The gateway call is the only blocking point with unbounded
// latency; nothing here retries.
func (s *Conversation) Continue(ctx context.Context, p auth.Principal, sessionID, userText, caseID string) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrValidation)
	}

	rec, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	rec.History = append(rec.History, model.Turn{Role: model.TurnRoleUser, Text: userText})

	reply, err := s.AI.Complete(ctx, rec.History, rec.System)
	if err != nil {
		return "", err
	}
	rec.History = append(rec.History, model.Turn{Role: model.TurnRoleModel, Text: reply})

	if err := s.Sessions.Put(ctx, sessionID, rec); err != nil {
		return "", err
	}

	if caseID != "" {
		historyJSON, err := model.EncodeHistory(rec.History)
		if err != nil {
			return "", err
		}
		if err := s.Cases.UpdateHistory(ctx, caseID, p.AccountID, historyJSON); err != nil {
			return "", err
		}
	}
	return reply, nil
}

// QuizResult is the outcome of a quiz generation. When the completion could
// not be parsed as JSON, ParseOK is false and Raw carries the untouched
// answer for the client to decide what to do with.
type QuizResult struct {
	Questions json.RawMessage
	Raw       string
	ParseOK   bool
}

// LessonQuiz asks the gateway for the 10-question quiz of a lesson with a
// single synthetic user turn and leniently extracts the JSON array.
func (s *Conversation) LessonQuiz(ctx context.Context, lessonID uint64) (QuizResult, error) {
	lesson, err := s.Lessons.GetByID(ctx, lessonID)
	if err != nil {
		return QuizResult{}, err
	}
	system := prompt.LessonQuiz(lesson.Title, lesson.Description, lesson.LessonType, lesson.Summary)

	raw, err := s.AI.CompleteOnce(ctx, quizUserTurn, system)
	if err != nil {
		return QuizResult{}, err
	}

	clean, ok := ai.ExtractJSON(raw)
	if !ok {
		log.Printf("conversation: quiz completion was not valid JSON (lesson=%d)", lessonID)
		return QuizResult{Raw: raw}, nil
	}
	return QuizResult{Questions: json.RawMessage(clean), ParseOK: true}, nil
}

// ListCases returns the caller's cases, most recent first.
func (s *Conversation) ListCases(ctx context.Context, p auth.Principal) ([]model.Case, error) {
	return s.Cases.ListForUser(ctx, p.AccountID)
}

// GetCase returns an owned case with its decoded history. A NULL snapshot
// decodes to an empty history, not an error.
func (s *Conversation) GetCase(ctx context.Context, p auth.Principal, caseID string) (model.Case, []model.Turn, error) {
	c, err := s.Cases.GetForUser(ctx, caseID, p.AccountID)
	if err != nil {
		return model.Case{}, nil, err
	}
	history, err := model.DecodeHistory(c.HistoryJSON)
	if err != nil {
		return model.Case{}, nil, err
	}
	return c, history, nil
}

// DeleteCase removes an owned case. The session record, if any, is left to
// expire on its own.
func (s *Conversation) DeleteCase(ctx context.Context, p auth.Principal, caseID string) error {
	return s.Cases.DeleteForUser(ctx, caseID, p.AccountID)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
