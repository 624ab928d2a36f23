package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
	"github.com/shihaotian/ai-legal-assistant/internal/service"
)

// ----- fakes -----

type stubCases struct {
	byID map[string]model.Case
}

func (s *stubCases) Create(_ context.Context, c model.Case) error {
	s.byID[c.ID] = c
	return nil
}

func (s *stubCases) GetForUser(_ context.Context, id string, userID uint64) (model.Case, error) {
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return model.Case{}, repository.ErrNotFound
	}
	return c, nil
}

func (s *stubCases) ListForUser(_ context.Context, userID uint64) ([]model.Case, error) {
	var out []model.Case
	for _, c := range s.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubCases) UpdateHistory(_ context.Context, id string, userID uint64, historyJSON []byte) error {
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	c.HistoryJSON = historyJSON
	s.byID[id] = c
	return nil
}

func (s *stubCases) DeleteForUser(_ context.Context, id string, userID uint64) error {
	c, ok := s.byID[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

type stubLessons struct{}

func (stubLessons) GetByID(context.Context, uint64) (model.Lesson, error) {
	return model.Lesson{}, repository.ErrNotFound
}

type stubSessions struct {
	recs map[string]cache.SessionRecord
}

func (s *stubSessions) Get(_ context.Context, id string) (cache.SessionRecord, error) {
	rec, ok := s.recs[id]
	if !ok {
		return cache.SessionRecord{}, cache.ErrSessionExpired
	}
	return rec, nil
}

func (s *stubSessions) Put(_ context.Context, id string, rec cache.SessionRecord) error {
	s.recs[id] = rec
	return nil
}

type stubCompleter struct{ reply string }

func (s stubCompleter) Complete(context.Context, []model.Turn, string) (string, error) {
	return s.reply, nil
}

func (s stubCompleter) CompleteOnce(context.Context, string, string) (string, error) {
	return s.reply, nil
}

func chatFixture(reply string) (*AssistantHandler, *stubCases, *stubSessions) {
	cases := &stubCases{byID: map[string]model.Case{}}
	sessions := &stubSessions{recs: map[string]cache.SessionRecord{}}
	conv := service.NewConversation(cases, stubLessons{}, sessions, stubCompleter{reply: reply})
	conv.PublishCaseOpened = nil
	return NewAssistantHandler(conv, nil, nil), cases, sessions
}

func postChat(t *testing.T, h *AssistantHandler, p auth.Principal, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/ai/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	auth.Store(c, p)
	require.NoError(t, h.Chat(c))
	return rec
}

// ----- scenario -----

func TestChatTurnOnCaseConversation(t *testing.T) {
	p := auth.Principal{AccountID: 42, Role: model.RoleGuest}
	h, cases, sessions := chatFixture("You need: medical records.")

	sessions.recs["s1"] = cache.SessionRecord{System: "sys", History: []model.Turn{}}
	cases.byID["c1"] = model.Case{ID: "c1", UserID: p.AccountID}

	rec := postChat(t, h, p, `{"session_id":"s1","prompt":"What evidence do I need?","case_id":"c1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You need: medical records.", resp.Message)

	// One user turn plus one model turn in the cache, mirrored to the case.
	require.Len(t, sessions.recs["s1"].History, 2)
	snap, err := model.DecodeHistory(cases.byID["c1"].HistoryJSON)
	require.NoError(t, err)
	assert.Equal(t, sessions.recs["s1"].History, snap)
}

func TestChatExpiredSessionIsGone(t *testing.T) {
	p := auth.Principal{AccountID: 42, Role: model.RoleGuest}
	h, _, _ := chatFixture("irrelevant")

	rec := postChat(t, h, p, `{"session_id":"missing","prompt":"hello"}`)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}

func TestChatValidation(t *testing.T) {
	p := auth.Principal{AccountID: 42, Role: model.RoleGuest}
	h, _, sessions := chatFixture("irrelevant")
	sessions.recs["s1"] = cache.SessionRecord{History: []model.Turn{}}

	rec := postChat(t, h, p, `{"prompt":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postChat(t, h, p, `{"session_id":"s1","prompt":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatCaseOwnershipHidesForeignCase(t *testing.T) {
	p := auth.Principal{AccountID: 42, Role: model.RoleGuest}
	h, cases, sessions := chatFixture("reply")

	sessions.recs["s1"] = cache.SessionRecord{History: []model.Turn{}}
	cases.byID["c1"] = model.Case{ID: "c1", UserID: 7}

	rec := postChat(t, h, p, `{"session_id":"s1","prompt":"hi","case_id":"c1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
