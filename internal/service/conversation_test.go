package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/cache"
	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/queue"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
)

// ----- fakes -----

type fakeCases struct {
	byID    map[string]model.Case
	created []string
}

func newFakeCases() *fakeCases { return &fakeCases{byID: map[string]model.Case{}} }

func (f *fakeCases) Create(_ context.Context, c model.Case) error {
	f.byID[c.ID] = c
	f.created = append(f.created, c.ID)
	return nil
}

func (f *fakeCases) GetForUser(_ context.Context, id string, userID uint64) (model.Case, error) {
	c, ok := f.byID[id]
	if !ok || c.UserID != userID {
		return model.Case{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeCases) ListForUser(_ context.Context, userID uint64) ([]model.Case, error) {
	var out []model.Case
	for _, c := range f.byID {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCases) UpdateHistory(_ context.Context, id string, userID uint64, historyJSON []byte) error {
	c, ok := f.byID[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	c.HistoryJSON = historyJSON
	f.byID[id] = c
	return nil
}

func (f *fakeCases) DeleteForUser(_ context.Context, id string, userID uint64) error {
	c, ok := f.byID[id]
	if !ok || c.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeLessons struct {
	byID map[uint64]model.Lesson
}

func (f *fakeLessons) GetByID(_ context.Context, id uint64) (model.Lesson, error) {
	l, ok := f.byID[id]
	if !ok {
		return model.Lesson{}, repository.ErrNotFound
	}
	return l, nil
}

type fakeSessions struct {
	recs map[string]cache.SessionRecord
}

func newFakeSessions() *fakeSessions { return &fakeSessions{recs: map[string]cache.SessionRecord{}} }

func (f *fakeSessions) Get(_ context.Context, id string) (cache.SessionRecord, error) {
	rec, ok := f.recs[id]
	if !ok {
		return cache.SessionRecord{}, cache.ErrSessionExpired
	}
	return rec, nil
}

func (f *fakeSessions) Put(_ context.Context, id string, rec cache.SessionRecord) error {
	f.recs[id] = rec
	return nil
}

// fakeCompleter replies with canned text and records what it was asked.
type fakeCompleter struct {
	reply       string
	err         error
	lastSystem  string
	lastHistory []model.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, history []model.Turn, system string) (string, error) {
	f.lastSystem = system
	f.lastHistory = append([]model.Turn(nil), history...)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) CompleteOnce(_ context.Context, userText, system string) (string, error) {
	f.lastSystem = system
	f.lastHistory = []model.Turn{{Role: model.TurnRoleUser, Text: userText}}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newConvForTest(cases *fakeCases, lessons *fakeLessons, sessions *fakeSessions, ai *fakeCompleter) *Conversation {
	conv := NewConversation(cases, lessons, sessions, ai)
	conv.PublishCaseOpened = nil // no broker in tests
	return conv
}

var testPrincipal = auth.Principal{AccountID: 42, Role: model.RoleGuest}

// ----- InitCase -----

func TestInitCaseCreatesSessionAndCase(t *testing.T) {
	cases := newFakeCases()
	sessions := newFakeSessions()
	conv := newConvForTest(cases, &fakeLessons{}, sessions, &fakeCompleter{})

	sessionID, caseID, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{
		CaseType:    "contract dispute",
		Description: "My landlord kept the deposit.",
		Location:    "Austin",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sessionID)
	assert.NotEmpty(t, caseID)
	assert.NotEqual(t, sessionID, caseID)

	rec, ok := sessions.recs[sessionID]
	require.True(t, ok)
	assert.Empty(t, rec.History)
	assert.Contains(t, rec.System, "contract dispute")
	assert.Contains(t, rec.System, "My landlord kept the deposit.")

	c, ok := cases.byID[caseID]
	require.True(t, ok)
	assert.Equal(t, testPrincipal.AccountID, c.UserID)
	assert.Equal(t, "contract dispute", c.CaseType)
}

func TestInitCaseGeneratesUniqueIDs(t *testing.T) {
	cases := newFakeCases()
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		sid, cid, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{
			CaseType:    "traffic",
			Description: fmt.Sprintf("incident %d", i),
		})
		require.NoError(t, err)
		assert.False(t, seen[sid])
		assert.False(t, seen[cid])
		seen[sid] = true
		seen[cid] = true
	}
}

func TestInitCaseValidation(t *testing.T) {
	conv := newConvForTest(newFakeCases(), &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	_, _, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{Description: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = conv.InitCase(context.Background(), testPrincipal, InitCaseInput{CaseType: "traffic", Description: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInitCasePublishesEvent(t *testing.T) {
	cases := newFakeCases()
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	var got queue.CaseOpenedEvent
	conv.PublishCaseOpened = func(_ context.Context, ev queue.CaseOpenedEvent) error {
		got = ev
		return nil
	}

	sid, cid, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{
		CaseType:    "labor",
		Description: "unpaid overtime",
	})
	require.NoError(t, err)
	assert.Equal(t, cid, got.CaseID)
	assert.Equal(t, sid, got.SessionID)
	assert.Equal(t, testPrincipal.AccountID, got.UserID)
}

func TestInitCasePublishFailureDoesNotFailRequest(t *testing.T) {
	conv := newConvForTest(newFakeCases(), &fakeLessons{}, newFakeSessions(), &fakeCompleter{})
	conv.PublishCaseOpened = func(context.Context, queue.CaseOpenedEvent) error {
		return errors.New("broker down")
	}

	_, _, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{
		CaseType:    "labor",
		Description: "unpaid overtime",
	})
	assert.NoError(t, err)
}

// ----- InitLesson -----

func TestInitLesson(t *testing.T) {
	lessons := &fakeLessons{byID: map[uint64]model.Lesson{
		7: {ID: 7, Title: "Contract Law 101", LessonType: "video", Description: "basics", Summary: "offer and acceptance"},
	}}
	sessions := newFakeSessions()
	conv := newConvForTest(newFakeCases(), lessons, sessions, &fakeCompleter{})

	sid, err := conv.InitLesson(context.Background(), 7)
	require.NoError(t, err)

	rec, ok := sessions.recs[sid]
	require.True(t, ok)
	assert.Contains(t, rec.System, "Contract Law 101")
	assert.Empty(t, rec.History)
}

func TestInitLessonUnknownLesson(t *testing.T) {
	conv := newConvForTest(newFakeCases(), &fakeLessons{byID: map[uint64]model.Lesson{}}, newFakeSessions(), &fakeCompleter{})

	_, err := conv.InitLesson(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// ----- Continue -----

func TestContinueAppendsTwoTurnsAndMirrorsSnapshot(t *testing.T) {
	cases := newFakeCases()
	sessions := newFakeSessions()
	completer := &fakeCompleter{reply: "You may be entitled to the deposit back."}
	conv := newConvForTest(cases, &fakeLessons{}, sessions, completer)

	sid, cid, err := conv.InitCase(context.Background(), testPrincipal, InitCaseInput{
		CaseType:    "contract dispute",
		Description: "deposit",
	})
	require.NoError(t, err)

	reply, err := conv.Continue(context.Background(), testPrincipal, sid, "What are my options?", cid)
	require.NoError(t, err)
	assert.Equal(t, completer.reply, reply)

	rec := sessions.recs[sid]
	require.Len(t, rec.History, 2)
	assert.Equal(t, model.TurnRoleUser, rec.History[0].Role)
	assert.Equal(t, "What are my options?", rec.History[0].Text)
	assert.Equal(t, model.TurnRoleModel, rec.History[1].Role)

	// The model is called with the user turn already appended.
	require.Len(t, completer.lastHistory, 1)
	assert.Equal(t, "What are my options?", completer.lastHistory[0].Text)

	// Durable snapshot matches the cached record.
	snap, err := model.DecodeHistory(cases.byID[cid].HistoryJSON)
	require.NoError(t, err)
	assert.Equal(t, rec.History, snap)
}

func TestContinueWithoutCaseSkipsSnapshot(t *testing.T) {
	lessons := &fakeLessons{byID: map[uint64]model.Lesson{1: {ID: 1, Title: "Torts"}}}
	cases := newFakeCases()
	sessions := newFakeSessions()
	conv := newConvForTest(cases, lessons, sessions, &fakeCompleter{reply: "sure"})

	sid, err := conv.InitLesson(context.Background(), 1)
	require.NoError(t, err)

	_, err = conv.Continue(context.Background(), testPrincipal, sid, "explain negligence", "")
	require.NoError(t, err)
	assert.Empty(t, cases.byID)
	assert.Len(t, sessions.recs[sid].History, 2)
}

func TestContinueExpiredSession(t *testing.T) {
	conv := newConvForTest(newFakeCases(), &fakeLessons{}, newFakeSessions(), &fakeCompleter{reply: "x"})

	_, err := conv.Continue(context.Background(), testPrincipal, "gone", "hello", "")
	assert.ErrorIs(t, err, cache.ErrSessionExpired)
}

func TestContinueEmptyPrompt(t *testing.T) {
	conv := newConvForTest(newFakeCases(), &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	_, err := conv.Continue(context.Background(), testPrincipal, "sid", "   ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContinueUpstreamFailureLeavesSessionUntouched(t *testing.T) {
	sessions := newFakeSessions()
	sessions.recs["sid"] = cache.SessionRecord{System: "sys", History: []model.Turn{}}
	conv := newConvForTest(newFakeCases(), &fakeLessons{}, sessions, &fakeCompleter{err: errors.New("boom")})

	_, err := conv.Continue(context.Background(), testPrincipal, "sid", "hello", "")
	require.Error(t, err)
	assert.Empty(t, sessions.recs["sid"].History)
}

// ----- LessonQuiz -----

func TestLessonQuizParsesFencedJSON(t *testing.T) {
	lessons := &fakeLessons{byID: map[uint64]model.Lesson{3: {ID: 3, Title: "Evidence"}}}
	completer := &fakeCompleter{reply: "```json\n[{\"question\":\"Q1\"}]\n```"}
	conv := newConvForTest(newFakeCases(), lessons, newFakeSessions(), completer)

	res, err := conv.LessonQuiz(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, res.ParseOK)
	assert.JSONEq(t, `[{"question":"Q1"}]`, string(res.Questions))
	// Quiz generation is one-shot with a synthetic user turn.
	require.Len(t, completer.lastHistory, 1)
	assert.Equal(t, model.TurnRoleUser, completer.lastHistory[0].Role)
}

func TestLessonQuizUnparseableFallsBackToRaw(t *testing.T) {
	lessons := &fakeLessons{byID: map[uint64]model.Lesson{3: {ID: 3, Title: "Evidence"}}}
	completer := &fakeCompleter{reply: "Sorry, I cannot produce a quiz right now."}
	conv := newConvForTest(newFakeCases(), lessons, newFakeSessions(), completer)

	res, err := conv.LessonQuiz(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, res.ParseOK)
	assert.Equal(t, completer.reply, res.Raw)
	assert.Nil(t, res.Questions)
}

// ----- case reads and deletes -----

func TestGetCaseDecodesHistory(t *testing.T) {
	cases := newFakeCases()
	history, err := model.EncodeHistory([]model.Turn{
		{Role: model.TurnRoleUser, Text: "hi"},
		{Role: model.TurnRoleModel, Text: "hello"},
	})
	require.NoError(t, err)
	cases.byID["c1"] = model.Case{ID: "c1", UserID: testPrincipal.AccountID, HistoryJSON: history}
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	_, turns, err := conv.GetCase(context.Background(), testPrincipal, "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[1].Text)
}

func TestGetCaseNullHistoryIsEmpty(t *testing.T) {
	cases := newFakeCases()
	cases.byID["c1"] = model.Case{ID: "c1", UserID: testPrincipal.AccountID}
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	_, turns, err := conv.GetCase(context.Background(), testPrincipal, "c1")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestCaseOwnershipIsEnforced(t *testing.T) {
	cases := newFakeCases()
	cases.byID["c1"] = model.Case{ID: "c1", UserID: 7}
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	_, _, err := conv.GetCase(context.Background(), testPrincipal, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = conv.DeleteCase(context.Background(), testPrincipal, "c1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteCase(t *testing.T) {
	cases := newFakeCases()
	cases.byID["c1"] = model.Case{ID: "c1", UserID: testPrincipal.AccountID}
	conv := newConvForTest(cases, &fakeLessons{}, newFakeSessions(), &fakeCompleter{})

	require.NoError(t, conv.DeleteCase(context.Background(), testPrincipal, "c1"))
	assert.Empty(t, cases.byID)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(nil))
	d := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-14T09:30:00", formatDate(&d))
}
