package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shihaotian/ai-legal-assistant/internal/ai"
	"github.com/shihaotian/ai-legal-assistant/internal/auth"
	"github.com/shihaotian/ai-legal-assistant/internal/service"
	"github.com/shihaotian/ai-legal-assistant/internal/utils"
)

// Uploaded audio/PDF payloads are capped to keep a single request from
// holding tens of megabytes in memory.
const maxUploadBytes = 20 << 20

// AssistantHandler serves the AI-backed endpoints: case and lesson
// conversations, quizzes, lawyer matching and file conversions.
type AssistantHandler struct {
	Conv    *service.Conversation
	Matcher *service.LawyerMatcher
	AI      *ai.Client
}

func NewAssistantHandler(conv *service.Conversation, matcher *service.LawyerMatcher, client *ai.Client) *AssistantHandler {
	return &AssistantHandler{Conv: conv, Matcher: matcher, AI: client}
}

// ----- DTOs -----

type caseInitReq struct {
	CaseType      string `json:"case_type"`
	Description   string `json:"case_description"`
	Location      string `json:"location"`
	ProsecuteDate string `json:"prosecute_date"` // 2006-01-02T15:04:05, optional
}
type lessonInitReq struct {
	LessonID uint64 `json:"lesson_id"`
}
type chatReq struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
	CaseID    string `json:"case_id"`
}
type quizReq struct {
	LessonID uint64 `json:"lesson_id"`
}
type recommendReq struct {
	CaseID string `json:"case_id"`
}
type ttsReq struct {
	Text string `json:"text"`
}

// InitCase opens a new case conversation and returns both the transient
// session id and the durable case id.
func (h *AssistantHandler) InitCase(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req caseInitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	in := service.InitCaseInput{
		CaseType:    req.CaseType,
		Description: req.Description,
		Location:    req.Location,
	}
	if s := strings.TrimSpace(req.ProsecuteDate); s != "" {
		t, err := time.Parse("2006-01-02T15:04:05", s)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "prosecute_date must be YYYY-MM-DDTHH:MM:SS"})
		}
		in.ProsecuteDate = &t
	}

	sessionID, caseID, err := h.Conv.InitCase(c.Request().Context(), p, in)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": sessionID, "case_id": caseID})
}

// InitLesson opens a lesson conversation. Nothing is persisted; the session
// lives only in the cache.
func (h *AssistantHandler) InitLesson(c echo.Context) error {
	if _, err := auth.FromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req lessonInitReq
	if err := c.Bind(&req); err != nil || req.LessonID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lesson_id required"})
	}

	sessionID, err := h.Conv.InitLesson(c.Request().Context(), req.LessonID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"session_id": sessionID})
}

// Chat runs one turn of an existing conversation.
func (h *AssistantHandler) Chat(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req chatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.SessionID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id required"})
	}

	reply, err := h.Conv.Continue(c.Request().Context(), p, req.SessionID, req.Prompt, req.CaseID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": reply})
}

// LessonQuiz generates the ten-question quiz for a lesson. A completion that
// cannot be parsed comes back verbatim with an error note instead of failing
// the request.
func (h *AssistantHandler) LessonQuiz(c echo.Context) error {
	if _, err := auth.FromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req quizReq
	if err := c.Bind(&req); err != nil || req.LessonID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lesson_id required"})
	}

	res, err := h.Conv.LessonQuiz(c.Request().Context(), req.LessonID)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !res.ParseOK {
		return c.JSON(http.StatusOK, echo.Map{
			"message": res.Raw,
			"error":   "quiz was not valid JSON",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"questions": res.Questions})
}

// ListCases returns the caller's cases, most recent first.
func (h *AssistantHandler) ListCases(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cases, err := h.Conv.ListCases(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	out := make([]echo.Map, 0, len(cases))
	for _, cs := range cases {
		out = append(out, echo.Map{
			"id":               cs.ID,
			"case_type":        cs.CaseType,
			"status":           cs.Status,
			"case_description": cs.CaseDescription,
			"location":         cs.Location,
			"prosecute_date":   cs.ProsecuteDate,
			"created_at":       cs.CreatedAt,
			"updated_at":       cs.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"cases": out})
}

// GetCase returns one owned case with its decoded conversation history.
func (h *AssistantHandler) GetCase(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cs, history, err := h.Conv.GetCase(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":               cs.ID,
		"case_type":        cs.CaseType,
		"status":           cs.Status,
		"case_description": cs.CaseDescription,
		"location":         cs.Location,
		"prosecute_date":   cs.ProsecuteDate,
		"history":          history,
		"created_at":       cs.CreatedAt,
		"updated_at":       cs.UpdatedAt,
	})
}

// DeleteCase removes an owned case.
func (h *AssistantHandler) DeleteCase(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Conv.DeleteCase(c.Request().Context(), p, c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RecommendLawyer asks the matcher for one lawyer fitting an owned case.
func (h *AssistantHandler) RecommendLawyer(c echo.Context) error {
	p, err := auth.FromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req recommendReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.CaseID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "case_id required"})
	}

	lawyer, err := h.Matcher.Recommend(c.Request().Context(), p, req.CaseID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"lawyer": lawyer})
}

// SpeechToText transcribes an uploaded audio file.
func (h *AssistantHandler) SpeechToText(c echo.Context) error {
	if _, err := auth.FromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	data, mime, err := readUpload(c, "file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	text, err := h.AI.SpeechToText(c.Request().Context(), data, mime)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"text": text})
}

// TextToSpeech synthesizes speech for the given text and streams back a WAV
// file.
func (h *AssistantHandler) TextToSpeech(c echo.Context) error {
	if _, err := auth.FromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ttsReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text required"})
	}

	wav, err := h.AI.TextToSpeech(c.Request().Context(), req.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="speech.wav"`)
	return c.Blob(http.StatusOK, "audio/wav", wav)
}

// AnalyzeDocument extracts the text of an uploaded PDF and asks the gateway
// for a structured legal analysis.
func (h *AssistantHandler) AnalyzeDocument(c echo.Context) error {
	if _, err := auth.FromContext(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	data, mime, err := readUpload(c, "file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if mime != "" && mime != "application/pdf" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only PDF documents are supported"})
	}

	text, err := utils.ExtractPDFText(data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read PDF"})
	}
	if strings.TrimSpace(text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "document contains no extractable text"})
	}

	analysis, err := h.AI.AnalyzeDocument(c.Request().Context(), text)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"text": analysis})
}

// readUpload pulls one multipart file field into memory, enforcing the size
// cap, and reports the client-declared content type.
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", errors.New("file field required")
	}
	if fh.Size > maxUploadBytes {
		return nil, "", errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", errors.New("could not open upload")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", errors.New("could not read upload")
	}
	if len(data) > maxUploadBytes {
		return nil, "", errors.New("file too large")
	}
	return data, fh.Header.Get("Content-Type"), nil
}
