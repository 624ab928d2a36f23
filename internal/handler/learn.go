package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
	"github.com/shihaotian/ai-legal-assistant/internal/repository"
)

// LearnHandler serves the read-only lesson catalogue.
type LearnHandler struct {
	Lessons *repository.LessonRepo
}

func NewLearnHandler(l *repository.LessonRepo) *LearnHandler {
	return &LearnHandler{Lessons: l}
}

type lessonItem struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	VideoURL    string    `json:"video_url"`
	LessonType  string    `json:"lesson_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLessonItem(l model.Lesson) lessonItem {
	return lessonItem{
		ID:          l.ID,
		Title:       l.Title,
		VideoURL:    l.VideoURL,
		LessonType:  l.LessonType,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ListLessons returns a page of the catalogue, optionally filtered by type
// and by a title search term. Summaries are omitted here; they are large and
// only needed on the detail view.
func (h *LearnHandler) ListLessons(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	lessonType := strings.TrimSpace(c.QueryParam("lesson_type"))
	search := strings.TrimSpace(c.QueryParam("search"))

	lessons, total, err := h.Lessons.List(c.Request().Context(), page, limit, lessonType, search)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items := make([]lessonItem, 0, len(lessons))
	for _, l := range lessons {
		items = append(items, toLessonItem(l))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lessons": items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// GetLesson returns one lesson including its summary.
func (h *LearnHandler) GetLesson(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lesson id"})
	}

	l, err := h.Lessons.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lesson not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	item := toLessonItem(l)
	return c.JSON(http.StatusOK, echo.Map{
		"id":          item.ID,
		"title":       item.Title,
		"video_url":   item.VideoURL,
		"lesson_type": item.LessonType,
		"description": item.Description,
		"summary":     l.Summary,
		"created_at":  item.CreatedAt,
		"updated_at":  item.UpdatedAt,
	})
}
