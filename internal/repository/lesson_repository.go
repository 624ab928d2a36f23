package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shihaotian/ai-legal-assistant/internal/model"
)

// LessonRepo reads curated lesson content. Lessons are seeded out of band;
// this service never writes them.
type LessonRepo struct{ DB *sql.DB }

func NewLessonRepo(db *sql.DB) *LessonRepo { return &LessonRepo{DB: db} }

const lessonColumns = "id,title,video_url,lesson_type,lesson_description,lesson_summary,created_at,updated_at"

// GetByID fetches one lesson including its long-form summary.
func (r *LessonRepo) GetByID(ctx context.Context, id uint64) (model.Lesson, error) {
	var (
		l       model.Lesson
		summary sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+lessonColumns+" FROM lessons WHERE id=? LIMIT 1",
		id).Scan(&l.ID, &l.Title, &l.VideoURL, &l.LessonType, &l.Description,
		&summary, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Lesson{}, ErrNotFound
	}
	if err != nil {
		return model.Lesson{}, err
	}
	l.Summary = summary.String
	return l, nil
}

// List returns one page of lessons plus the total count for the filter.
// lessonType filters by exact category; search matches against the title.
func (r *LessonRepo) List(ctx context.Context, page, limit int, lessonType, search string) ([]model.Lesson, int, error) {
	where := "WHERE 1=1"
	args := []any{}
	if lessonType != "" {
		where += " AND lesson_type=?"
		args = append(args, lessonType)
	}
	if search != "" {
		where += " AND title LIKE ?"
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lessons "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageArgs := append(args, limit, (page-1)*limit)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+lessonColumns+" FROM lessons "+where+" ORDER BY id LIMIT ? OFFSET ?",
		pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	lessons := []model.Lesson{}
	for rows.Next() {
		var (
			l       model.Lesson
			summary sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.Title, &l.VideoURL, &l.LessonType, &l.Description,
			&summary, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, err
		}
		l.Summary = summary.String
		lessons = append(lessons, l)
	}
	return lessons, total, rows.Err()
}
