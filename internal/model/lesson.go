package model

import "time"

// Lesson represents a row in the `lessons` table. Lessons are curated video
// content; this service only reads them (for listing, lesson conversations
// and quiz generation).
type Lesson struct {
	ID          uint64    // lessons.id
	Title       string    // lessons.title
	VideoURL    string    // lessons.video_url
	LessonType  string    // lessons.lesson_type
	Description string    // lessons.lesson_description
	Summary     string    // lessons.lesson_summary (nullable, empty when absent)
	CreatedAt   time.Time // lessons.created_at
	UpdatedAt   time.Time // lessons.updated_at
}
