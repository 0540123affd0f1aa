package models

import "time"

// ExamSubmission is one graded exam attempt.
type ExamSubmission struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Score       float64   `db:"score" json:"score"`
	MaxScore    float64   `db:"max_score" json:"max_score"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// Percentage returns Score relative to MaxScore, or 0 when MaxScore is not positive.
func (e ExamSubmission) Percentage() float64 {
	if e.MaxScore <= 0 {
		return 0
	}
	return e.Score / e.MaxScore * 100
}
