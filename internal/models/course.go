package models

import (
	"strings"
	"time"
)

// UncategorizedCourse labels courses without a category.
const UncategorizedCourse = "uncategorized"

// Course is a training program run over a date window.
type Course struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Category  string     `db:"category" json:"category"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// CategoryLabel returns the category or the uncategorized label.
func (c Course) CategoryLabel() string {
	if category := strings.TrimSpace(c.Category); category != "" {
		return category
	}
	return UncategorizedCourse
}

// Certificate records a completion certificate issued to a trainee.
type Certificate struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	IssuedAt  time.Time `db:"issued_at" json:"issued_at"`
}
