package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusEnrolled, EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status can no longer change.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted || s == EnrollmentStatusDropped
}

// CanTransition reports whether an enrollment may move from s to next.
// Statuses only move forward: enrolled -> active -> completed|dropped.
func (s EnrollmentStatus) CanTransition(next EnrollmentStatus) bool {
	if !s.Valid() || !next.Valid() || s.Terminal() {
		return false
	}
	switch s {
	case EnrollmentStatusEnrolled:
		return next != EnrollmentStatusEnrolled
	case EnrollmentStatusActive:
		return next.Terminal()
	}
	return false
}

// Enrollment ties one trainee to one course.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	CourseID       string           `db:"course_id" json:"course_id"`
	EnrolledAt     time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	FinalScore     *float64         `db:"final_score" json:"final_score"`
	CompletionDate *time.Time       `db:"completion_date" json:"completion_date"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// HasScore reports whether a final score was recorded.
func (e Enrollment) HasScore() bool {
	return e.FinalScore != nil
}
