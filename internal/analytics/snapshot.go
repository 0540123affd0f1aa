// Package analytics derives training statistics from record snapshots.
// Every function is pure: it reads the snapshot it is handed, filters by the
// requested period itself and never mutates its input.
package analytics

import (
	"math"
	"time"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

// DefaultPassThreshold is the exam percentage required to pass.
const DefaultPassThreshold = 60.0

// Snapshot is the set of raw records an aggregation runs over.
type Snapshot struct {
	Trainees     []models.Trainee          `json:"trainees"`
	Courses      []models.Course           `json:"courses"`
	Enrollments  []models.Enrollment       `json:"enrollments"`
	Attendance   []models.AttendanceRecord `json:"attendance"`
	Exams        []models.ExamSubmission   `json:"exams"`
	Certificates []models.Certificate      `json:"certificates"`
}

func existedBy(created, end time.Time) bool {
	return created.IsZero() || !created.After(end)
}

func finalScores(enrollments []models.Enrollment) []float64 {
	scores := make([]float64, 0, len(enrollments))
	for _, e := range enrollments {
		if e.FinalScore != nil {
			scores = append(scores, *e.FinalScore)
		}
	}
	return scores
}

func countStatus(enrollments []models.Enrollment, status models.EnrollmentStatus) int {
	n := 0
	for _, e := range enrollments {
		if e.Status == status {
			n++
		}
	}
	return n
}

// attendanceRate is (present+late) over every non-excused record.
func attendanceRate(records []models.AttendanceRecord) float64 {
	attended, counted := 0, 0
	for _, rec := range records {
		if rec.Status == models.AttendanceStatusExcused {
			continue
		}
		counted++
		if rec.Status.Attended() {
			attended++
		}
	}
	return stats.Rate(attended, counted)
}

func attendanceWithin(records []models.AttendanceRecord, r period.Range) []models.AttendanceRecord {
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out
}

func enrolledWithin(enrollments []models.Enrollment, r period.Range) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if r.Contains(e.EnrolledAt) {
			out = append(out, e)
		}
	}
	return out
}

func enrolledBy(enrollments []models.Enrollment, end time.Time) []models.Enrollment {
	out := make([]models.Enrollment, 0, len(enrollments))
	for _, e := range enrollments {
		if !e.EnrolledAt.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// wholeDays floors the elapsed time between from and to to whole days.
func wholeDays(from, to time.Time) float64 {
	return math.Floor(to.Sub(from).Hours() / 24)
}
