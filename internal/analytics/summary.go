package analytics

import (
	"time"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

type periodMetrics struct {
	totalStudents     int
	activeStudents    int
	totalCourses      int
	activeCourses     int
	enrollments       int
	completionRate    float64
	averageScore      float64
	averageAttendance float64
	certificates      int
}

func measure(s Snapshot, r period.Range) periodMetrics {
	var m periodMetrics
	for _, t := range s.Trainees {
		if !existedBy(t.CreatedAt, r.End) {
			continue
		}
		m.totalStudents++
		if t.IsActive {
			m.activeStudents++
		}
	}
	for _, c := range s.Courses {
		if !existedBy(c.StartDate, r.End) {
			continue
		}
		m.totalCourses++
		var end time.Time
		if c.EndDate != nil {
			end = *c.EndDate
		}
		if r.Overlaps(c.StartDate, end) {
			m.activeCourses++
		}
	}

	enrolled := enrolledWithin(s.Enrollments, r)
	m.enrollments = len(enrolled)
	m.completionRate = stats.Rate(countStatus(enrolled, models.EnrollmentStatusCompleted), len(enrolled))
	m.averageScore = stats.Mean(finalScores(enrolled))
	m.averageAttendance = attendanceRate(attendanceWithin(s.Attendance, r))

	for _, cert := range s.Certificates {
		if r.Contains(cert.IssuedAt) {
			m.certificates++
		}
	}
	return m
}

// Summarize computes the headline figures for cur and compares them with prev.
// The two snapshots may be the same value when the source returned both periods at once.
func Summarize(current, previous Snapshot, cur, prev period.Range) models.AnalyticsSummary {
	now := measure(current, cur)
	before := measure(previous, prev)

	return models.AnalyticsSummary{
		PeriodStart:            cur.Start,
		PeriodEnd:              cur.End,
		TotalStudents:          now.totalStudents,
		ActiveStudents:         now.activeStudents,
		TotalCourses:           now.totalCourses,
		ActiveCourses:          now.activeCourses,
		TotalEnrollments:       now.enrollments,
		CompletionRate:         now.completionRate,
		AverageScore:           now.averageScore,
		AverageAttendance:      now.averageAttendance,
		CertificateCount:       now.certificates,
		StudentGrowth:          stats.GrowthRate(float64(now.totalStudents), float64(before.totalStudents)),
		ActiveCourseGrowth:     stats.GrowthRate(float64(now.activeCourses), float64(before.activeCourses)),
		CompletionRateGrowth:   stats.GrowthRate(now.completionRate, before.completionRate),
		AverageScoreGrowth:     stats.GrowthRate(now.averageScore, before.averageScore),
		PreviousTotalStudents:  before.totalStudents,
		PreviousActiveCourses:  before.activeCourses,
		PreviousCompletionRate: before.completionRate,
		PreviousAverageScore:   before.averageScore,
	}
}
