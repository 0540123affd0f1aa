package analytics

import (
	"sort"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

type departmentGroup struct {
	name        string
	students    []models.Trainee
	enrollments []models.Enrollment
	attendance  []models.AttendanceRecord
	certs       int
}

// DepartmentStatistics groups every trainee in the snapshot by department
// label, ordered by head count with ties in first-seen order.
func DepartmentStatistics(s Snapshot) []models.DepartmentStats {
	groupOf := make(map[string]*departmentGroup)
	studentGroup := make(map[string]*departmentGroup, len(s.Trainees))
	var groups []*departmentGroup

	for _, t := range s.Trainees {
		if _, dup := studentGroup[t.ID]; dup {
			continue
		}
		label := t.DepartmentLabel()
		g, ok := groupOf[label]
		if !ok {
			g = &departmentGroup{name: label}
			groupOf[label] = g
			groups = append(groups, g)
		}
		g.students = append(g.students, t)
		studentGroup[t.ID] = g
	}
	for _, e := range s.Enrollments {
		if g, ok := studentGroup[e.StudentID]; ok {
			g.enrollments = append(g.enrollments, e)
		}
	}
	for _, rec := range s.Attendance {
		if g, ok := studentGroup[rec.StudentID]; ok {
			g.attendance = append(g.attendance, rec)
		}
	}
	for _, cert := range s.Certificates {
		if g, ok := studentGroup[cert.StudentID]; ok {
			g.certs++
		}
	}

	result := make([]models.DepartmentStats, 0, len(groups))
	for _, g := range groups {
		active := 0
		for _, t := range g.students {
			if t.IsActive {
				active++
			}
		}
		completed := countStatus(g.enrollments, models.EnrollmentStatusCompleted)
		result = append(result, models.DepartmentStats{
			Department:        g.name,
			TotalStudents:     len(g.students),
			ActiveStudents:    active,
			TotalEnrollments:  len(g.enrollments),
			CompletedCount:    completed,
			CompletionRate:    stats.Rate(completed, len(g.enrollments)),
			AverageScore:      stats.Mean(finalScores(g.enrollments)),
			AverageAttendance: attendanceRate(g.attendance),
			CertificateCount:  g.certs,
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalStudents > result[j].TotalStudents
	})
	return result
}
