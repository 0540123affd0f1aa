package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

type standing struct {
	rank       int
	percentile float64
}

// StudentPerformances aggregates each trainee's enrollments as of the end of r
// and ranks trainees by average score. Rank is 1-based and ties keep snapshot order.
func StudentPerformances(s Snapshot, r period.Range) []models.StudentPerformance {
	enrollments := make(map[string][]models.Enrollment)
	for _, e := range enrolledBy(s.Enrollments, r.End) {
		enrollments[e.StudentID] = append(enrollments[e.StudentID], e)
	}
	attendance := make(map[string][]models.AttendanceRecord)
	for _, rec := range attendanceWithin(s.Attendance, r) {
		attendance[rec.StudentID] = append(attendance[rec.StudentID], rec)
	}
	lastExam := make(map[string]time.Time)
	for _, ex := range s.Exams {
		if r.Contains(ex.SubmittedAt) && ex.SubmittedAt.After(lastExam[ex.StudentID]) {
			lastExam[ex.StudentID] = ex.SubmittedAt
		}
	}

	seen := make(map[string]struct{}, len(s.Trainees))
	result := make([]models.StudentPerformance, 0, len(s.Trainees))
	for _, t := range s.Trainees {
		if _, dup := seen[t.ID]; dup || !existedBy(t.CreatedAt, r.End) {
			continue
		}
		seen[t.ID] = struct{}{}
		result = append(result, studentPerformance(t, enrollments[t.ID], attendance[t.ID], lastExam[t.ID], r.End))
	}

	standings := rank(result)
	for i := range result {
		st := standings[result[i].StudentID]
		result[i].Rank = st.rank
		result[i].Percentile = st.percentile
	}
	return result
}

func studentPerformance(t models.Trainee, enrollments []models.Enrollment, attendance []models.AttendanceRecord, lastExam, end time.Time) models.StudentPerformance {
	scores := finalScores(enrollments)
	completed := countStatus(enrollments, models.EnrollmentStatusCompleted)
	dropped := countStatus(enrollments, models.EnrollmentStatusDropped)

	absences := 0
	last := lastExam
	for _, rec := range attendance {
		if rec.Status == models.AttendanceStatusAbsent {
			absences++
		}
		if rec.Date.After(last) {
			last = rec.Date
		}
	}
	for _, e := range enrollments {
		if !e.UpdatedAt.After(end) && e.UpdatedAt.After(last) {
			last = e.UpdatedAt
		}
	}

	perf := models.StudentPerformance{
		StudentID:         t.ID,
		StudentName:       t.Name,
		Department:        t.DepartmentLabel(),
		EnrolledCourses:   len(enrollments),
		CompletedCourses:  completed,
		DroppedCourses:    dropped,
		InProgressCourses: len(enrollments) - completed - dropped,
		AverageScore:      stats.Mean(scores),
		HighestScore:      stats.Max(scores),
		LowestScore:       stats.Min(scores),
		AttendanceRate:    attendanceRate(attendance),
		TotalAbsences:     absences,
	}
	if !last.IsZero() {
		perf.LastActivity = &last
	}
	return perf
}

// rank orders an index array by average score and builds the lookup in a
// separate pass so no entry's standing depends on visiting order.
func rank(perfs []models.StudentPerformance) map[string]standing {
	order := make([]int, len(perfs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return perfs[order[a]].AverageScore > perfs[order[b]].AverageScore
	})

	standings := make(map[string]standing, len(order))
	for pos, idx := range order {
		standings[perfs[idx].StudentID] = standing{
			rank:       pos + 1,
			percentile: stats.PercentileRank(pos, len(order)),
		}
	}
	return standings
}
