package analytics

import (
	"iter"
	"slices"
	"time"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/period"
	"github.com/noah-isme/training-admin-api/pkg/stats"
)

const dayKeyLayout = "2006-01-02"

type dayBucket struct {
	enrollments int
	completions int
	dropouts    int
	active      map[string]struct{}
	examPct     []float64
	attendance  []models.AttendanceRecord
}

// TimeSeriesSeq yields one point per calendar day in loc, the last one being
// anchor's day. Each range over the sequence recomputes from the snapshot.
func TimeSeriesSeq(s Snapshot, days int, anchor time.Time, loc *time.Location) iter.Seq[models.TimeSeriesPoint] {
	if loc == nil {
		loc = time.UTC
	}
	return func(yield func(models.TimeSeriesPoint) bool) {
		dates := period.Days(anchor.In(loc), days)
		if len(dates) == 0 {
			return
		}
		buckets := bucketByDay(s, loc)
		for _, day := range dates {
			b := buckets[day.Format(dayKeyLayout)]
			point := models.TimeSeriesPoint{Date: day}
			if b != nil {
				point.NewEnrollments = b.enrollments
				point.Completions = b.completions
				point.Dropouts = b.dropouts
				point.ActiveUsers = len(b.active)
				point.AverageScore = stats.Mean(b.examPct)
				point.AttendanceRate = attendanceRate(b.attendance)
			}
			if !yield(point) {
				return
			}
		}
	}
}

// TimeSeries collects TimeSeriesSeq. It always returns max(days, 0) points.
func TimeSeries(s Snapshot, days int, anchor time.Time, loc *time.Location) []models.TimeSeriesPoint {
	points := slices.Collect(TimeSeriesSeq(s, days, anchor, loc))
	if points == nil {
		points = []models.TimeSeriesPoint{}
	}
	return points
}

func bucketByDay(s Snapshot, loc *time.Location) map[string]*dayBucket {
	buckets := make(map[string]*dayBucket)
	at := func(t time.Time) *dayBucket {
		key := t.In(loc).Format(dayKeyLayout)
		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{active: make(map[string]struct{})}
			buckets[key] = b
		}
		return b
	}

	for _, e := range s.Enrollments {
		if !e.EnrolledAt.IsZero() {
			at(e.EnrolledAt).enrollments++
		}
		if e.Status == models.EnrollmentStatusCompleted && e.CompletionDate != nil {
			at(*e.CompletionDate).completions++
		}
		if e.Status == models.EnrollmentStatusDropped && !e.UpdatedAt.IsZero() {
			at(e.UpdatedAt).dropouts++
		}
	}
	for _, rec := range s.Attendance {
		b := at(rec.Date)
		b.attendance = append(b.attendance, rec)
		if rec.Status.Attended() {
			b.active[rec.StudentID] = struct{}{}
		}
	}
	for _, ex := range s.Exams {
		b := at(ex.SubmittedAt)
		b.examPct = append(b.examPct, ex.Percentage())
		b.active[ex.StudentID] = struct{}{}
	}
	return buckets
}
