package models

import (
	"time"

	"github.com/noah-isme/training-admin-api/pkg/stats"
)

// AnalyticsSummary is the headline view of a reporting period compared with the
// period immediately before it.
type AnalyticsSummary struct {
	PeriodStart            time.Time `json:"period_start"`
	PeriodEnd              time.Time `json:"period_end"`
	TotalStudents          int       `json:"total_students"`
	ActiveStudents         int       `json:"active_students"`
	TotalCourses           int       `json:"total_courses"`
	ActiveCourses          int       `json:"active_courses"`
	TotalEnrollments       int       `json:"total_enrollments"`
	CompletionRate         float64   `json:"completion_rate"`
	AverageScore           float64   `json:"average_score"`
	AverageAttendance      float64   `json:"average_attendance"`
	CertificateCount       int       `json:"certificate_count"`
	StudentGrowth          float64   `json:"student_growth"`
	ActiveCourseGrowth     float64   `json:"active_course_growth"`
	CompletionRateGrowth   float64   `json:"completion_rate_growth"`
	AverageScoreGrowth     float64   `json:"average_score_growth"`
	PreviousTotalStudents  int       `json:"previous_total_students"`
	PreviousActiveCourses  int       `json:"previous_active_courses"`
	PreviousCompletionRate float64   `json:"previous_completion_rate"`
	PreviousAverageScore   float64   `json:"previous_average_score"`
}

// CoursePerformance aggregates one course's enrollments within a period.
type CoursePerformance struct {
	CourseID              string             `json:"course_id"`
	CourseName            string             `json:"course_name"`
	Category              string             `json:"category"`
	TotalEnrollments      int                `json:"total_enrollments"`
	CompletedCount        int                `json:"completed_count"`
	DroppedCount          int                `json:"dropped_count"`
	InProgressCount       int                `json:"in_progress_count"`
	CompletionRate        float64            `json:"completion_rate"`
	DropoutRate           float64            `json:"dropout_rate"`
	AverageScore          float64            `json:"average_score"`
	MedianScore           float64            `json:"median_score"`
	ScoreDistribution     stats.Distribution `json:"score_distribution"`
	AverageCompletionDays float64            `json:"average_completion_days"`
	FastestCompletionDays float64            `json:"fastest_completion_days"`
	SlowestCompletionDays float64            `json:"slowest_completion_days"`
	AverageAttendance     float64            `json:"average_attendance"`
	PerfectAttendance     int                `json:"perfect_attendance_count"`
	ExamPassRate          float64            `json:"exam_pass_rate"`
}

// StudentPerformance aggregates one trainee's enrollments and their leaderboard position.
type StudentPerformance struct {
	StudentID         string     `json:"student_id"`
	StudentName       string     `json:"student_name"`
	Department        string     `json:"department"`
	EnrolledCourses   int        `json:"enrolled_courses"`
	CompletedCourses  int        `json:"completed_courses"`
	InProgressCourses int        `json:"in_progress_courses"`
	DroppedCourses    int        `json:"dropped_courses"`
	AverageScore      float64    `json:"average_score"`
	HighestScore      float64    `json:"highest_score"`
	LowestScore       float64    `json:"lowest_score"`
	AttendanceRate    float64    `json:"attendance_rate"`
	TotalAbsences     int        `json:"total_absences"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
	Rank              int        `json:"rank"`
	Percentile        float64    `json:"percentile"`
}

// DepartmentStats groups trainees by department label.
type DepartmentStats struct {
	Department        string  `json:"department"`
	TotalStudents     int     `json:"total_students"`
	ActiveStudents    int     `json:"active_students"`
	TotalEnrollments  int     `json:"total_enrollments"`
	CompletedCount    int     `json:"completed_count"`
	CompletionRate    float64 `json:"completion_rate"`
	AverageScore      float64 `json:"average_score"`
	AverageAttendance float64 `json:"average_attendance"`
	CertificateCount  int     `json:"certificate_count"`
}

// TimeSeriesPoint is the rollup of a single calendar day.
type TimeSeriesPoint struct {
	Date           time.Time `json:"date"`
	NewEnrollments int       `json:"new_enrollments"`
	Completions    int       `json:"completions"`
	Dropouts       int       `json:"dropouts"`
	ActiveUsers    int       `json:"active_users"`
	AverageScore   float64   `json:"average_score"`
	AttendanceRate float64   `json:"attendance_rate"`
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio              float64   `json:"cache_hit_ratio"`
	CacheHits                  uint64    `json:"cache_hits"`
	CacheMisses                uint64    `json:"cache_misses"`
	RequestsTotal              uint64    `json:"requests_total"`
	AverageRequestDurationMs   float64   `json:"average_request_duration_ms"`
	SourceFetchCount           uint64    `json:"source_fetch_count"`
	AverageSourceFetchDuration float64   `json:"average_source_fetch_duration_ms"`
	ImportsCreated             uint64    `json:"imports_created"`
	ImportsFailed              uint64    `json:"imports_failed"`
	ImportsDuplicate           uint64    `json:"imports_duplicate"`
	ImportsRejected            uint64    `json:"imports_rejected"`
	ImportsUpdated             uint64    `json:"imports_updated"`
	Goroutines                 int       `json:"goroutines"`
	GeneratedAt                time.Time `json:"generated_at"`
}
