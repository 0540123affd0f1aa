package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/training-admin-api/internal/analytics"
	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/period"
)

// RecordSource supplies the raw records analytics run over.
type RecordSource interface {
	ListTrainees(ctx context.Context, filter models.RecordFilter) ([]models.Trainee, error)
	ListCourses(ctx context.Context, filter models.RecordFilter) ([]models.Course, error)
	ListEnrollments(ctx context.Context, filter models.RecordFilter) ([]models.Enrollment, error)
	ListAttendance(ctx context.Context, filter models.RecordFilter) ([]models.AttendanceRecord, error)
	ListExamSubmissions(ctx context.Context, filter models.RecordFilter) ([]models.ExamSubmission, error)
	ListCertificates(ctx context.Context, filter models.RecordFilter) ([]models.Certificate, error)
}

// Analytics cache entities.
const (
	EntitySummary     = "summary"
	EntityCourses     = "courses"
	EntityStudents    = "students"
	EntityDepartments = "departments"
	EntityTimeSeries  = "timeseries"
)

var analyticsEntities = map[string]struct{}{
	EntitySummary: {}, EntityCourses: {}, EntityStudents: {}, EntityDepartments: {}, EntityTimeSeries: {},
}

// AnalyticsRequest selects the period and scope of an analytics query.
type AnalyticsRequest struct {
	Selector period.Selector
	Explicit *period.Range
	CourseID string
	Days     int
}

// AnalyticsServiceConfig tunes analytics behaviour.
type AnalyticsServiceConfig struct {
	PassThreshold     float64
	DefaultSeriesDays int
	MaxSeriesDays     int
}

// AnalyticsService resolves periods, loads record snapshots and runs the
// aggregation engine with cache integration.
type AnalyticsService struct {
	source   RecordSource
	cache    *CacheService
	metrics  *MetricsService
	resolver *period.Resolver
	cfg      AnalyticsServiceConfig
	logger   *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(source RecordSource, cache *CacheService, metrics *MetricsService, resolver *period.Resolver, cfg AnalyticsServiceConfig, logger *zap.Logger) *AnalyticsService {
	if resolver == nil {
		resolver = period.NewResolver(time.UTC)
	}
	if cfg.PassThreshold <= 0 {
		cfg.PassThreshold = analytics.DefaultPassThreshold
	}
	if cfg.DefaultSeriesDays <= 0 {
		cfg.DefaultSeriesDays = 30
	}
	if cfg.MaxSeriesDays <= 0 {
		cfg.MaxSeriesDays = 366
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{source: source, cache: cache, metrics: metrics, resolver: resolver, cfg: cfg, logger: logger}
}

// Resolve maps the request onto a concrete period.
func (s *AnalyticsService) Resolve(req AnalyticsRequest) (period.Range, error) {
	return s.resolver.Resolve(req.Selector, req.Explicit)
}

// Summary compares the requested period with the one immediately before it.
// The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Summary(ctx context.Context, req AnalyticsRequest) (*models.AnalyticsSummary, bool, error) {
	cur, err := s.Resolve(req)
	if err != nil {
		return nil, false, err
	}
	prev := period.Previous(cur)
	key := makeAnalyticsCacheKey(EntitySummary, req.CourseID, rangeKey(req.Selector, cur))

	return cached(ctx, s.cache, key, func(ctx context.Context) (*models.AnalyticsSummary, error) {
		var current, previous analytics.Snapshot
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			current, err = s.fetchSnapshot(gctx, s.filter(cur, req.CourseID), summaryTables)
			return err
		})
		g.Go(func() error {
			var err error
			previous, err = s.fetchSnapshot(gctx, s.filter(prev, req.CourseID), summaryTables)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		summary := analytics.Summarize(current, previous, cur, prev)
		return &summary, nil
	})
}

// Courses reports per-course performance, optionally for a single course.
func (s *AnalyticsService) Courses(ctx context.Context, req AnalyticsRequest) ([]models.CoursePerformance, bool, error) {
	r, err := s.Resolve(req)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey(EntityCourses, req.CourseID, rangeKey(req.Selector, r))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.CoursePerformance, error) {
		snap, err := s.fetchSnapshot(ctx, s.filter(r, req.CourseID), courseTables)
		if err != nil {
			return nil, err
		}
		return analytics.CoursePerformances(snap, req.CourseID, r, s.cfg.PassThreshold), nil
	})
}

// Students reports per-trainee performance with leaderboard standing.
func (s *AnalyticsService) Students(ctx context.Context, req AnalyticsRequest) ([]models.StudentPerformance, bool, error) {
	r, err := s.Resolve(req)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey(EntityStudents, req.CourseID, rangeKey(req.Selector, r))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.StudentPerformance, error) {
		snap, err := s.fetchSnapshot(ctx, s.filter(r, req.CourseID), studentTables)
		if err != nil {
			return nil, err
		}
		return analytics.StudentPerformances(snap, r), nil
	})
}

// Departments groups every trainee by department over all recorded history.
func (s *AnalyticsService) Departments(ctx context.Context) ([]models.DepartmentStats, bool, error) {
	key := makeAnalyticsCacheKey(EntityDepartments, "all")
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.DepartmentStats, error) {
		snap, err := s.fetchSnapshot(ctx, models.RecordFilter{}, departmentTables)
		if err != nil {
			return nil, err
		}
		return analytics.DepartmentStatistics(snap), nil
	})
}

// TimeSeries returns one point per day ending on the day the resolved period ends.
// Days defaults to the configured window and is capped at the configured maximum;
// a negative value yields no points.
func (s *AnalyticsService) TimeSeries(ctx context.Context, req AnalyticsRequest) ([]models.TimeSeriesPoint, bool, error) {
	r, err := s.Resolve(req)
	if err != nil {
		return nil, false, err
	}
	days := req.Days
	if days == 0 {
		days = s.cfg.DefaultSeriesDays
	}
	if days > s.cfg.MaxSeriesDays {
		days = s.cfg.MaxSeriesDays
	}
	if days < 0 {
		return []models.TimeSeriesPoint{}, false, nil
	}

	loc := s.resolver.Location()
	anchor := r.End.In(loc)
	window := period.Range{
		Start: period.DayStart(anchor).AddDate(0, 0, -(days - 1)),
		End:   now.With(anchor).EndOfDay(),
	}
	key := makeAnalyticsCacheKey(EntityTimeSeries, req.CourseID, strconv.Itoa(days), rangeKey(req.Selector, r))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.TimeSeriesPoint, error) {
		filter := s.filter(window, req.CourseID)
		snap, err := s.fetchSnapshot(ctx, filter, seriesTables)
		if err != nil {
			return nil, err
		}
		return analytics.TimeSeries(snap, days, anchor, loc), nil
	})
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	if s.metrics == nil {
		return models.AnalyticsSystemMetrics{}
	}
	return s.metrics.Snapshot()
}

// Invalidate drops cached results for entity, or for every entity when empty.
func (s *AnalyticsService) Invalidate(ctx context.Context, entity string) error {
	entity = strings.ToLower(strings.TrimSpace(entity))
	pattern := "analytics:*"
	if entity != "" {
		if _, ok := analyticsEntities[entity]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown analytics entity %q", entity))
		}
		pattern = "analytics:" + entity + ":*"
	}
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalidate analytics cache")
	}
	s.logger.Info("analytics cache invalidated", zap.String("pattern", pattern))
	return nil
}

// Warm recomputes the default summary so the next dashboard load hits the cache.
func (s *AnalyticsService) Warm(ctx context.Context) error {
	_, _, err := s.Summary(ctx, AnalyticsRequest{Selector: period.DefaultSelector})
	return err
}

func (s *AnalyticsService) filter(r period.Range, courseID string) models.RecordFilter {
	start, end := r.Start, r.End
	return models.RecordFilter{DateFrom: &start, DateTo: &end, CourseID: courseID}
}

type table uint8

const (
	tableTrainees table = 1 << iota
	tableCourses
	tableEnrollments
	tableAttendance
	tableExams
	tableCertificates
)

const (
	summaryTables    = tableTrainees | tableCourses | tableEnrollments | tableAttendance | tableCertificates
	courseTables     = tableCourses | tableEnrollments | tableAttendance | tableExams
	studentTables    = tableTrainees | tableEnrollments | tableAttendance | tableExams
	departmentTables = tableTrainees | tableEnrollments | tableAttendance | tableCertificates
	seriesTables     = tableEnrollments | tableAttendance | tableExams
)

// fetchSnapshot issues one query per requested table concurrently. The first
// failure cancels the others and is returned as an upstream fetch error.
func (s *AnalyticsService) fetchSnapshot(ctx context.Context, filter models.RecordFilter, tables table) (analytics.Snapshot, error) {
	var snap analytics.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	if tables&tableTrainees != 0 {
		g.Go(func() (err error) {
			snap.Trainees, err = fetch(gctx, s, "trainees", filter, s.source.ListTrainees)
			return err
		})
	}
	if tables&tableCourses != 0 {
		g.Go(func() (err error) {
			snap.Courses, err = fetch(gctx, s, "courses", filter, s.source.ListCourses)
			return err
		})
	}
	if tables&tableEnrollments != 0 {
		g.Go(func() (err error) {
			snap.Enrollments, err = fetch(gctx, s, "enrollments", filter, s.source.ListEnrollments)
			return err
		})
	}
	if tables&tableAttendance != 0 {
		g.Go(func() (err error) {
			snap.Attendance, err = fetch(gctx, s, "attendance", filter, s.source.ListAttendance)
			return err
		})
	}
	if tables&tableExams != 0 {
		g.Go(func() (err error) {
			snap.Exams, err = fetch(gctx, s, "exam_submissions", filter, s.source.ListExamSubmissions)
			return err
		})
	}
	if tables&tableCertificates != 0 {
		g.Go(func() (err error) {
			snap.Certificates, err = fetch(gctx, s, "certificates", filter, s.source.ListCertificates)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return analytics.Snapshot{}, err
	}
	return snap, nil
}

func fetch[T any](ctx context.Context, s *AnalyticsService, label string, filter models.RecordFilter, list func(context.Context, models.RecordFilter) ([]T, error)) ([]T, error) {
	start := time.Now()
	rows, err := list(ctx, filter)
	s.metrics.ObserveSourceFetch(label, time.Since(start))
	if err != nil {
		s.logger.Warn("record source fetch failed", zap.String("query", label), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUpstreamFetch.Code, appErrors.ErrUpstreamFetch.Status, "fetch "+label)
	}
	return rows, nil
}

// rangeKey keys named selectors by name so repeated requests share an entry
// until the cache TTL expires. Custom ranges key on their bounds.
func rangeKey(sel period.Selector, r period.Range) string {
	if sel == "" {
		sel = period.DefaultSelector
	}
	if sel != period.Custom {
		return string(sel)
	}
	return r.Key()
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			part = "-"
		}
		builder.WriteByte(':')
		builder.WriteString(strings.NewReplacer(":", "|", "*", "_", "/", "_").Replace(part))
	}
	return builder.String()
}
