package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

type traineeStore interface {
	FindByIdentity(ctx context.Context, emails, externalIDs []string) ([]models.Trainee, error)
	Create(ctx context.Context, trainee *models.Trainee) error
	UpdateByID(ctx context.Context, id string, trainee *models.Trainee) error
}

type analyticsInvalidator interface {
	Invalidate(ctx context.Context, entity string) error
}

// ImportService runs bulk trainee imports: validation, duplicate
// classification and one-at-a-time creation.
type ImportService struct {
	validator   *ImportValidator
	store       traineeStore
	invalidator analyticsInvalidator
	metrics     *MetricsService
	decisions   *validator.Validate
	logger      *zap.Logger
}

// NewImportService wires the import pipeline. invalidator and metrics may be nil.
func NewImportService(v *ImportValidator, store traineeStore, invalidator analyticsInvalidator, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if v == nil {
		v = NewImportValidator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		validator:   v,
		store:       store,
		invalidator: invalidator,
		metrics:     metrics,
		decisions:   validator.New(),
		logger:      logger,
	}
}

type stagedImport struct {
	rows       []models.RawRow
	errors     []models.ValidationError
	candidates []models.ImportCandidate
	rejected   int
}

func (s *ImportService) stage(table spreadsheet.Table) stagedImport {
	rows := s.validator.RowsFromTable(table)
	errs := s.validator.Validate(rows)

	bad := make(map[int]struct{}, len(errs))
	for _, e := range errs {
		bad[e.Row] = struct{}{}
	}
	staged := stagedImport{rows: rows, errors: errs, candidates: make([]models.ImportCandidate, 0, len(rows))}
	for _, row := range rows {
		if _, rejected := bad[row.Number]; rejected {
			staged.rejected++
			continue
		}
		staged.candidates = append(staged.candidates, ToCandidate(row))
	}
	return staged
}

func (s *ImportService) classify(ctx context.Context, candidates []models.ImportCandidate) (models.Classification, error) {
	emails, ids := identityKeys(candidates)
	existing, err := s.store.FindByIdentity(ctx, emails, ids)
	if err != nil {
		return models.Classification{}, appErrors.Wrap(err, appErrors.ErrUpstreamFetch.Code, appErrors.ErrUpstreamFetch.Status, "look up existing trainees")
	}
	return Classify(candidates, existing), nil
}

// Preview validates and classifies without writing anything.
func (s *ImportService) Preview(ctx context.Context, table spreadsheet.Table) (*models.ImportPreview, error) {
	staged := s.stage(table)
	classification, err := s.classify(ctx, staged.candidates)
	if err != nil {
		return nil, err
	}
	return &models.ImportPreview{
		Total:          len(staged.rows),
		Rows:           staged.rows,
		Errors:         staged.errors,
		Classification: classification,
	}, nil
}

// Import creates every new candidate. Rows with validation errors are
// rejected whole, duplicates are returned for a later decision, and a failed
// create is reported without stopping the run. Cancellation stops the run and
// returns the partial report alongside the context error.
func (s *ImportService) Import(ctx context.Context, table spreadsheet.Table) (*models.ImportReport, error) {
	staged := s.stage(table)
	report := &models.ImportReport{
		Total:      len(staged.rows),
		Rejected:   staged.rejected,
		Errors:     staged.errors,
		Created:    make([]models.Trainee, 0),
		Failed:     make([]models.FailedImport, 0),
		Duplicates: make([]models.DuplicateMatch, 0),
	}
	s.metrics.RecordImportOutcome(ImportOutcomeRejected, staged.rejected)

	classification, err := s.classify(ctx, staged.candidates)
	if err != nil {
		return report, err
	}
	var inBatch []models.DuplicateMatch
	for _, d := range classification.Duplicates {
		if d.EarlierRow != 0 {
			inBatch = append(inBatch, d)
			continue
		}
		report.Duplicates = append(report.Duplicates, d)
	}

	defer func() {
		s.metrics.RecordImportOutcome(ImportOutcomeCreated, len(report.Created))
		s.metrics.RecordImportOutcome(ImportOutcomeFailed, len(report.Failed))
		s.metrics.RecordImportOutcome(ImportOutcomeDuplicate, len(report.Duplicates))
		if len(report.Created) > 0 {
			s.invalidate(ctx)
		}
	}()

	createdByRow := make(map[int]models.Trainee, len(classification.New))
	for _, candidate := range classification.New {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		trainee := candidate.Trainee()
		if err := s.store.Create(ctx, &trainee); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			s.logger.Warn("trainee import row failed", requestid.Field(ctx), zap.Int("row", candidate.Row), zap.Error(err))
			report.Failed = append(report.Failed, models.FailedImport{Candidate: candidate, Reason: err.Error()})
			continue
		}
		report.Created = append(report.Created, trainee)
		createdByRow[candidate.Row] = trainee
	}

	// Rows that repeat an earlier row of this upload become duplicates of the
	// trainee that row created, so they can be resolved like any other.
	for _, d := range inBatch {
		owner, ok := createdByRow[d.EarlierRow]
		if !ok {
			report.Failed = append(report.Failed, models.FailedImport{
				Candidate: d.Candidate,
				Reason:    fmt.Sprintf("same %s as row %d, which was not created", d.MatchedOn, d.EarlierRow),
			})
			continue
		}
		d.Existing = owner
		report.Duplicates = append(report.Duplicates, d)
	}

	s.logger.Info("trainee import finished",
		requestid.Field(ctx),
		zap.Int("total", report.Total),
		zap.Int("rejected", report.Rejected),
		zap.Int("created", len(report.Created)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("duplicates", len(report.Duplicates)),
	)
	return report, nil
}

// ResolveDuplicates applies caller decisions to previously reported duplicates.
func (s *ImportService) ResolveDuplicates(ctx context.Context, decisions []models.DuplicateDecision) (*models.ResolutionReport, error) {
	report := &models.ResolutionReport{Updated: make([]models.Trainee, 0), Failed: make([]models.FailedImport, 0)}
	defer func() {
		s.metrics.RecordImportOutcome(ImportOutcomeUpdated, len(report.Updated))
		if len(report.Updated) > 0 {
			s.invalidate(ctx)
		}
	}()

	for _, decision := range decisions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.decisions.Struct(decision); err != nil {
			report.Failed = append(report.Failed, models.FailedImport{Candidate: decision.Candidate, Reason: "invalid decision: " + err.Error()})
			continue
		}
		if decision.Action == models.DuplicateActionSkip {
			report.Skipped++
			continue
		}
		if errs := s.validator.Validate([]models.RawRow{CandidateRow(decision.Candidate)}); len(errs) > 0 {
			report.Failed = append(report.Failed, models.FailedImport{Candidate: decision.Candidate, Reason: fmt.Sprintf("%s: %s", errs[0].Label, errs[0].Message)})
			continue
		}
		trainee := decision.Candidate.Trainee()
		if err := s.store.UpdateByID(ctx, decision.ExistingID, &trainee); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, ctxErr
			}
			s.logger.Warn("duplicate update failed", zap.String("existing_id", decision.ExistingID), zap.Error(err))
			report.Failed = append(report.Failed, models.FailedImport{Candidate: decision.Candidate, Reason: err.Error()})
			continue
		}
		trainee.ID = decision.ExistingID
		report.Updated = append(report.Updated, trainee)
	}
	return report, nil
}

func (s *ImportService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(context.WithoutCancel(ctx), ""); err != nil {
		s.logger.Warn("analytics cache invalidation after import failed", zap.Error(err))
	}
}
