package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

type fakeTraineeStore struct {
	existing   []models.Trainee
	findErr    error
	failEmails map[string]error
	created    []models.Trainee
	updated    map[string]models.Trainee
	onCreate   func()
	lookups    [][]string
}

func (f *fakeTraineeStore) FindByIdentity(_ context.Context, emails, externalIDs []string) ([]models.Trainee, error) {
	f.lookups = append(f.lookups, emails, externalIDs)
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.existing, nil
}

func (f *fakeTraineeStore) Create(_ context.Context, trainee *models.Trainee) error {
	if f.onCreate != nil {
		f.onCreate()
	}
	if err := f.failEmails[trainee.Email]; err != nil {
		return err
	}
	trainee.ID = "new-" + trainee.ExternalID
	f.created = append(f.created, *trainee)
	return nil
}

func (f *fakeTraineeStore) UpdateByID(_ context.Context, id string, trainee *models.Trainee) error {
	if id == "missing" {
		return appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
	}
	if f.updated == nil {
		f.updated = map[string]models.Trainee{}
	}
	f.updated[id] = *trainee
	return nil
}

type recordingInvalidator struct {
	calls []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, entity string) error {
	r.calls = append(r.calls, entity)
	return nil
}

func importTable() spreadsheet.Table {
	return spreadsheet.Table{
		Headers: []string{"이름", "이메일", "전화번호", "사번", "부서", "입사일"},
		Rows: [][]string{
			{"김철수", "kim@example.com", "010-1111-2222", "E1", "영업", "2023-01-02"},
			{"이영희", "lee@example.com", "010-3333-4444", "E2", "개발", ""},
			{"박민수", "bad-email", "010-5555-6666", "E3", "개발", ""},
			{"최지우", "choi@example.com", "010-7777-8888", "E4", "인사", ""},
			{"", "", "", "", "", ""},
			{"정하늘", "jung@example.com", "010-9999-0000", "E5", "", ""},
		},
	}
}

func TestImportBucketsEveryRow(t *testing.T) {
	store := &fakeTraineeStore{
		existing:   []models.Trainee{{ID: "t-1", Email: "LEE@example.com", ExternalID: "X"}},
		failEmails: map[string]error{"choi@example.com": errors.New("insert failed")},
	}
	invalidator := &recordingInvalidator{}
	metrics := NewMetricsService()
	svc := NewImportService(nil, store, invalidator, metrics, zap.NewNop())

	report, err := svc.Import(context.Background(), importTable())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 2, report.Rejected)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, 4, report.Errors[0].Row)
	assert.Equal(t, models.FieldEmail, report.Errors[0].Field)
	assert.Equal(t, 7, report.Errors[1].Row)
	assert.Equal(t, models.FieldDepartment, report.Errors[1].Field)

	require.Len(t, report.Created, 1)
	assert.Equal(t, "new-E1", report.Created[0].ID)
	assert.True(t, report.Created[0].IsActive)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "insert failed", report.Failed[0].Reason)
	assert.Equal(t, 5, report.Failed[0].Candidate.Row)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, models.MatchEmail, report.Duplicates[0].MatchedOn)

	assert.Equal(t, report.Total-report.Rejected, len(report.Created)+len(report.Failed)+len(report.Duplicates))
	assert.Equal(t, []string{""}, invalidator.calls)
	assert.Equal(t, []string{"kim@example.com", "lee@example.com", "choi@example.com"}, store.lookups[0])

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.ImportsCreated)
	assert.Equal(t, uint64(1), snapshot.ImportsFailed)
	assert.Equal(t, uint64(1), snapshot.ImportsDuplicate)
	assert.Equal(t, uint64(2), snapshot.ImportsRejected)
}

func sharedEmailTable() spreadsheet.Table {
	return spreadsheet.Table{
		Headers: []string{"이름", "이메일", "전화번호", "사번", "부서"},
		Rows: [][]string{
			{"김철수", "kim@example.com", "010-1111-2222", "E1", "영업"},
			{"김철수", "KIM@example.com", "010-1111-2223", "E2", "영업"},
			{"이영희", "lee@example.com", "010-3333-4444", "E1", "개발"},
		},
	}
}

func TestImportRepeatedIdentityBecomesDuplicateOfCreatedRow(t *testing.T) {
	store := &fakeTraineeStore{}
	svc := NewImportService(nil, store, nil, NewMetricsService(), nil)

	report, err := svc.Import(context.Background(), sharedEmailTable())
	require.NoError(t, err)

	require.Len(t, report.Created, 1)
	assert.Len(t, store.created, 1)
	assert.Empty(t, report.Failed)
	require.Len(t, report.Duplicates, 2)
	for _, d := range report.Duplicates {
		assert.Equal(t, 2, d.EarlierRow)
		assert.Equal(t, "new-E1", d.Existing.ID)
	}
	assert.Equal(t, models.MatchEmail, report.Duplicates[0].MatchedOn)
	assert.Equal(t, models.MatchExternalID, report.Duplicates[1].MatchedOn)
	assert.Equal(t, report.Total-report.Rejected, len(report.Created)+len(report.Failed)+len(report.Duplicates))
}

func TestImportRepeatedIdentityFailsWhenEarlierRowFailed(t *testing.T) {
	store := &fakeTraineeStore{failEmails: map[string]error{"kim@example.com": errors.New("insert failed")}}
	metrics := NewMetricsService()
	svc := NewImportService(nil, store, nil, metrics, nil)

	report, err := svc.Import(context.Background(), sharedEmailTable())
	require.NoError(t, err)

	assert.Empty(t, report.Created)
	assert.Empty(t, report.Duplicates)
	require.Len(t, report.Failed, 3)
	assert.Equal(t, "insert failed", report.Failed[0].Reason)
	assert.Equal(t, "same email as row 2, which was not created", report.Failed[1].Reason)
	assert.Equal(t, "same external_id as row 2, which was not created", report.Failed[2].Reason)
	assert.Equal(t, uint64(3), metrics.Snapshot().ImportsFailed)
}

func TestPreviewFlagsRepeatedIdentity(t *testing.T) {
	svc := NewImportService(nil, &fakeTraineeStore{}, nil, nil, nil)

	preview, err := svc.Preview(context.Background(), sharedEmailTable())
	require.NoError(t, err)
	assert.Len(t, preview.Classification.New, 1)
	require.Len(t, preview.Classification.Duplicates, 2)
	assert.Equal(t, 2, preview.Classification.Duplicates[0].EarlierRow)
}

func TestImportWithoutCreationsSkipsInvalidation(t *testing.T) {
	store := &fakeTraineeStore{failEmails: map[string]error{
		"kim@example.com":  errors.New("x"),
		"lee@example.com":  errors.New("x"),
		"choi@example.com": errors.New("x"),
	}}
	invalidator := &recordingInvalidator{}
	svc := NewImportService(nil, store, invalidator, nil, nil)

	report, err := svc.Import(context.Background(), importTable())
	require.NoError(t, err)
	assert.Len(t, report.Failed, 3)
	assert.Empty(t, invalidator.calls)
}

func TestImportStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &fakeTraineeStore{onCreate: cancel}
	svc := NewImportService(nil, store, nil, nil, nil)

	report, err := svc.Import(ctx, importTable())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, report)
	assert.Len(t, report.Created, 1)
	assert.Empty(t, report.Failed)
}

func TestImportLookupFailureIsUpstreamError(t *testing.T) {
	store := &fakeTraineeStore{findErr: errors.New("connection refused")}
	svc := NewImportService(nil, store, nil, nil, nil)

	_, err := svc.Import(context.Background(), importTable())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUpstreamFetch))
	assert.Empty(t, store.created)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	store := &fakeTraineeStore{existing: []models.Trainee{{ID: "t-9", Email: "zzz@example.com", ExternalID: "E4"}}}
	svc := NewImportService(nil, store, nil, nil, nil)

	preview, err := svc.Preview(context.Background(), importTable())
	require.NoError(t, err)
	assert.Equal(t, 5, preview.Total)
	assert.Len(t, preview.Rows, 5)
	assert.Len(t, preview.Errors, 2)
	assert.Len(t, preview.Classification.New, 2)
	require.Len(t, preview.Classification.Duplicates, 1)
	assert.Equal(t, models.MatchExternalID, preview.Classification.Duplicates[0].MatchedOn)
	assert.Empty(t, store.created)
}

func TestResolveDuplicates(t *testing.T) {
	store := &fakeTraineeStore{}
	invalidator := &recordingInvalidator{}
	svc := NewImportService(nil, store, invalidator, nil, nil)
	candidate := ToCandidate(validRow(2))

	report, err := svc.ResolveDuplicates(context.Background(), []models.DuplicateDecision{
		{ExistingID: "t-1", Action: models.DuplicateActionUpdate, Candidate: candidate},
		{ExistingID: "t-2", Action: models.DuplicateActionSkip, Candidate: candidate},
		{ExistingID: "missing", Action: models.DuplicateActionUpdate, Candidate: candidate},
		{ExistingID: "t-3", Action: "merge", Candidate: candidate},
		{ExistingID: "t-4", Action: models.DuplicateActionUpdate, Candidate: models.ImportCandidate{Row: 9, Name: "only name"}},
	})
	require.NoError(t, err)

	require.Len(t, report.Updated, 1)
	assert.Equal(t, "t-1", report.Updated[0].ID)
	assert.Equal(t, candidate.Email, store.updated["t-1"].Email)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Failed, 3)
	assert.Contains(t, report.Failed[1].Reason, "invalid decision")
	assert.Equal(t, 9, report.Failed[2].Candidate.Row)
	assert.Equal(t, []string{""}, invalidator.calls)
}
