package service

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

func validRow(number int) models.RawRow {
	return models.RawRow{Number: number, Fields: map[models.ImportField]string{
		models.FieldName:       "김철수",
		models.FieldEmail:      "kim@example.com",
		models.FieldPhone:      "010-1234-5678",
		models.FieldExternalID: "E100",
		models.FieldDepartment: "영업",
		models.FieldHireDate:   "2023-03-02",
	}}
}

func withField(row models.RawRow, field models.ImportField, value string) models.RawRow {
	fields := make(map[models.ImportField]string, len(row.Fields)+1)
	for k, v := range row.Fields {
		fields[k] = v
	}
	fields[field] = value
	return models.RawRow{Number: row.Number, Fields: fields}
}

func fieldsOf(errs []models.ValidationError) []models.ImportField {
	out := make([]models.ImportField, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateAcceptsWellFormedRow(t *testing.T) {
	v := NewImportValidator(nil)
	assert.Empty(t, v.Validate([]models.RawRow{validRow(2)}))
}

func TestValidateCollectsEveryProblemInFieldOrder(t *testing.T) {
	v := NewImportValidator(nil)
	row := models.RawRow{Number: 5, Fields: map[models.ImportField]string{
		models.FieldEmail:         "not-an-email",
		models.FieldPhone:         "02-123-4567",
		models.FieldHireDate:      "2023-02-30",
		models.FieldEmergencyName: "박영희",
	}}

	errs := v.Validate([]models.RawRow{row})
	assert.Equal(t, []models.ImportField{
		models.FieldName,
		models.FieldEmail,
		models.FieldPhone,
		models.FieldExternalID,
		models.FieldDepartment,
		models.FieldHireDate,
		models.FieldEmergencyPhone,
	}, fieldsOf(errs))
	for _, e := range errs {
		assert.Equal(t, 5, e.Row)
		assert.NotEmpty(t, e.Label)
		assert.NotEmpty(t, e.Message)
	}
	assert.Equal(t, "not-an-email", errs[1].Value)
	assert.Contains(t, errs[1].Message, "이메일")
}

func TestValidatePhoneAndEmailShapes(t *testing.T) {
	v := NewImportValidator(nil)
	cases := []struct {
		field models.ImportField
		value string
		ok    bool
	}{
		{models.FieldPhone, "010-123-4567", true},
		{models.FieldPhone, "01012345678", false},
		{models.FieldPhone, "110-1234-5678", false},
		{models.FieldEmail, "a@b.co", true},
		{models.FieldEmail, "a b@c.com", false},
		{models.FieldEmail, "a@bcom", false},
		{models.FieldHireDate, "", true},
		{models.FieldHireDate, "2024/01/01", false},
		{models.FieldHireDate, "2024-02-29", true},
	}
	for _, tc := range cases {
		errs := v.Validate([]models.RawRow{withField(validRow(2), tc.field, tc.value)})
		if tc.ok {
			assert.Empty(t, errs, "%s=%q", tc.field, tc.value)
		} else {
			assert.Equal(t, []models.ImportField{tc.field}, fieldsOf(errs), "%s=%q", tc.field, tc.value)
		}
	}
}

func TestValidateEmergencyPhoneOnlyWhenContactGiven(t *testing.T) {
	v := NewImportValidator(nil)

	assert.Empty(t, v.Validate([]models.RawRow{validRow(2)}))

	row := withField(validRow(2), models.FieldEmergencyRelationship, "배우자")
	assert.Equal(t, []models.ImportField{models.FieldEmergencyPhone}, fieldsOf(v.Validate([]models.RawRow{row})))

	row = withField(row, models.FieldEmergencyPhone, "010-9999-8888")
	assert.Empty(t, v.Validate([]models.RawRow{row}))
}

func TestValidateIsIdempotentAndDoesNotMutate(t *testing.T) {
	v := NewImportValidator(nil)
	rows := []models.RawRow{validRow(2), withField(validRow(3), models.FieldEmail, " ")}
	before := withField(rows[1], models.FieldEmail, " ")

	first := v.Validate(rows)
	second := v.Validate(rows)
	assert.Equal(t, first, second)
	assert.Equal(t, before, rows[1])
}

func TestValidateIsOrderIndependent(t *testing.T) {
	v := NewImportValidator(nil)
	rows := []models.RawRow{
		validRow(2),
		withField(validRow(3), models.FieldPhone, "bad"),
		withField(validRow(4), models.FieldName, ""),
		validRow(5),
		withField(validRow(6), models.FieldHireDate, "2024-13-01"),
	}
	byRow := func(errs []models.ValidationError) map[int][]models.ImportField {
		out := map[int][]models.ImportField{}
		for _, e := range errs {
			out[e.Row] = append(out[e.Row], e.Field)
		}
		return out
	}
	expected := byRow(v.Validate(rows))

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.RawRow(nil), rows...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, expected, byRow(v.Validate(shuffled)))
	}
}

func TestCandidateRoundTripValidates(t *testing.T) {
	v := NewImportValidator(nil)
	row := withField(validRow(7), models.FieldEmergencyName, "박영희")
	row = withField(row, models.FieldEmergencyPhone, "010-2222-3333")
	row = withField(row, models.FieldName, "  김철수  ")
	require.Empty(t, v.Validate([]models.RawRow{row}))

	candidate := ToCandidate(row)
	assert.Equal(t, 7, candidate.Row)
	assert.Equal(t, "김철수", candidate.Name)
	require.NotNil(t, candidate.HireDate)
	assert.Equal(t, time.Date(2023, time.March, 2, 0, 0, 0, 0, time.UTC), *candidate.HireDate)

	assert.Empty(t, v.Validate([]models.RawRow{CandidateRow(candidate)}))
}

func TestRowsFromTableMapsHeadersAndNumbersRows(t *testing.T) {
	v := NewImportValidator(nil)
	table := spreadsheet.Table{
		Headers: []string{"이름", "메모", "Email", "사번", "이름"},
		Rows: [][]string{
			{"김철수", "ignored", "kim@example.com", "E1", "shadow"},
			{"", "", "", "", ""},
			{"이영희"},
		},
	}

	rows := v.RowsFromTable(table)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, 4, rows[1].Number)
	assert.Equal(t, "김철수", rows[0].Value(models.FieldName))
	assert.Equal(t, "kim@example.com", rows[0].Value(models.FieldEmail))
	assert.Equal(t, "E1", rows[0].Value(models.FieldExternalID))
	assert.Equal(t, "", rows[1].Value(models.FieldEmail))
	assert.Len(t, rows[0].Fields, 3)
}

func TestLoadHeaderAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  성명: name\n  Employee Number: external_id\n"), 0o600))

	headers, err := LoadHeaderAliases(path, DefaultHeaderMap())
	require.NoError(t, err)

	field, ok := headers.Lookup("성명")
	assert.True(t, ok)
	assert.Equal(t, models.FieldName, field)
	field, ok = headers.Lookup("employee number")
	assert.True(t, ok)
	assert.Equal(t, models.FieldExternalID, field)
	_, ok = headers.Lookup("이메일")
	assert.True(t, ok)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("aliases:\n  nickname: alias\n"), 0o600))
	_, err = LoadHeaderAliases(bad, DefaultHeaderMap())
	assert.Error(t, err)
}
