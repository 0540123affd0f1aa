package service

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/training-admin-api/internal/models"
	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

const hireDateLayout = "2006-01-02"

var (
	importEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	importPhonePattern = regexp.MustCompile(`^0\d{2}-\d{3,4}-\d{4}$`)
	importDatePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// fieldLabels are the spreadsheet headers shown back to users in error reports.
var fieldLabels = map[models.ImportField]string{
	models.FieldName:                  "이름",
	models.FieldEmail:                 "이메일",
	models.FieldPhone:                 "전화번호",
	models.FieldExternalID:            "사번",
	models.FieldDepartment:            "부서",
	models.FieldPosition:              "직급",
	models.FieldHireDate:              "입사일",
	models.FieldEmergencyName:         "비상연락처_이름",
	models.FieldEmergencyRelationship: "비상연락처_관계",
	models.FieldEmergencyPhone:        "비상연락처_전화",
}

var fieldRules = map[models.ImportField]string{
	models.FieldName:           "required",
	models.FieldEmail:          "required,trainee_email",
	models.FieldPhone:          "required,trainee_phone",
	models.FieldExternalID:     "required",
	models.FieldDepartment:     "required",
	models.FieldHireDate:       "omitempty,trainee_date",
	models.FieldEmergencyPhone: "omitempty,trainee_phone",
}

var ruleMessages = map[string]string{
	"required":      "%s is required",
	"trainee_email": "%s must be a valid email address",
	"trainee_phone": "%s must look like 010-1234-5678",
	"trainee_date":  "%s must be a date in YYYY-MM-DD format",
}

// HeaderMap maps normalised spreadsheet headers to import fields.
type HeaderMap map[string]models.ImportField

// DefaultHeaderMap recognises the Korean template headers and the field names themselves.
func DefaultHeaderMap() HeaderMap {
	m := HeaderMap{"employee_id": models.FieldExternalID}
	for field, label := range fieldLabels {
		m[normalizeHeader(label)] = field
		m[normalizeHeader(string(field))] = field
	}
	return m
}

// Lookup resolves a raw header.
func (m HeaderMap) Lookup(header string) (models.ImportField, bool) {
	field, ok := m[normalizeHeader(header)]
	return field, ok
}

func normalizeHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

type headerAliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadHeaderAliases extends base with the aliases listed in a YAML file of the form
//
//	aliases:
//	  성명: name
//	  employee number: external_id
func LoadHeaderAliases(path string, base HeaderMap) (HeaderMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read header alias file: %w", err)
	}
	var file headerAliasFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse header alias file: %w", err)
	}
	known := make(map[models.ImportField]struct{}, len(models.ImportFields))
	for _, f := range models.ImportFields {
		known[f] = struct{}{}
	}
	merged := make(HeaderMap, len(base)+len(file.Aliases))
	for k, v := range base {
		merged[k] = v
	}
	for header, target := range file.Aliases {
		field := models.ImportField(strings.TrimSpace(target))
		if _, ok := known[field]; !ok {
			return nil, fmt.Errorf("header alias %q targets unknown field %q", header, target)
		}
		merged[normalizeHeader(header)] = field
	}
	return merged, nil
}

// ImportValidator turns spreadsheet rows into trainee candidates and reports
// every field problem it finds.
type ImportValidator struct {
	validate *validator.Validate
	headers  HeaderMap
}

// NewImportValidator registers the import rules. A nil headers map uses DefaultHeaderMap.
func NewImportValidator(headers HeaderMap) *ImportValidator {
	if headers == nil {
		headers = DefaultHeaderMap()
	}
	v := validator.New()
	register := func(tag string, pattern *regexp.Regexp, extra func(string) bool) {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			value := fl.Field().String()
			return pattern.MatchString(value) && (extra == nil || extra(value))
		})
	}
	register("trainee_email", importEmailPattern, nil)
	register("trainee_phone", importPhonePattern, nil)
	register("trainee_date", importDatePattern, func(s string) bool {
		_, err := time.Parse(hireDateLayout, s)
		return err == nil
	})
	return &ImportValidator{validate: v, headers: headers}
}

// RowsFromTable keys each data row by recognised header. Unrecognised columns
// are dropped, fully blank rows are skipped, and Number is the spreadsheet
// row (the header is row 1).
func (v *ImportValidator) RowsFromTable(table spreadsheet.Table) []models.RawRow {
	columns := make(map[int]models.ImportField)
	taken := make(map[models.ImportField]bool)
	for i, h := range table.Headers {
		field, ok := v.headers.Lookup(h)
		if !ok || taken[field] {
			continue
		}
		columns[i] = field
		taken[field] = true
	}

	rows := make([]models.RawRow, 0, len(table.Rows))
	for i, record := range table.Rows {
		if spreadsheet.IsBlankRow(record) {
			continue
		}
		fields := make(map[models.ImportField]string, len(columns))
		for col, field := range columns {
			fields[field] = table.Cell(i, col)
		}
		rows = append(rows, models.RawRow{Number: i + 2, Fields: fields})
	}
	return rows
}

// Validate checks every row and returns all findings, row by row in field
// order. Input is not modified.
func (v *ImportValidator) Validate(rows []models.RawRow) []models.ValidationError {
	errs := make([]models.ValidationError, 0)
	for _, row := range rows {
		errs = append(errs, v.validateRow(row)...)
	}
	return errs
}

func (v *ImportValidator) validateRow(row models.RawRow) []models.ValidationError {
	var errs []models.ValidationError
	emergency := hasEmergencyContact(row)
	for _, field := range models.ImportFields {
		rule, ok := fieldRules[field]
		if !ok {
			continue
		}
		if field == models.FieldEmergencyPhone && emergency {
			rule = "required,trainee_phone"
		}
		raw := row.Value(field)
		if err := v.validate.Var(strings.TrimSpace(raw), rule); err != nil {
			errs = append(errs, models.ValidationError{
				Row:     row.Number,
				Field:   field,
				Label:   fieldLabels[field],
				Value:   raw,
				Message: fmt.Sprintf(ruleMessages[failedTag(err)], fieldLabels[field]),
			})
		}
	}
	return errs
}

func failedTag(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		if _, known := ruleMessages[verrs[0].Tag()]; known {
			return verrs[0].Tag()
		}
	}
	return "required"
}

func hasEmergencyContact(row models.RawRow) bool {
	for _, f := range []models.ImportField{models.FieldEmergencyName, models.FieldEmergencyRelationship, models.FieldEmergencyPhone} {
		if strings.TrimSpace(row.Value(f)) != "" {
			return true
		}
	}
	return false
}

// ToCandidate converts a row that passed validation.
func ToCandidate(row models.RawRow) models.ImportCandidate {
	value := func(f models.ImportField) string { return strings.TrimSpace(row.Value(f)) }
	c := models.ImportCandidate{
		Row:                   row.Number,
		Name:                  value(models.FieldName),
		Email:                 value(models.FieldEmail),
		Phone:                 value(models.FieldPhone),
		ExternalID:            value(models.FieldExternalID),
		Department:            value(models.FieldDepartment),
		Position:              value(models.FieldPosition),
		EmergencyName:         value(models.FieldEmergencyName),
		EmergencyRelationship: value(models.FieldEmergencyRelationship),
		EmergencyPhone:        value(models.FieldEmergencyPhone),
	}
	if d, err := time.Parse(hireDateLayout, value(models.FieldHireDate)); err == nil {
		c.HireDate = &d
	}
	return c
}

// CandidateRow renders a candidate back into a raw row.
func CandidateRow(c models.ImportCandidate) models.RawRow {
	fields := map[models.ImportField]string{
		models.FieldName:                  c.Name,
		models.FieldEmail:                 c.Email,
		models.FieldPhone:                 c.Phone,
		models.FieldExternalID:            c.ExternalID,
		models.FieldDepartment:            c.Department,
		models.FieldPosition:              c.Position,
		models.FieldEmergencyName:         c.EmergencyName,
		models.FieldEmergencyRelationship: c.EmergencyRelationship,
		models.FieldEmergencyPhone:        c.EmergencyPhone,
	}
	if c.HireDate != nil {
		fields[models.FieldHireDate] = c.HireDate.Format(hireDateLayout)
	}
	return models.RawRow{Number: c.Row, Fields: fields}
}
