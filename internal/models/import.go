package models

import "time"

// ImportField identifies a recognized import column.
type ImportField string

// Recognized import fields in validation order.
const (
	FieldName                  ImportField = "name"
	FieldEmail                 ImportField = "email"
	FieldPhone                 ImportField = "phone"
	FieldExternalID            ImportField = "external_id"
	FieldDepartment            ImportField = "department"
	FieldPosition              ImportField = "position"
	FieldHireDate              ImportField = "hire_date"
	FieldEmergencyName         ImportField = "emergency_name"
	FieldEmergencyRelationship ImportField = "emergency_relationship"
	FieldEmergencyPhone        ImportField = "emergency_phone"
)

// ImportFields lists every recognized field in column order.
var ImportFields = []ImportField{
	FieldName, FieldEmail, FieldPhone, FieldExternalID, FieldDepartment,
	FieldPosition, FieldHireDate, FieldEmergencyName, FieldEmergencyRelationship, FieldEmergencyPhone,
}

// RawRow is one spreadsheet row keyed by recognized field. Number is the
// row as shown in the spreadsheet, header included.
type RawRow struct {
	Number int                    `json:"row"`
	Fields map[ImportField]string `json:"fields"`
}

// Value returns the raw value for field, or "" when the column is absent.
func (r RawRow) Value(field ImportField) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}

// ImportCandidate is a trainee parsed from a valid import row.
type ImportCandidate struct {
	Row                   int        `json:"row"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	ExternalID            string     `json:"external_id"`
	Department            string     `json:"department"`
	Position              string     `json:"position,omitempty"`
	HireDate              *time.Time `json:"hire_date,omitempty"`
	EmergencyName         string     `json:"emergency_name,omitempty"`
	EmergencyRelationship string     `json:"emergency_relationship,omitempty"`
	EmergencyPhone        string     `json:"emergency_phone,omitempty"`
}

// Trainee converts the candidate into a new active trainee record.
func (c ImportCandidate) Trainee() Trainee {
	return Trainee{
		Name:                  c.Name,
		Email:                 c.Email,
		Phone:                 c.Phone,
		ExternalID:            c.ExternalID,
		Department:            c.Department,
		Position:              c.Position,
		HireDate:              c.HireDate,
		IsActive:              true,
		EmergencyName:         c.EmergencyName,
		EmergencyRelationship: c.EmergencyRelationship,
		EmergencyPhone:        c.EmergencyPhone,
	}
}

// ValidationError describes a single field problem in an import row.
type ValidationError struct {
	Row     int         `json:"row"`
	Field   ImportField `json:"field"`
	Label   string      `json:"label"`
	Value   string      `json:"value"`
	Message string      `json:"message"`
}

// MatchField names the identity field that triggered a duplicate match.
type MatchField string

const (
	MatchEmail      MatchField = "email"
	MatchExternalID MatchField = "external_id"
)

// DuplicateMatch pairs a candidate with the existing trainee it collides with.
// EarlierRow is set when the collision is with another row of the same
// upload; Existing then carries that row's ID only once it has been created.
type DuplicateMatch struct {
	Candidate  ImportCandidate `json:"candidate"`
	Existing   Trainee         `json:"existing"`
	MatchedOn  MatchField      `json:"matched_on"`
	EarlierRow int             `json:"earlier_row,omitempty"`
}

// Classification partitions candidates into new and duplicate.
type Classification struct {
	New        []ImportCandidate `json:"new"`
	Duplicates []DuplicateMatch  `json:"duplicates"`
}

// FailedImport records a candidate whose write failed.
type FailedImport struct {
	Candidate ImportCandidate `json:"candidate"`
	Reason    string          `json:"reason"`
}

// ImportReport summarises one import run.
type ImportReport struct {
	Total      int               `json:"total"`
	Rejected   int               `json:"rejected"`
	Errors     []ValidationError `json:"errors"`
	Created    []Trainee         `json:"created"`
	Failed     []FailedImport    `json:"failed"`
	Duplicates []DuplicateMatch  `json:"duplicates"`
}

// ImportPreview is the dry-run view of an import.
type ImportPreview struct {
	Total          int               `json:"total"`
	Rows           []RawRow          `json:"rows"`
	Errors         []ValidationError `json:"errors"`
	Classification Classification    `json:"classification"`
}

// DuplicateAction is the caller's resolution for a duplicate.
type DuplicateAction string

const (
	DuplicateActionUpdate DuplicateAction = "update"
	DuplicateActionSkip   DuplicateAction = "skip"
)

// DuplicateDecision resolves one duplicate match.
type DuplicateDecision struct {
	ExistingID string          `json:"existing_id" validate:"required"`
	Action     DuplicateAction `json:"action" validate:"required,oneof=update skip"`
	Candidate  ImportCandidate `json:"candidate"`
}

// ResolutionReport summarises applied duplicate decisions.
type ResolutionReport struct {
	Updated []Trainee      `json:"updated"`
	Skipped int            `json:"skipped"`
	Failed  []FailedImport `json:"failed"`
}
