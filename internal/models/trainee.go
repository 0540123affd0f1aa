package models

import (
	"strings"
	"time"
)

// UnassignedDepartment groups trainees without a department.
const UnassignedDepartment = "unassigned"

// Trainee represents a learner registered for training programs.
type Trainee struct {
	ID                    string     `db:"id" json:"id"`
	Name                  string     `db:"name" json:"name"`
	Email                 string     `db:"email" json:"email"`
	Phone                 string     `db:"phone" json:"phone"`
	ExternalID            string     `db:"external_id" json:"external_id"`
	Department            string     `db:"department" json:"department"`
	Position              string     `db:"position" json:"position"`
	HireDate              *time.Time `db:"hire_date" json:"hire_date,omitempty"`
	IsActive              bool       `db:"is_active" json:"is_active"`
	EmergencyName         string     `db:"emergency_name" json:"emergency_name,omitempty"`
	EmergencyRelationship string     `db:"emergency_relationship" json:"emergency_relationship,omitempty"`
	EmergencyPhone        string     `db:"emergency_phone" json:"emergency_phone,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// DepartmentLabel returns the grouping key for department statistics.
func (t Trainee) DepartmentLabel() string {
	if dept := strings.TrimSpace(t.Department); dept != "" {
		return dept
	}
	return UnassignedDepartment
}

// TraineeFilter scopes trainee lookups.
type TraineeFilter struct {
	IDs        []string
	ActiveOnly bool
}

// TraineeIdentityFilter finds trainees sharing an email or external id.
type TraineeIdentityFilter struct {
	Emails      []string
	ExternalIDs []string
}
