package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
)

const uniqueViolation = "23505"

// TraineeRepository is the write side used by the import pipeline.
type TraineeRepository struct {
	db *sqlx.DB
}

// NewTraineeRepository instantiates the repository.
func NewTraineeRepository(db *sqlx.DB) *TraineeRepository {
	return &TraineeRepository{db: db}
}

// FindByIdentity returns trainees whose lower-cased email or external id is
// among the given values, oldest first.
func (r *TraineeRepository) FindByIdentity(ctx context.Context, emails, externalIDs []string) ([]models.Trainee, error) {
	if len(emails) == 0 && len(externalIDs) == 0 {
		return []models.Trainee{}, nil
	}
	query := "SELECT " + traineeColumns + ` FROM trainees
        WHERE LOWER(email) = ANY($1) OR external_id = ANY($2)
        ORDER BY created_at, id`
	var trainees []models.Trainee
	if err := r.db.SelectContext(ctx, &trainees, query, pq.Array(emails), pq.Array(externalIDs)); err != nil {
		return nil, fmt.Errorf("find trainees by identity: %w", err)
	}
	return trainees, nil
}

// Create inserts a new trainee record.
func (r *TraineeRepository) Create(ctx context.Context, trainee *models.Trainee) error {
	if trainee.ID == "" {
		trainee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if trainee.CreatedAt.IsZero() {
		trainee.CreatedAt = now
	}
	trainee.UpdatedAt = now
	const query = `INSERT INTO trainees (id, name, email, phone, external_id, department, position, hire_date, is_active,
        emergency_name, emergency_relationship, emergency_phone, created_at, updated_at)
        VALUES (:id, :name, :email, :phone, :external_id, :department, :position, :hire_date, :is_active,
        :emergency_name, :emergency_relationship, :emergency_phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, trainee); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "trainee with the same email or employee id already exists")
		}
		return fmt.Errorf("create trainee: %w", err)
	}
	return nil
}

// UpdateByID overwrites the mutable fields of the trainee identified by id.
func (r *TraineeRepository) UpdateByID(ctx context.Context, id string, trainee *models.Trainee) error {
	trainee.ID = id
	trainee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE trainees SET name = :name, email = :email, phone = :phone, external_id = :external_id,
        department = :department, position = :position, hire_date = :hire_date,
        emergency_name = :emergency_name, emergency_relationship = :emergency_relationship,
        emergency_phone = :emergency_phone, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, trainee)
	if err != nil {
		return fmt.Errorf("update trainee: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "trainee not found")
	}
	return nil
}

// isUniqueViolation recognises duplicate-key failures from either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
