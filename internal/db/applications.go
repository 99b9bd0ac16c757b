package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

const applicationColumns = `a.id, a.talent_id, a.employer_id, a.job_id, a.status, a.notes, a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (*types.Application, error) {
	var a types.Application
	if err := row.Scan(&a.ID, &a.TalentID, &a.EmployerID, &a.JobID, &a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateApplication inserts an application
func (db *DB) CreateApplication(ctx context.Context, a *types.Application) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = types.ApplicationApplied
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (id, talent_id, employer_id, job_id, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		a.ID, a.TalentID, a.EmployerID, a.JobID, a.Status, a.Notes,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return insertError("application", err)
	}
	return nil
}

// GetApplication retrieves an application by ID
func (db *DB) GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error) {
	a, err := scanApplication(db.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

// UpdateApplicationStatus sets an application's status, and its notes when notes is non-nil
func (db *DB) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status types.Status, notes *string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE applications
		 SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		 WHERE id = $3`,
		status, notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return requireRow(tag, "application", id)
}

// ListApplications returns the applications matching filter in creation order
func (db *DB) ListApplications(ctx context.Context, filter types.RecordFilter) ([]types.Application, error) {
	c := applicationConditions(filter)
	rows, err := db.pool.Query(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications a JOIN talents t ON t.id = a.talent_id`+c.where()+`
		 ORDER BY a.created_at, a.id`,
		c.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	applications := make([]types.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		applications = append(applications, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}
