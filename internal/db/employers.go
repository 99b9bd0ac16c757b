package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Employer verification lives on the company organization row.
const employerSelect = `SELECT e.id, e.name, e.category, e.city_key, e.total_employees, e.disabled_employees,
	       COALESCE(o.is_verified, FALSE), o.verified_at, o.verified_by
	FROM employers e
	LEFT JOIN organizations o ON o.kind = 'company' AND o.id = e.id`

func scanEmployer(row pgx.Row) (*types.Employer, error) {
	var e types.Employer
	err := row.Scan(&e.ID, &e.Name, &e.Category, &e.CityKey, &e.TotalEmployees, &e.DisabledEmployees,
		&e.IsVerified, &e.VerifiedAt, &e.VerifiedBy)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEmployer inserts an employer together with its company organization row
func (db *DB) CreateEmployer(ctx context.Context, e *types.Employer) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO employers (id, name, category, city_key, total_employees, disabled_employees)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Name, e.Category, e.CityKey, e.TotalEmployees, e.DisabledEmployees,
	)
	if err != nil {
		return insertError("employer", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO organizations (id, kind, name, city_key, is_verified, verified_at, verified_by)
		 VALUES ($1, 'company', $2, $3, $4, $5, $6)
		 ON CONFLICT (kind, id) DO NOTHING`,
		e.ID, e.Name, e.CityKey, e.IsVerified, e.VerifiedAt, e.VerifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company organization: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit employer: %w", err)
	}
	return nil
}

// GetEmployer retrieves an employer by ID
func (db *DB) GetEmployer(ctx context.Context, id uuid.UUID) (*types.Employer, error) {
	e, err := scanEmployer(db.pool.QueryRow(ctx, employerSelect+` WHERE e.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employer: %w", err)
	}
	return e, nil
}

// ListEmployers returns the employers matching filter ordered by name, then id
func (db *DB) ListEmployers(ctx context.Context, filter types.RecordFilter) ([]types.Employer, error) {
	c := employerConditions(filter)
	rows, err := db.pool.Query(ctx, employerSelect+c.where()+` ORDER BY e.name, e.id`, c.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employers: %w", err)
	}
	defer rows.Close()

	employers := make([]types.Employer, 0)
	for rows.Next() {
		e, err := scanEmployer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employer: %w", err)
		}
		employers = append(employers, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list employers: %w", err)
	}
	return employers, nil
}

// CreateJobPosting inserts a job posting
func (db *DB) CreateJobPosting(ctx context.Context, p *types.JobPosting) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (id, employer_id, title, city_key, required_skills, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		p.ID, p.EmployerID, p.Title, p.CityKey, nonNil(p.RequiredSkills), p.Active,
	).Scan(&p.CreatedAt)
	if err != nil {
		return insertError("job posting", err)
	}
	return nil
}

// ListJobPostings returns the job postings matching filter in creation order
func (db *DB) ListJobPostings(ctx context.Context, filter types.RecordFilter) ([]types.JobPosting, error) {
	c := postingConditions(filter)
	rows, err := db.pool.Query(ctx,
		`SELECT p.id, p.employer_id, p.title, p.city_key, p.required_skills, p.active, p.created_at
		 FROM job_postings p`+c.where()+`
		 ORDER BY p.created_at, p.id`,
		c.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	postings := make([]types.JobPosting, 0)
	for rows.Next() {
		var p types.JobPosting
		if err := rows.Scan(&p.ID, &p.EmployerID, &p.Title, &p.CityKey, &p.RequiredSkills, &p.Active, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list job postings: %w", err)
	}
	return postings, nil
}
