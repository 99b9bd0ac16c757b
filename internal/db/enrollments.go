package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

const enrollmentColumns = `en.id, en.talent_id, en.partner_id, en.training_id, en.status, en.issued_skills, en.created_at, en.updated_at`

func scanEnrollment(row pgx.Row) (*types.Enrollment, error) {
	var e types.Enrollment
	if err := row.Scan(&e.ID, &e.TalentID, &e.PartnerID, &e.TrainingID, &e.Status, &e.IssuedSkills, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateTrainingProgram inserts a training program
func (db *DB) CreateTrainingProgram(ctx context.Context, t *types.TrainingProgram) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO training_programs (id, partner_id, title, organizer, skills)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		t.ID, t.PartnerID, t.Title, t.Organizer, nonNil(t.Skills),
	).Scan(&t.CreatedAt)
	if err != nil {
		return insertError("training program", err)
	}
	return nil
}

// GetTrainingProgram retrieves a training program by ID
func (db *DB) GetTrainingProgram(ctx context.Context, id uuid.UUID) (*types.TrainingProgram, error) {
	var t types.TrainingProgram
	err := db.pool.QueryRow(ctx,
		`SELECT id, partner_id, title, organizer, skills, created_at
		 FROM training_programs WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.PartnerID, &t.Title, &t.Organizer, &t.Skills, &t.CreatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get training program: %w", err)
	}
	return &t, nil
}

// CreateEnrollment inserts an enrollment
func (db *DB) CreateEnrollment(ctx context.Context, e *types.Enrollment) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = types.EnrollmentApplied
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO enrollments (id, talent_id, partner_id, training_id, status, issued_skills)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at`,
		e.ID, e.TalentID, e.PartnerID, e.TrainingID, e.Status, nonNil(e.IssuedSkills),
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return insertError("enrollment", err)
	}
	return nil
}

// GetEnrollment retrieves an enrollment by ID
func (db *DB) GetEnrollment(ctx context.Context, id uuid.UUID) (*types.Enrollment, error) {
	e, err := scanEnrollment(db.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments en WHERE en.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return e, nil
}

// UpdateEnrollmentStatus sets an enrollment's status
func (db *DB) UpdateEnrollmentStatus(ctx context.Context, id uuid.UUID, status types.Status) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE enrollments SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment status: %w", err)
	}
	return requireRow(tag, "enrollment", id)
}

// SetEnrollmentIssuedSkills stores the issued skills snapshot on an enrollment
func (db *DB) SetEnrollmentIssuedSkills(ctx context.Context, id uuid.UUID, skills []string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE enrollments SET issued_skills = $1, updated_at = NOW() WHERE id = $2`,
		nonNil(skills), id,
	)
	if err != nil {
		return fmt.Errorf("failed to set issued skills: %w", err)
	}
	return requireRow(tag, "enrollment", id)
}

// ListEnrollments returns the enrollments matching filter in creation order
func (db *DB) ListEnrollments(ctx context.Context, filter types.RecordFilter) ([]types.Enrollment, error) {
	c := enrollmentConditions(filter)
	rows, err := db.pool.Query(ctx,
		`SELECT `+enrollmentColumns+`
		 FROM enrollments en JOIN talents t ON t.id = en.talent_id`+c.where()+`
		 ORDER BY en.created_at, en.id`,
		c.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]types.Enrollment, 0)
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// GetCertificationByEnrollment retrieves the certification issued for an enrollment
func (db *DB) GetCertificationByEnrollment(ctx context.Context, enrollmentID uuid.UUID) (*types.Certification, error) {
	var c types.Certification
	err := db.pool.QueryRow(ctx,
		`SELECT id, enrollment_id, talent_id, training_id, certificate_number, name, organizer,
		        year, verified, issued_skills, created_at
		 FROM certifications WHERE enrollment_id = $1`,
		enrollmentID,
	).Scan(&c.ID, &c.EnrollmentID, &c.TalentID, &c.TrainingID, &c.CertificateNumber, &c.Name, &c.Organizer,
		&c.Year, &c.Verified, &c.IssuedSkills, &c.CreatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get certification: %w", err)
	}
	return &c, nil
}

// InsertCertification stores a certification. A second certification for the
// same enrollment hits the unique index and returns lifecycle.ErrDuplicate.
func (db *DB) InsertCertification(ctx context.Context, c *types.Certification) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO certifications (id, enrollment_id, talent_id, training_id, certificate_number, name,
		                             organizer, year, verified, issued_skills, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.EnrollmentID, c.TalentID, c.TrainingID, c.CertificateNumber, c.Name,
		c.Organizer, c.Year, c.Verified, nonNil(c.IssuedSkills), c.CreatedAt,
	)
	if err != nil {
		return insertError("certification", err)
	}
	return nil
}
