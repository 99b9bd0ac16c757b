package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// UpsertOrganization inserts or updates an organization's descriptive fields.
// Verification state is left untouched on update.
func (db *DB) UpsertOrganization(ctx context.Context, o *types.Organization) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO organizations (id, kind, name, city_key, is_verified, verified_at, verified_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (kind, id) DO UPDATE SET name = $3, city_key = $4`,
		o.ID, o.Kind, o.Name, o.CityKey, o.IsVerified, o.VerifiedAt, o.VerifiedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert organization: %w", err)
	}
	return nil
}

// GetOrganization retrieves an organization by kind and ID
func (db *DB) GetOrganization(ctx context.Context, kind types.SubjectKind, id uuid.UUID) (*types.Organization, error) {
	var o types.Organization
	err := db.pool.QueryRow(ctx,
		`SELECT id, kind, name, city_key, is_verified, verified_at, verified_by
		 FROM organizations WHERE kind = $1 AND id = $2`,
		kind, id,
	).Scan(&o.ID, &o.Kind, &o.Name, &o.CityKey, &o.IsVerified, &o.VerifiedAt, &o.VerifiedBy)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return &o, nil
}

// MarkOrganizationVerified flags an organization as verified and stamps who and when
func (db *DB) MarkOrganizationVerified(ctx context.Context, kind types.SubjectKind, id uuid.UUID, verifiedBy uuid.UUID, verifiedAt time.Time) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE organizations SET is_verified = TRUE, verified_at = $1, verified_by = $2
		 WHERE kind = $3 AND id = $4`,
		verifiedAt, verifiedBy, kind, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark organization verified: %w", err)
	}
	return requireRow(tag, string(kind), id)
}

const verificationColumns = `id, subject_kind, subject_id, document_link, status, created_at, updated_at`

// GetVerificationRequest retrieves a verification request by ID
func (db *DB) GetVerificationRequest(ctx context.Context, id uuid.UUID) (*types.VerificationRequest, error) {
	var v types.VerificationRequest
	err := db.pool.QueryRow(ctx,
		`SELECT `+verificationColumns+` FROM verification_requests WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.SubjectKind, &v.SubjectID, &v.DocumentLink, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get verification request: %w", err)
	}
	return &v, nil
}

// GetLatestVerificationRequest returns the most recent request for a subject
func (db *DB) GetLatestVerificationRequest(ctx context.Context, kind types.SubjectKind, subjectID uuid.UUID) (*types.VerificationRequest, error) {
	var v types.VerificationRequest
	err := db.pool.QueryRow(ctx,
		`SELECT `+verificationColumns+`
		 FROM verification_requests
		 WHERE subject_kind = $1 AND subject_id = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		kind, subjectID,
	).Scan(&v.ID, &v.SubjectKind, &v.SubjectID, &v.DocumentLink, &v.Status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest verification request: %w", err)
	}
	return &v, nil
}

// InsertVerificationRequest stores a new verification request. The unique
// subject index turns a second request for the same subject into ErrDuplicate.
func (db *DB) InsertVerificationRequest(ctx context.Context, v *types.VerificationRequest) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO verification_requests (id, subject_kind, subject_id, document_link, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		v.ID, v.SubjectKind, v.SubjectID, v.DocumentLink, v.Status,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return insertError("verification request", err)
	}
	return nil
}

// UpdateVerificationRequest sets the status and document link of a request
func (db *DB) UpdateVerificationRequest(ctx context.Context, id uuid.UUID, status types.Status, documentLink string) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE verification_requests SET status = $1, document_link = $2, updated_at = NOW() WHERE id = $3`,
		status, documentLink, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification request: %w", err)
	}
	return requireRow(tag, "verification request", id)
}
