package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

const talentColumns = `t.id, t.name, t.city_key, t.disability_type, t.accessibility_barriers,
	t.skills, t.career_status, t.campus_id, t.created_at, t.updated_at`

func scanTalent(row pgx.Row) (*types.TalentProfile, error) {
	var t types.TalentProfile
	err := row.Scan(&t.ID, &t.Name, &t.CityKey, &t.DisabilityType, &t.AccessibilityBarriers,
		&t.Skills, &t.CareerStatus, &t.CampusID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTalent inserts a talent profile
func (db *DB) CreateTalent(ctx context.Context, t *types.TalentProfile) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO talents (id, name, city_key, disability_type, accessibility_barriers, skills, career_status, campus_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		t.ID, t.Name, t.CityKey, t.DisabilityType, nonNil(t.AccessibilityBarriers), nonNil(t.Skills), t.CareerStatus, t.CampusID,
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return insertError("talent", err)
	}
	return nil
}

// GetTalent retrieves a talent profile by ID
func (db *DB) GetTalent(ctx context.Context, id uuid.UUID) (*types.TalentProfile, error) {
	t, err := scanTalent(db.pool.QueryRow(ctx,
		`SELECT `+talentColumns+` FROM talents t WHERE t.id = $1`, id))
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get talent: %w", err)
	}
	return t, nil
}

// mergeSkillsSQL appends the skills in $2 that the row lacks, comparing
// case-insensitively and keeping first-seen order. The union reads the
// row's current skills inside the UPDATE, so a concurrent merge that
// commits first is re-read rather than overwritten. Rows that would not
// change are skipped by the WHERE clause.
const mergeSkillsSQL = `
UPDATE talents SET
    skills = ARRAY(
        SELECT d.skill FROM (
            SELECT DISTINCT ON (lower(btrim(u.skill))) btrim(u.skill) AS skill, u.ord
            FROM unnest(skills || $2::text[]) WITH ORDINALITY AS u(skill, ord)
            WHERE btrim(u.skill) <> ''
            ORDER BY lower(btrim(u.skill)), u.ord
        ) d
        ORDER BY d.ord
    ),
    updated_at = NOW()
WHERE id = $1
  AND EXISTS (
      SELECT 1 FROM unnest($2::text[]) AS i(skill)
      WHERE btrim(i.skill) <> ''
        AND lower(btrim(i.skill)) <> ALL (SELECT lower(btrim(e)) FROM unnest(skills) AS e)
  )`

// MergeTalentSkills adds the missing skills to a talent's set in one statement
func (db *DB) MergeTalentSkills(ctx context.Context, id uuid.UUID, skills []string) (bool, error) {
	tag, err := db.pool.Exec(ctx, mergeSkillsSQL, id, nonNil(skills))
	if err != nil {
		return false, fmt.Errorf("failed to merge talent skills: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM talents WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check talent: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("talent not found: %s", id)
	}
	return false, nil
}

// ListTalents returns the talents matching filter ordered by name, then id
func (db *DB) ListTalents(ctx context.Context, filter types.RecordFilter) ([]types.TalentProfile, error) {
	c := talentConditions(filter)
	rows, err := db.pool.Query(ctx,
		`SELECT `+talentColumns+` FROM talents t`+c.where()+` ORDER BY t.name, t.id`,
		c.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	defer rows.Close()

	talents := make([]types.TalentProfile, 0)
	for rows.Next() {
		t, err := scanTalent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan talent: %w", err)
		}
		talents = append(talents, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list talents: %w", err)
	}
	return talents, nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
