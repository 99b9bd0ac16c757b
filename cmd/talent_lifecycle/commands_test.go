package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/memstore"
	"github.com/jonathan/talent-lifecycle/internal/reporting"
	"github.com/jonathan/talent-lifecycle/internal/server"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFlags(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name    string
		flags   actorFlags
		want    types.Actor
		wantErr string
	}{
		{name: "admin", flags: actorFlags{role: "admin"}, want: types.Actor{Role: types.RoleAdmin}},
		{name: "company", flags: actorFlags{role: "company", orgID: orgID.String()}, want: types.Actor{Role: types.RoleCompany, OrgID: orgID}},
		{name: "city official", flags: actorFlags{role: "government", level: "City", key: "Bandung"},
			want: types.Actor{Role: types.RoleGovernment, JurisdictionLevel: types.JurisdictionCity, JurisdictionKey: "Bandung"}},
		{name: "national official", flags: actorFlags{role: "government", level: "national"},
			want: types.Actor{Role: types.RoleGovernment, JurisdictionLevel: types.JurisdictionNational}},
		{name: "unknown role", flags: actorFlags{role: "owner"}, wantErr: "invalid --role"},
		{name: "government without level", flags: actorFlags{role: "government"}, wantErr: "--level is required"},
		{name: "province without key", flags: actorFlags{role: "government", level: "province"}, wantErr: "--jurisdiction is required"},
		{name: "bad level", flags: actorFlags{role: "government", level: "district", key: "x"}, wantErr: "unknown jurisdiction level"},
		{name: "partner without org", flags: actorFlags{role: "partner"}, wantErr: "--org-id is required"},
		{name: "bad org id", flags: actorFlags{role: "company", orgID: "nope"}, wantErr: "invalid --org-id"},
		{name: "bad user id", flags: actorFlags{role: "admin", userID: "nope"}, wantErr: "invalid --user-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.flags.actor()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			got.ID = uuid.Nil
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := parseIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseIDs([]string{a.String(), "not-a-uuid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-uuid")
}

func TestResolveConfig(t *testing.T) {
	resetFlags(t)

	t.Run("requires a store source", func(t *testing.T) {
		cfg, err := resolveConfig()
		require.NoError(t, err)
		_, err = openStore(t.Context(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--snapshot is required")
	})

	t.Run("snapshot flag wins over environment database", func(t *testing.T) {
		f := writeFixture(t)
		t.Setenv("DATABASE_URL", "postgres://env")
		snapshotPath = f.path
		t.Cleanup(func() { snapshotPath = "" })

		cfg, err := resolveConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg.DatabaseURL)
		assert.Equal(t, f.path, cfg.SnapshotPath)
		assert.Equal(t, config.DefaultBulkLimit, cfg.BulkLimit)
	})

	t.Run("config file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"bulk_limit": 5, "certificate_prefix": "SERT"}`), 0644))
		configPath = path
		t.Cleanup(func() { configPath = "" })

		cfg, err := resolveConfig()
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.BulkLimit)
		assert.Equal(t, "SERT", cfg.CertificatePrefix)
	})

	t.Run("missing jurisdiction map", func(t *testing.T) {
		mapPath = "/nonexistent/map.json"
		t.Cleanup(func() { mapPath = "" })

		_, err := resolveConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jurisdiction map not found")
	})
}

func TestRunStats_JSONScopedToCity(t *testing.T) {
	resetFlags(t)
	f := writeFixture(t)
	snapshotPath = f.path
	statsActor = actorFlags{role: "government", level: "city", key: "Bandung"}
	statsJSON = true

	cmd, out := outputCommand()
	require.NoError(t, runStats(cmd, nil))

	var stats reporting.Stats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalTalents)
	assert.Equal(t, 1, stats.TotalEmployers)
	assert.Equal(t, 0, stats.EmploymentRate)
}

func TestRunStats_Printed(t *testing.T) {
	resetFlags(t)
	f := writeFixture(t)
	snapshotPath = f.path
	statsActor = actorFlags{role: "admin"}
	statsQuotas = true

	cmd, out := outputCommand()
	require.NoError(t, runStats(cmd, nil))

	output := out.String()
	assert.Contains(t, output, "TALENT STATISTICS")
	assert.Contains(t, output, "Talents:          3")
	assert.Contains(t, output, "QUOTA COMPLIANCE (1 employers)")
	assert.Contains(t, output, "✗ PT Sinar Bandung")
}

func TestRunTransition_CompletesEnrollmentAndSaves(t *testing.T) {
	resetFlags(t)
	f := writeFixture(t)
	snapshotPath = f.path
	transitionActor = actorFlags{role: "partner", orgID: f.partnerID.String()}
	transitionKind = "enrollment"
	transitionIDs = []string{f.enrollment.ID.String()}
	transitionStatus = "Completed"
	transitionSave = true

	cmd, out := outputCommand()
	require.NoError(t, runTransition(cmd, nil))
	assert.Contains(t, out.String(), "accepted → completed")
	assert.Contains(t, out.String(), "certificate_issued")

	saved, err := memstore.LoadSnapshot(f.path)
	require.NoError(t, err)
	enrollment, err := saved.GetEnrollment(t.Context(), f.enrollment.ID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, types.EnrollmentCompleted, enrollment.Status)
	assert.Len(t, saved.Certifications(f.enrollment.ID), 1)
}

func TestRunTransition_BulkPartialFailure(t *testing.T) {
	resetFlags(t)
	f := writeFixture(t)
	snapshotPath = f.path
	transitionActor = actorFlags{role: "company", orgID: f.employerID.String()}
	transitionKind = "application"
	transitionIDs = []string{f.applied.ID.String(), f.hired.ID.String()}
	transitionStatus = "reviewing"

	cmd, out := outputCommand()
	err := runTransition(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 transitions failed")
	assert.Contains(t, out.String(), "BULK APPLICATION (PARTIAL)")

	// Without --save-snapshot the file is untouched
	saved, err := memstore.LoadSnapshot(f.path)
	require.NoError(t, err)
	app, err := saved.GetApplication(t.Context(), f.applied.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ApplicationApplied, app.Status)
}

func TestRunTransition_Forbidden(t *testing.T) {
	resetFlags(t)
	f := writeFixture(t)
	snapshotPath = f.path
	transitionActor = actorFlags{role: "company", orgID: uuid.NewString()}
	transitionKind = "application"
	transitionIDs = []string{f.applied.ID.String()}
	transitionStatus = "reviewing"

	cmd, _ := outputCommand()
	err := runTransition(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestRunToken(t *testing.T) {
	resetFlags(t)
	t.Setenv("JWT_SECRET", "cli-test-secret-0123")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	tokenActor = actorFlags{role: "government", level: "province", key: "Jawa Barat"}

	cmd, out := outputCommand()
	require.NoError(t, runToken(cmd, nil))

	jwtConfig, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(jwtConfig).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)

	actor, err := claims.GetActor()
	require.NoError(t, err)
	assert.Equal(t, types.RoleGovernment, actor.Role)
	assert.Equal(t, types.JurisdictionProvince, actor.JurisdictionLevel)
	assert.Equal(t, "Jawa Barat", actor.JurisdictionKey)
}

func TestRunToken_MissingSecret(t *testing.T) {
	resetFlags(t)
	t.Setenv("JWT_SECRET", "")
	tokenActor = actorFlags{role: "admin"}

	cmd, _ := outputCommand()
	err := runToken(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestRunValidateJurisdictions(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	require.NoError(t, os.WriteFile(valid, []byte(`{"provinces": {"Jawa Barat": ["Bandung", "Bekasi"], "Bali": ["Denpasar"]}}`), 0644))
	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"provinces": {"Bali": []}}`), 0644))

	validateMapPath = valid
	cmd, out := outputCommand()
	require.NoError(t, runValidateJurisdictions(cmd, nil))
	assert.Contains(t, out.String(), "Validation passed: 2 provinces")
	assert.Contains(t, out.String(), "(2 cities)")

	validateMapPath = invalid
	cmd, _ = outputCommand()
	err := runValidateJurisdictions(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestRunMigrate_Print(t *testing.T) {
	resetFlags(t)
	migratePrint = true

	cmd, out := outputCommand()
	require.NoError(t, runMigrate(cmd, nil))
	assert.Contains(t, out.String(), "CREATE TABLE")
}

func TestRunMigrate_RequiresURL(t *testing.T) {
	resetFlags(t)

	cmd, _ := outputCommand()
	err := runMigrate(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
