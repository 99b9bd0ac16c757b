package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/memstore"
	"github.com/jonathan/talent-lifecycle/internal/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// fixture is a snapshot file with a small seeded data set.
type fixture struct {
	path       string
	employerID uuid.UUID
	partnerID  uuid.UUID
	enrollment types.Enrollment
	applied    types.Application
	hired      types.Application
}

func writeFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		path:       filepath.Join(t.TempDir(), "snapshot.json"),
		employerID: uuid.New(),
		partnerID:  uuid.New(),
	}

	mem := memstore.New()
	sari := types.TalentProfile{ID: uuid.New(), Name: "Sari", CityKey: "bandung", Skills: []string{"Python"}, CareerStatus: "Job Seeker"}
	mem.PutTalent(sari)
	mem.PutTalent(types.TalentProfile{ID: uuid.New(), Name: "Budi", CityKey: "surabaya", Skills: []string{"Welding"}, CareerStatus: "Employed"})
	mem.PutTalent(types.TalentProfile{ID: uuid.New(), Name: "Ayu", CityKey: "Bekasi", Skills: []string{"Excel"}})
	mem.PutEmployer(types.Employer{ID: f.employerID, Name: "PT Sinar Bandung", Category: types.EmployerCategoryPrivate, CityKey: "bandung", TotalEmployees: 250, DisabledEmployees: 1})

	training := types.TrainingProgram{ID: uuid.New(), PartnerID: f.partnerID, Title: "Spreadsheet Basics", Organizer: "Inklusi Academy", Skills: []string{"Python", "Excel"}}
	mem.PutTrainingProgram(training)

	f.enrollment = types.Enrollment{ID: uuid.New(), TalentID: sari.ID, PartnerID: f.partnerID, TrainingID: training.ID, Status: types.EnrollmentAccepted}
	mem.PutEnrollment(f.enrollment)

	f.applied = types.Application{ID: uuid.New(), TalentID: sari.ID, EmployerID: f.employerID, JobID: uuid.New(), Status: types.ApplicationApplied}
	f.hired = types.Application{ID: uuid.New(), TalentID: sari.ID, EmployerID: f.employerID, JobID: uuid.New(), Status: types.ApplicationHired}
	mem.PutApplication(f.applied)
	mem.PutApplication(f.hired)

	require.NoError(t, saveSnapshot(mem, f.path))
	return f
}

// resetFlags clears the package-level flag values after a test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JURISDICTION_MAP", "")
	t.Setenv("PORT", "")
	t.Cleanup(func() {
		configPath, databaseURL, snapshotPath, mapPath = "", "", "", ""
		statsActor, tokenActor, transitionActor = actorFlags{}, actorFlags{}, actorFlags{}
		statsJSON, statsQuotas = false, false
		transitionKind, transitionIDs, transitionStatus, transitionNotes, transitionSave = "", nil, "", "", false
		validateMapPath = ""
		migratePrint, migrateURL = false, ""
	})
}

func outputCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}
