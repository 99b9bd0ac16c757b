//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request TransitionRequest
		wantErr bool
	}{
		{name: "valid", request: TransitionRequest{Status: "reviewing"}},
		{name: "valid with notes", request: TransitionRequest{Status: "rejected", Notes: "position filled"}},
		{name: "missing status", request: TransitionRequest{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBulkTransitionRequest_Validation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := BulkTransitionRequest{IDs: []uuid.UUID{uuid.New(), uuid.New()}, Status: "rejected"}
		assert.NoError(t, req.Validate())
	})

	t.Run("empty ids", func(t *testing.T) {
		req := BulkTransitionRequest{Status: "rejected"}
		err := req.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "IDs")
	})

	t.Run("nil id in list", func(t *testing.T) {
		req := BulkTransitionRequest{IDs: []uuid.UUID{uuid.New(), uuid.Nil}, Status: "rejected"}
		assert.Error(t, req.Validate())
	})
}

func TestSubmitVerificationRequest_Validation(t *testing.T) {
	valid := SubmitVerificationRequest{
		SubjectKind:  "company",
		SubjectID:    uuid.New(),
		DocumentLink: "https://drive.google.com/file/d/abc/view",
	}
	assert.NoError(t, valid.Validate())

	badKind := valid
	badKind.SubjectKind = "talent"
	assert.Error(t, badKind.Validate())

	badLink := valid
	badLink.DocumentLink = "not a link"
	assert.Error(t, badLink.Validate())

	noSubject := valid
	noSubject.SubjectID = uuid.Nil
	assert.Error(t, noSubject.Validate())
}

func TestParsePipelineKind(t *testing.T) {
	for input, want := range map[string]PipelineKind{
		"applications":  PipelineApplication,
		"Enrollment":    PipelineEnrollment,
		"verifications": PipelineVerification,
	} {
		got, err := ParsePipelineKind(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParsePipelineKind("talents")
	assert.Error(t, err)
}

func TestParseJurisdictionLevel(t *testing.T) {
	level, err := ParseJurisdictionLevel(" Province ")
	require.NoError(t, err)
	assert.Equal(t, JurisdictionProvince, level)

	level, err = ParseJurisdictionLevel("")
	require.NoError(t, err)
	assert.Equal(t, JurisdictionLevel(""), level)

	_, err = ParseJurisdictionLevel("district")
	assert.Error(t, err)
}
