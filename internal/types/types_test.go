package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_GeneratesValidUUID(t *testing.T) {
	id := NewID()
	require.NoError(t, id.Validate())
	assert.False(t, id.IsZero())
}

func TestParseID_RejectsGarbage(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	assert.Error(t, err)

	_, err = ParseID("")
	assert.Error(t, err)
}

func TestID_JSONRoundTrip(t *testing.T) {
	id := NewID()

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestID_MarshalZeroAsNull(t *testing.T) {
	var id ID
	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestAgentError_Format(t *testing.T) {
	err := NewError(STUDY_NOT_FOUND, "Trade study not found")
	assert.Equal(t, "[STUDY_NOT_FOUND] Trade study not found", err.Error())

	wrapped := WrapError(DB_QUERY_FAILED, "load failed", errors.New("disk on fire"))
	assert.Equal(t, "[DB_QUERY_FAILED] load failed: disk on fire", wrapped.Error())
}

func TestAgentError_IsMatchesByCode(t *testing.T) {
	err := WrapError(MODEL_OUTPUT_INVALID, "criteria shape rejected", errors.New("boom"))

	assert.True(t, errors.Is(err, NewError(MODEL_OUTPUT_INVALID, "different message")))
	assert.False(t, errors.Is(err, NewError(STUDY_NOT_FOUND, "different code")))
}

func TestAgentError_UnwrapChain(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(RESEARCH_FETCH_FAILED, "fetch failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, RESEARCH_FETCH_FAILED, CodeOf(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestStudyStatus_Validity(t *testing.T) {
	for _, s := range []StudyStatus{StudyStatusDraft, StudyStatusInReview, StudyStatusPublished, StudyStatusArchived} {
		assert.True(t, s.IsValid(), s.String())
	}
	assert.False(t, StudyStatus("deleted").IsValid())
}

func TestStudyStatus_UnmarshalRejectsUnknown(t *testing.T) {
	var s StudyStatus
	err := json.Unmarshal([]byte(`"deleted"`), &s)
	assert.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`"in_review"`), &s))
	assert.Equal(t, StudyStatusInReview, s)
}

func TestConfidenceForSources(t *testing.T) {
	tests := []struct {
		count int
		want  Confidence
	}{
		{0, ConfidenceLow},
		{1, ConfidenceLow},
		{2, ConfidenceMedium},
		{3, ConfidenceHigh},
		{10, ConfidenceHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ConfidenceForSources(tt.count), "count=%d", tt.count)
	}
}

func TestStepStatus_Validity(t *testing.T) {
	assert.True(t, StepStatusOK.IsValid())
	assert.True(t, StepStatusError.IsValid())
	assert.True(t, StepStatusSkipped.IsValid())
	assert.False(t, StepStatus("pending").IsValid())
}

func TestAttachmentType_Validity(t *testing.T) {
	assert.True(t, AttachmentTypeDoc.IsValid())
	assert.True(t, AttachmentTypeDrive.IsValid())
	assert.False(t, AttachmentType("pdf").IsValid())
}
