package types

import (
	"encoding/json"
	"fmt"
)

// StudyStatus represents the lifecycle state of a trade study.
// Transitions are caller-driven; the only validation is enum membership.
type StudyStatus string

const (
	StudyStatusDraft     StudyStatus = "draft"
	StudyStatusInReview  StudyStatus = "in_review"
	StudyStatusPublished StudyStatus = "published"
	StudyStatusArchived  StudyStatus = "archived"
)

// String returns the string representation of StudyStatus
func (s StudyStatus) String() string {
	return string(s)
}

// IsValid checks if the StudyStatus is a valid value
func (s StudyStatus) IsValid() bool {
	switch s {
	case StudyStatusDraft, StudyStatusInReview, StudyStatusPublished, StudyStatusArchived:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler
func (s StudyStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *StudyStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := StudyStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid study status: %s", str)
	}

	*s = status
	return nil
}

// StepStatus represents the outcome of a single orchestrator step.
type StepStatus string

const (
	StepStatusOK      StepStatus = "ok"
	StepStatusError   StepStatus = "error"
	StepStatusSkipped StepStatus = "skipped"
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	return string(s)
}

// IsValid checks if the StepStatus is a valid value
func (s StepStatus) IsValid() bool {
	switch s {
	case StepStatusOK, StepStatusError, StepStatusSkipped:
		return true
	default:
		return false
	}
}

// AttachmentType identifies which publishing target produced an attachment.
type AttachmentType string

const (
	AttachmentTypeDoc   AttachmentType = "doc"
	AttachmentTypeSheet AttachmentType = "sheet"
	AttachmentTypeSlide AttachmentType = "slide"
	AttachmentTypeDrive AttachmentType = "drive"
)

// String returns the string representation of AttachmentType
func (t AttachmentType) String() string {
	return string(t)
}

// IsValid checks if the AttachmentType is a valid value
func (t AttachmentType) IsValid() bool {
	switch t {
	case AttachmentTypeDoc, AttachmentTypeSheet, AttachmentTypeSlide, AttachmentTypeDrive:
		return true
	default:
		return false
	}
}

// Confidence is a discrete tier describing how well-sourced a research
// finding is.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// String returns the string representation of Confidence
func (c Confidence) String() string {
	return string(c)
}

// ConfidenceForSources derives the confidence tier from the number of
// successfully retrieved sources: 3 or more is high, exactly 2 is medium,
// anything less is low.
func ConfidenceForSources(count int) Confidence {
	switch {
	case count >= 3:
		return ConfidenceHigh
	case count == 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
