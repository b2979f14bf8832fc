package export

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/types"
)

// Target names a publishing destination.
type Target string

const (
	TargetDoc   Target = "doc"
	TargetSheet Target = "sheet"
	TargetSlide Target = "slide"
	TargetDrive Target = "drive"
)

// String returns the string representation of Target
func (t Target) String() string {
	return string(t)
}

// PublishResult is the outcome of one publish attempt against one target.
// Status is ok when an artifact was created, skipped when a precondition
// was not met (missing credential, no destination folder), and error when
// an attempt was made and failed.
type PublishResult struct {
	Target  Target           `json:"target"`
	Status  types.StepStatus `json:"status"`
	Message string           `json:"message"`
	FileID  string           `json:"fileId,omitempty"`
}

// Section is one heading/body pair of a published document.
type Section struct {
	Heading string
	Body    string
}

// Publisher is the external document-publishing boundary. Implementations
// report failure through the result status, never by panicking; the
// Coordinator still guards each call so one misbehaving target cannot
// take down the rest of the fan-out.
type Publisher interface {
	CreateDocument(ctx context.Context, title string, sections []Section, folderID string) PublishResult
	CreateSpreadsheet(ctx context.Context, title string, matrix [][]string, folderID string) PublishResult
	CreateSlideDeck(ctx context.Context, title string, folderID string) PublishResult
	UploadFile(ctx context.Context, title string, content []byte, folderID string) PublishResult
}

// UnconfiguredPublisher is the Publisher used when no publishing
// credentials are configured. Every attempt reports skipped so pipelines
// degrade cleanly instead of erroring.
type UnconfiguredPublisher struct{}

// NewUnconfiguredPublisher creates a Publisher that skips every target.
func NewUnconfiguredPublisher() *UnconfiguredPublisher {
	return &UnconfiguredPublisher{}
}

const unconfiguredMessage = "publishing credentials not configured"

func (u *UnconfiguredPublisher) CreateDocument(_ context.Context, _ string, _ []Section, _ string) PublishResult {
	return PublishResult{Status: types.StepStatusSkipped, Message: unconfiguredMessage}
}

func (u *UnconfiguredPublisher) CreateSpreadsheet(_ context.Context, _ string, _ [][]string, _ string) PublishResult {
	return PublishResult{Status: types.StepStatusSkipped, Message: unconfiguredMessage}
}

func (u *UnconfiguredPublisher) CreateSlideDeck(_ context.Context, _ string, _ string) PublishResult {
	return PublishResult{Status: types.StepStatusSkipped, Message: unconfiguredMessage}
}

func (u *UnconfiguredPublisher) UploadFile(_ context.Context, _ string, _ []byte, _ string) PublishResult {
	return PublishResult{Status: types.StepStatusSkipped, Message: unconfiguredMessage}
}
