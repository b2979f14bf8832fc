package builtins

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/types"
)

// LoadTradeStudyTool reads a trade study by id. A missing study yields a
// nil result, never an error, so orchestrators can branch on absence.
type LoadTradeStudyTool struct {
	store study.Store
}

// NewLoadTradeStudyTool creates a load_trade_study tool over the store.
func NewLoadTradeStudyTool(store study.Store) tool.Tool {
	return &LoadTradeStudyTool{store: store}
}

func (t *LoadTradeStudyTool) Name() string {
	return "load_trade_study"
}

func (t *LoadTradeStudyTool) Description() string {
	return "Load a trade study by id, with its attachments. Returns null if the study does not exist."
}

func (t *LoadTradeStudyTool) Tags() []string {
	return []string{"study", "read"}
}

func (t *LoadTradeStudyTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"id": schema.String().WithDescription("Trade study id"),
	}, "id")
}

func (t *LoadTradeStudyTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	id, err := idField(input)
	if err != nil {
		return nil, err
	}

	loaded, err := t.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return nil, nil
	}
	return loaded, nil
}

// UpdateTradeStudyTool applies a partial update to a trade study. Fields
// not present in the input are left untouched; a missing study yields a
// nil result rather than an error.
type UpdateTradeStudyTool struct {
	store study.Store
}

// NewUpdateTradeStudyTool creates an update_trade_study tool over the store.
func NewUpdateTradeStudyTool(store study.Store) tool.Tool {
	return &UpdateTradeStudyTool{store: store}
}

func (t *UpdateTradeStudyTool) Name() string {
	return "update_trade_study"
}

func (t *UpdateTradeStudyTool) Description() string {
	return "Apply a partial update (title, summary, status, data) to a trade study. Returns null if the study does not exist."
}

func (t *UpdateTradeStudyTool) Tags() []string {
	return []string{"study", "write"}
}

func (t *UpdateTradeStudyTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"id":      schema.String(),
		"title":   schema.String(),
		"summary": schema.String(),
		"status": {Enum: []any{
			types.StudyStatusDraft.String(),
			types.StudyStatusInReview.String(),
			types.StudyStatusPublished.String(),
			types.StudyStatusArchived.String(),
		}},
		"data": {Type: "object"},
	}, "id")
}

func (t *UpdateTradeStudyTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	id, err := idField(input)
	if err != nil {
		return nil, err
	}

	var params study.UpdateParams
	if title, ok := input["title"].(string); ok {
		params.Title = &title
	}
	if summary, ok := input["summary"].(string); ok {
		params.Summary = &summary
	}
	if status, ok := input["status"].(string); ok {
		studyStatus := types.StudyStatus(status)
		params.Status = &studyStatus
	}
	if data, ok := input["data"].(map[string]any); ok {
		params.Data = data
	}

	updated, err := t.store.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}
	return updated, nil
}

// idField parses the required id input field.
func idField(input map[string]any) (types.ID, error) {
	raw, _ := input["id"].(string)
	id, err := types.ParseID(raw)
	if err != nil {
		return "", types.NewError(types.TOOL_INVALID_INPUT, "id must be a valid identifier")
	}
	return id, nil
}
