package builtins

import (
	"context"

	"github.com/3star333/tradestudyagent/internal/export"
	"github.com/3star333/tradestudyagent/internal/schema"
	"github.com/3star333/tradestudyagent/internal/study"
	"github.com/3star333/tradestudyagent/internal/tool"
	"github.com/3star333/tradestudyagent/internal/types"
)

// PublishToGoogleTool fans a trade study out to the requested publishing
// targets via the export coordinator. It never aborts early: a missing
// study yields a single error result covering all targets, and each
// target attempt is isolated from the others.
type PublishToGoogleTool struct {
	store       study.Store
	coordinator *export.Coordinator
}

// NewPublishToGoogleTool creates a publish_to_google tool.
func NewPublishToGoogleTool(store study.Store, coordinator *export.Coordinator) tool.Tool {
	return &PublishToGoogleTool{store: store, coordinator: coordinator}
}

func (t *PublishToGoogleTool) Name() string {
	return "publish_to_google"
}

func (t *PublishToGoogleTool) Description() string {
	return "Publish a trade study's artifacts to the requested targets (doc, sheet, slides, drive), returning one status per requested target."
}

func (t *PublishToGoogleTool) Tags() []string {
	return []string{"study", "publish", "export"}
}

func (t *PublishToGoogleTool) InputSchema() *schema.JSONSchema {
	return schema.Object(map[string]*schema.JSONSchema{
		"id": schema.String(),
		"targets": schema.Object(map[string]*schema.JSONSchema{
			"doc":    {Type: "boolean"},
			"sheet":  {Type: "boolean"},
			"slides": {Type: "boolean"},
			"drive":  {Type: "boolean"},
		}),
		"folderId": schema.String(),
	}, "id", "targets")
}

func (t *PublishToGoogleTool) Execute(ctx context.Context, input map[string]any) (any, error) {
	id, err := idField(input)
	if err != nil {
		return nil, err
	}

	loaded, err := t.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return []export.PublishResult{{
			Target:  "all",
			Status:  types.StepStatusError,
			Message: "Trade study not found",
		}}, nil
	}

	folderID, _ := input["folderId"].(string)

	return t.coordinator.Export(ctx, export.Request{
		Study:    loaded,
		Targets:  decodeTargets(input["targets"]),
		FolderID: folderID,
	}), nil
}

func decodeTargets(value any) export.Targets {
	flags, _ := value.(map[string]any)
	boolFlag := func(key string) bool {
		b, _ := flags[key].(bool)
		return b
	}
	return export.Targets{
		Doc:   boolFlag("doc"),
		Sheet: boolFlag("sheet"),
		Slide: boolFlag("slides"),
		Drive: boolFlag("drive"),
	}
}
