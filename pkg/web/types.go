package web

import (
	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/services"
)

// CreateProjectRequest represents the request body for creating a project.
type CreateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"        validate:"required,min=1"`
	Description string `json:"description"`
}

// UpdateProjectRequest represents the request body for updating a project.
// All fields are optional to support partial updates.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

type CreateNodeRequest struct {
	ID       string              `json:"id"`
	Label    string              `json:"label"     validate:"required"`
	Type     string              `json:"type"      validate:"required"`
	Status   string              `json:"status"`
	Priority *int                `json:"priority"  validate:"omitempty,min=1,max=4"`
	Progress int                 `json:"progress"  validate:"min=0,max=100"`
	ParentID *string             `json:"parent_id"`
	Tags     []string            `json:"tags"`
	Metadata models.NodeMetadata `json:"metadata"`
}

func (r CreateNodeRequest) input() services.CreateNodeInput {
	return services.CreateNodeInput{
		ID:       r.ID,
		Label:    r.Label,
		Type:     r.Type,
		Status:   r.Status,
		Priority: r.Priority,
		Progress: r.Progress,
		ParentID: r.ParentID,
		Tags:     r.Tags,
		Metadata: r.Metadata,
	}
}

// UpdateNodeRequest is a partial update; absent fields are left unchanged.
type UpdateNodeRequest struct {
	Label    *string              `json:"label,omitempty"     validate:"omitempty,min=1"`
	Type     *string              `json:"type,omitempty"`
	Status   *string              `json:"status,omitempty"`
	Priority *int                 `json:"priority,omitempty"  validate:"omitempty,min=1,max=4"`
	Progress *int                 `json:"progress,omitempty"  validate:"omitempty,min=0,max=100"`
	ParentID *string              `json:"parent_id,omitempty"`
	Tags     []string             `json:"tags,omitempty"`
	Metadata *models.NodeMetadata `json:"metadata,omitempty"`
}

func (r UpdateNodeRequest) input() services.UpdateNodeInput {
	return services.UpdateNodeInput(r)
}

type CreateEdgeRequest struct {
	ID       string              `json:"id"`
	Source   string              `json:"source"   validate:"required"`
	Target   string              `json:"target"   validate:"required"`
	Type     string              `json:"type"     validate:"required"`
	Status   string              `json:"status"`
	Metadata models.EdgeMetadata `json:"metadata"`
}

type CreateMilestoneRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"        validate:"required"`
	Date        string   `json:"date"         validate:"required,datetime=2006-01-02"`
	Status      string   `json:"status"       validate:"omitempty,oneof=planned pending done"`
	Description string   `json:"description"`
	LinkedNodes []string `json:"linked_nodes"`
}

type UpdateMilestoneRequest struct {
	Title       *string  `json:"title,omitempty"        validate:"omitempty,min=1"`
	Date        *string  `json:"date,omitempty"         validate:"omitempty,datetime=2006-01-02"`
	Status      *string  `json:"status,omitempty"       validate:"omitempty,oneof=planned pending done"`
	Description *string  `json:"description,omitempty"`
	LinkedNodes []string `json:"linked_nodes,omitempty"`
}

// ExecuteActionRequest carries the handler params of an action execution.
type ExecuteActionRequest struct {
	Params map[string]any `json:"params"`
}

type GenerateGraphRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

// GenerateGraphResponse is a draft graph. Fallback is set when the keyword
// graph was used instead of the model.
type GenerateGraphResponse struct {
	*models.Graph

	Fallback bool `json:"fallback"`
}
