package models

import (
	"slices"
	"time"
)

// Project owns a graph of nodes, edges and milestones.
type Project struct {
	ID          string    `json:"id"          validate:"required"`
	Name        string    `json:"name"        validate:"required,min=1"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EdgeType is the relation an edge expresses.
type EdgeType string

const (
	EdgeTypeParent     EdgeType = "parent"
	EdgeTypeDependency EdgeType = "dependency"
	EdgeTypeReference  EdgeType = "reference"
)

// EdgeStatus tracks whether the relation is satisfied.
type EdgeStatus string

const (
	EdgeStatusActive  EdgeStatus = "active"
	EdgeStatusBlocked EdgeStatus = "blocked"
	EdgeStatusMet     EdgeStatus = "met"
)

// Edge is a directed link between two nodes of the same project.
type Edge struct {
	ID        string       `json:"id"         validate:"required"`
	ProjectID string       `json:"project_id"`
	Source    string       `json:"source"     validate:"required"`
	Target    string       `json:"target"     validate:"required"`
	Type      EdgeType     `json:"type"       validate:"required,oneof=parent dependency reference"`
	Status    EdgeStatus   `json:"status"     validate:"omitempty,oneof=active blocked met"`
	Metadata  EdgeMetadata `json:"metadata"`
	CreatedAt time.Time    `json:"created_at"`
}

type EdgeMetadata struct {
	Label  string `json:"label,omitempty"`
	Weight *int   `json:"weight,omitempty"`
}

// Touches reports whether nodeID is either end of the edge.
func (e *Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// MilestoneStatus is the lifecycle of a milestone.
type MilestoneStatus string

const (
	MilestoneStatusPlanned MilestoneStatus = "planned"
	MilestoneStatusPending MilestoneStatus = "pending"
	MilestoneStatusDone    MilestoneStatus = "done"
)

// Milestone is a dated checkpoint linked to a set of nodes.
type Milestone struct {
	ID          string          `json:"id"           validate:"required"`
	ProjectID   string          `json:"project_id"`
	Title       string          `json:"title"        validate:"required"`
	Date        string          `json:"date"         validate:"required,datetime=2006-01-02"`
	Status      MilestoneStatus `json:"status"       validate:"omitempty,oneof=planned pending done"`
	Description string          `json:"description"`
	LinkedNodes []string        `json:"linked_nodes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Graph is the full content of a project.
type Graph struct {
	Project    *Project     `json:"project"`
	Nodes      []*Node      `json:"nodes"`
	Edges      []*Edge      `json:"edges"`
	Milestones []*Milestone `json:"milestones"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	idx := slices.IndexFunc(g.Nodes, func(n *Node) bool { return n.ID == id })
	if idx < 0 {
		return nil, false
	}

	return g.Nodes[idx], true
}
