package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/google/uuid"
)

// draft is the JSON shape requested from the model.
type draft struct {
	Nodes []draftNode `json:"nodes"`
	Edges []draftEdge `json:"edges"`
}

type draftNode struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

type draftEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Kind   string `json:"kind"`
}

// Older prompts asked for these status and edge words.
var legacyStatuses = map[string]models.NodeStatus{
	"ok":      models.NodeStatusIdle,
	"focus":   models.NodeStatusInProgress,
	"blocked": models.NodeStatusBlocked,
	"overdue": models.NodeStatusOverdue,
}

var legacyEdgeKinds = map[string]models.EdgeType{
	"depends": models.EdgeTypeDependency,
	"relates": models.EdgeTypeReference,
	"subtask": models.EdgeTypeParent,
}

var errEmptyGraph = errors.New("model returned no nodes")

// stripFences removes a surrounding markdown code fence.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

func parseGraph(text, projectID string, now time.Time) (*models.Graph, error) {
	var d draft
	if err := json.Unmarshal([]byte(stripFences(text)), &d); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	if len(d.Nodes) == 0 {
		return nil, errEmptyGraph
	}

	graph := &models.Graph{
		Nodes:      make([]*models.Node, 0, len(d.Nodes)),
		Edges:      []*models.Edge{},
		Milestones: []*models.Milestone{},
	}

	seen := make(map[string]struct{}, len(d.Nodes))

	for _, n := range d.Nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			return nil, errors.New("model returned a node without id")
		}

		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("model returned duplicate node id %q", id)
		}

		seen[id] = struct{}{}

		graph.Nodes = append(graph.Nodes, draftToNode(n, id, projectID, now))
	}

	for _, e := range d.Edges {
		_, sourceOK := seen[e.Source]
		_, targetOK := seen[e.Target]

		if !sourceOK || !targetOK {
			return nil, fmt.Errorf("model returned edge %s -> %s with unknown endpoint", e.Source, e.Target)
		}

		graph.Edges = append(graph.Edges, &models.Edge{
			ID:        uuid.New().String(),
			ProjectID: projectID,
			Source:    e.Source,
			Target:    e.Target,
			Type:      edgeType(e),
			Status:    models.EdgeStatusActive,
			CreatedAt: now,
		})
	}

	return graph, nil
}

func draftToNode(n draftNode, id, projectID string, now time.Time) *models.Node {
	label := strings.TrimSpace(n.Label)
	if label == "" {
		label = id
	}

	nodeType := models.ParseNodeType(n.Type)
	if nodeType == models.NodeTypeUnknown {
		nodeType = models.NodeTypeTask
	}

	status, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(n.Status))]
	if !ok {
		status = models.ParseNodeStatus(n.Status).OrUnknown()
		if status == "" || status == models.NodeStatusUnknown {
			status = models.NodeStatusIdle
		}
	}

	priority := n.Priority
	if priority < models.MinNodePriority || priority > models.MaxNodePriority {
		priority = models.DefaultNodePriority
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.Node{
		ID:        id,
		ProjectID: projectID,
		Label:     label,
		Type:      nodeType,
		Status:    status,
		Priority:  priority,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func edgeType(e draftEdge) models.EdgeType {
	switch t := models.EdgeType(strings.ToLower(e.Type)); t {
	case models.EdgeTypeParent, models.EdgeTypeDependency, models.EdgeTypeReference:
		return t
	}

	if t, ok := legacyEdgeKinds[strings.ToLower(e.Kind)]; ok {
		return t
	}

	return models.EdgeTypeReference
}
