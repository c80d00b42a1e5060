package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukex/vislzr/pkg/models"
)

type seedNode struct {
	id       string
	label    string
	status   models.NodeStatus
	priority int
	tag      string
}

type seedEdge struct {
	source, target string
	edgeType       models.EdgeType
}

var (
	appNodes = []seedNode{
		{"frontend", "Frontend", models.NodeStatusIdle, 3, "ui"},
		{"backend", "Backend", models.NodeStatusIdle, 3, "api"},
		{"database", "Database", models.NodeStatusIdle, 2, "data"},
		{"deployment", "Deployment", models.NodeStatusBlocked, 1, "ops"},
	}
	appEdges = []seedEdge{
		{"frontend", "backend", models.EdgeTypeDependency},
		{"backend", "database", models.EdgeTypeDependency},
		{"frontend", "deployment", models.EdgeTypeReference},
		{"backend", "deployment", models.EdgeTypeReference},
	}

	planNodes = []seedNode{
		{"planning", "Planning", models.NodeStatusIdle, 4, "phase"},
		{"design", "Design", models.NodeStatusIdle, 3, "phase"},
		{"development", "Development", models.NodeStatusInProgress, 4, "phase"},
		{"testing", "Testing", models.NodeStatusBlocked, 3, "phase"},
		{"launch", "Launch", models.NodeStatusBlocked, 2, "phase"},
	}
	planEdges = []seedEdge{
		{"planning", "design", models.EdgeTypeDependency},
		{"design", "development", models.EdgeTypeDependency},
		{"development", "testing", models.EdgeTypeDependency},
		{"testing", "launch", models.EdgeTypeDependency},
	}

	taskNodes = []seedNode{
		{"task1", "Research", models.NodeStatusIdle, 3, "task"},
		{"task2", "Analysis", models.NodeStatusInProgress, 4, "task"},
		{"task3", "Implementation", models.NodeStatusBlocked, 3, "task"},
		{"task4", "Review", models.NodeStatusBlocked, 2, "task"},
	}
	taskEdges = []seedEdge{
		{"task1", "task2", models.EdgeTypeDependency},
		{"task2", "task3", models.EdgeTypeDependency},
		{"task3", "task4", models.EdgeTypeDependency},
	}
)

// fallbackGraph picks a canned graph from keywords in the prompt.
func fallbackGraph(projectID, prompt string, now time.Time) *models.Graph {
	lower := strings.ToLower(prompt)

	nodes, edges := taskNodes, taskEdges

	switch {
	case strings.Contains(lower, "web") || strings.Contains(lower, "app"):
		nodes, edges = appNodes, appEdges
	case strings.Contains(lower, "project") || strings.Contains(lower, "plan"):
		nodes, edges = planNodes, planEdges
	}

	graph := &models.Graph{
		Nodes:      make([]*models.Node, 0, len(nodes)),
		Edges:      make([]*models.Edge, 0, len(edges)),
		Milestones: []*models.Milestone{},
	}

	for _, n := range nodes {
		graph.Nodes = append(graph.Nodes, &models.Node{
			ID:        n.id,
			ProjectID: projectID,
			Label:     n.label,
			Type:      models.NodeTypeTask,
			Status:    n.status,
			Priority:  n.priority,
			Tags:      []string{n.tag},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	for _, e := range edges {
		graph.Edges = append(graph.Edges, &models.Edge{
			ID:        fmt.Sprintf("%s-%s", e.source, e.target),
			ProjectID: projectID,
			Source:    e.source,
			Target:    e.target,
			Type:      e.edgeType,
			Status:    models.EdgeStatusActive,
			CreatedAt: now,
		})
	}

	return graph
}
