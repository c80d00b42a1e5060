// Package persistencetest holds the behaviour every persistence backend must
// share. Backends call RunSuite from their own tests.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/dukex/vislzr/pkg/models"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSuite exercises p. Every subtest works inside its own project so the
// store may be shared.
func RunSuite(t *testing.T, p persistence.Persistence) {
	t.Helper()

	tests := []struct {
		name string
		run  func(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project)
	}{
		{"projects", testProjects},
		{"node delete removes incident edges and history", testNodeDelete},
		{"node metadata round trip", testNodeMetadata},
		{"edge requires endpoints", testEdgeEndpoints},
		{"milestones", testMilestones},
		{"history most recent first", testHistoryOrder},
		{"replace graph", testReplaceGraph},
		{"project delete cascades", testProjectDeleteCascades},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			project := testutil.CreateTestProject()
			require.NoError(t, p.ProjectRepository().Save(ctx, project))

			tt.run(t, p, ctx, project)
		})
	}
}

func saveNodes(t *testing.T, p persistence.Persistence, ctx context.Context, projectID string, ids ...string) {
	t.Helper()

	for _, id := range ids {
		node := testutil.CreateTestNode(projectID, func(n *models.Node) { n.ID = id })
		require.NoError(t, p.NodeRepository().Save(ctx, node))
	}
}

func testProjects(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	repo := p.ProjectRepository()

	got, err := repo.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.Name, got.Name)
	assert.True(t, project.CreatedAt.Equal(got.CreatedAt))

	project.Name = "Renamed"
	require.NoError(t, repo.Save(ctx, project))

	got, err = repo.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, projectIDs(all), project.ID)

	require.NoError(t, repo.Delete(ctx, project.ID))

	_, err = repo.Get(ctx, project.ID)
	assert.True(t, persistence.IsProjectNotFound(err))
	assert.True(t, persistence.IsProjectNotFound(repo.Delete(ctx, project.ID)))
}

func projectIDs(projects []*models.Project) []string {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	return ids
}

func testNodeDelete(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	saveNodes(t, p, ctx, project.ID, "a", "b", "c")

	require.NoError(t, p.EdgeRepository().Save(ctx, testutil.CreateTestEdge(project.ID, "a", "b")))
	require.NoError(t, p.EdgeRepository().Save(ctx, testutil.CreateTestEdge(project.ID, "b", "c")))
	require.NoError(t, p.EdgeRepository().Save(ctx, testutil.CreateTestEdge(project.ID, "a", "c")))
	require.NoError(t, p.ActionHistoryRepository().Append(ctx, testutil.CreateTestHistory(project.ID, "b", time.Now())))

	require.NoError(t, p.NodeRepository().Delete(ctx, project.ID, "b"))

	edges, err := p.EdgeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "a", edges[0].Source)
	assert.Equal(t, "c", edges[0].Target)

	history, err := p.ActionHistoryRepository().ListByNode(ctx, project.ID, "b", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = p.NodeRepository().Get(ctx, project.ID, "b")
	assert.True(t, persistence.IsNodeNotFound(err))
	assert.True(t, persistence.IsNodeNotFound(p.NodeRepository().Delete(ctx, project.ID, "b")))
}

func testNodeMetadata(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	parent := "root"
	hours := 8

	node := testutil.CreateTestNode(project.ID, func(n *models.Node) {
		n.Type = models.NodeTypeDatabase
		n.Status = models.NodeStatusBlocked
		n.Progress = 40
		n.ParentID = &parent
		n.Tags = []string{"backend"}
		n.Metadata = models.NodeMetadata{
			DueDate:        "2026-01-01",
			EstimatedHours: &hours,
			DependsOn:      []string{"x"},
			Extra:          map[string]any{"color": "blue"},
		}
	})
	require.NoError(t, p.NodeRepository().Save(ctx, node))

	got, err := p.NodeRepository().Get(ctx, project.ID, node.ID)
	require.NoError(t, err)
	assert.Equal(t, node.Metadata, got.Metadata)
	assert.Equal(t, node.Type, got.Type)
	assert.Equal(t, node.Status, got.Status)
	assert.Equal(t, node.Progress, got.Progress)
	assert.Equal(t, node.Tags, got.Tags)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent, *got.ParentID)

	nodes, err := p.NodeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func testEdgeEndpoints(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	err := p.EdgeRepository().Save(ctx, testutil.CreateTestEdge(project.ID, "ghost", "other"))
	assert.True(t, persistence.IsNodeNotFound(err))

	_, err = p.EdgeRepository().Get(ctx, project.ID, "missing")
	assert.True(t, persistence.IsEdgeNotFound(err))

	saveNodes(t, p, ctx, project.ID, "a", "b")

	edge := testutil.CreateTestEdge(project.ID, "a", "b")
	require.NoError(t, p.EdgeRepository().Save(ctx, edge))

	got, err := p.EdgeRepository().Get(ctx, project.ID, edge.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EdgeTypeDependency, got.Type)

	require.NoError(t, p.EdgeRepository().Delete(ctx, project.ID, edge.ID))
	assert.True(t, persistence.IsEdgeNotFound(p.EdgeRepository().Delete(ctx, project.ID, edge.ID)))
}

func testMilestones(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	repo := p.MilestoneRepository()

	milestone := testutil.CreateTestMilestone(project.ID, func(m *models.Milestone) {
		m.LinkedNodes = []string{"n1"}
	})
	require.NoError(t, repo.Save(ctx, milestone))

	milestone.Status = models.MilestoneStatusDone
	require.NoError(t, repo.Save(ctx, milestone))

	all, err := repo.ListByProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.MilestoneStatusDone, all[0].Status)
	assert.Equal(t, []string{"n1"}, all[0].LinkedNodes)

	require.NoError(t, repo.Delete(ctx, project.ID, milestone.ID))
	assert.True(t, persistence.IsMilestoneNotFound(repo.Delete(ctx, project.ID, milestone.ID)))
}

func testHistoryOrder(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	repo := p.ActionHistoryRepository()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, actionID := range []string{"a0", "a1", "a2", "a3", "a4"} {
		entry := testutil.CreateTestHistory(project.ID, "n1", base.Add(time.Duration(i)*time.Minute))
		entry.ActionID = actionID
		require.NoError(t, repo.Append(ctx, entry))
	}

	require.NoError(t, repo.Append(ctx, testutil.CreateTestHistory(project.ID, "other", base)))

	all, err := repo.ListByNode(ctx, project.ID, "n1", 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "a4", all[0].ActionID)
	assert.Equal(t, "a0", all[4].ActionID)
	assert.Equal(t, "view-details", all[0].Result["action"])

	limited, err := repo.ListByNode(ctx, project.ID, "n1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a3", limited[1].ActionID)
}

func testReplaceGraph(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	saveNodes(t, p, ctx, project.ID, "old")
	require.NoError(t, p.ActionHistoryRepository().Append(ctx, testutil.CreateTestHistory(project.ID, "old", time.Now())))

	graph := &models.Graph{
		Project: project,
		Nodes: []*models.Node{
			testutil.CreateTestNode(project.ID, func(n *models.Node) { n.ID = "n1" }),
			testutil.CreateTestNode(project.ID, func(n *models.Node) { n.ID = "n2" }),
		},
		Edges:      []*models.Edge{testutil.CreateTestEdge(project.ID, "n1", "n2")},
		Milestones: []*models.Milestone{testutil.CreateTestMilestone(project.ID)},
	}
	require.NoError(t, p.ReplaceGraph(ctx, graph))

	nodes, err := p.NodeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, nodes, 2)

	edges, err := p.EdgeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	history, err := p.ActionHistoryRepository().ListByNode(ctx, project.ID, "old", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, p.HealthCheck(ctx))
}

func testProjectDeleteCascades(t *testing.T, p persistence.Persistence, ctx context.Context, project *models.Project) {
	saveNodes(t, p, ctx, project.ID, "a", "b")
	require.NoError(t, p.EdgeRepository().Save(ctx, testutil.CreateTestEdge(project.ID, "a", "b")))
	require.NoError(t, p.MilestoneRepository().Save(ctx, testutil.CreateTestMilestone(project.ID)))
	require.NoError(t, p.ActionHistoryRepository().Append(ctx, testutil.CreateTestHistory(project.ID, "a", time.Now())))

	require.NoError(t, p.ProjectRepository().Delete(ctx, project.ID))

	// A project saved again under the same id starts empty.
	require.NoError(t, p.ProjectRepository().Save(ctx, project))

	nodes, err := p.NodeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes)

	milestones, err := p.MilestoneRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, milestones)

	history, err := p.ActionHistoryRepository().ListByNode(ctx, project.ID, "a", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}
