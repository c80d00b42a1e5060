package services_test

import (
	"context"
	"testing"

	"github.com/dukex/vislzr/pkg/generator"
	"github.com/dukex/vislzr/pkg/persistence"
	"github.com/dukex/vislzr/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneration_Generate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, project := newStore(t)
	service := services.NewGeneration(testLogger(), store, generator.New(testLogger(), nil))

	result, err := service.Generate(ctx, project.ID, "plan the release")
	require.NoError(t, err)

	assert.True(t, result.Fallback)
	assert.Equal(t, project.ID, result.Graph.Project.ID)
	assert.Len(t, result.Graph.Nodes, 5)

	nodes, err := store.NodeRepository().ListByProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes, "generated graphs are not stored")

	_, err = service.Generate(ctx, project.ID, "   ")
	assert.ErrorIs(t, err, services.ErrPromptRequired)

	_, err = service.Generate(ctx, "missing", "plan")
	assert.True(t, persistence.IsProjectNotFound(err))
}
