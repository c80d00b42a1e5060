package events_test

import (
	"encoding/json"
	"testing"

	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphChanged_Constructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		event     events.GraphChanged
		reason    events.Reason
		node      string
		edge      string
		milestone string
	}{
		{"node", events.NewNodeChanged("p1", events.ReasonNodeAdded, "n1"), events.ReasonNodeAdded, "n1", "", ""},
		{"edge", events.NewEdgeChanged("p1", events.ReasonEdgeRemoved, "e1"), events.ReasonEdgeRemoved, "", "e1", ""},
		{"milestone", events.NewMilestoneChanged("p1", events.ReasonMilestoneUpdated, "m1"), events.ReasonMilestoneUpdated, "", "", "m1"},
		{"replace", events.NewGraphReplaced("p1"), events.ReasonReplace, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, events.GraphChangedEvent, tt.event.GetType())
			assert.Equal(t, events.GraphChangedEvent, tt.event.Type)
			assert.Equal(t, "p1", tt.event.ProjectID)
			assert.NotEmpty(t, tt.event.ID)
			assert.False(t, tt.event.Timestamp.IsZero())
			assert.Equal(t, tt.reason, tt.event.Reason)
			assert.Equal(t, tt.node, tt.event.NodeID)
			assert.Equal(t, tt.edge, tt.event.EdgeID)
			assert.Equal(t, tt.milestone, tt.event.MilestoneID)
		})
	}
}

func TestGraphChanged_JSONOmitsUnsetIDs(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(events.NewNodeChanged("p1", events.ReasonNodeRemoved, "n1"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "node_removed", decoded["reason"])
	assert.Equal(t, "n1", decoded["node_id"])
	assert.Equal(t, "graph.changed", decoded["type"])
	assert.NotContains(t, decoded, "edge_id")
	assert.NotContains(t, decoded, "milestone_id")
}

func TestActionExecuted(t *testing.T) {
	t.Parallel()

	result := models.ExecutionResult{
		Status:   models.ExecutionStatusFailed,
		ActionID: "update-progress",
		NodeID:   "n1",
		Result:   map[string]any{},
	}

	event := events.NewActionExecuted("p1", result)

	assert.Equal(t, events.ActionExecutedEvent, event.GetType())
	assert.Equal(t, result, event.Result)
}
