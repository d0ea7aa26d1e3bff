package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvsite/interactome/internal/core/model"
)

func clusteredNetwork() *model.NetworkResult {
	// Two tight triangles joined by nothing, plus one isolated protein.
	nodes := []string{"m.A", "m.B", "m.C", "m.X", "m.Y", "m.Z", "m.Lone"}
	result := &model.NetworkResult{
		Key: model.NewNetworkRequestKey(nodes, 400, model.NetworkFull, 10090),
	}
	for _, id := range nodes {
		result.Nodes = append(result.Nodes, model.NetworkNode{CanonicalID: id, PreferredName: id})
	}
	for _, pair := range [][2]string{
		{"m.A", "m.B"}, {"m.B", "m.C"}, {"m.A", "m.C"},
		{"m.X", "m.Y"}, {"m.Y", "m.Z"}, {"m.X", "m.Z"},
	} {
		result.Edges = append(result.Edges, model.NewInteractionEdge(pair[0], pair[1], 800, nil))
	}
	return result
}

func TestClusterAssignmentsSeparatesComponents(t *testing.T) {
	assignment := clusterAssignments(clusteredNetwork())
	require.NotNil(t, assignment)

	assert.Equal(t, assignment["m.A"], assignment["m.B"])
	assert.Equal(t, assignment["m.A"], assignment["m.C"])
	assert.Equal(t, assignment["m.X"], assignment["m.Y"])
	assert.Equal(t, assignment["m.X"], assignment["m.Z"])
	assert.NotEqual(t, assignment["m.A"], assignment["m.X"])
	assert.NotEqual(t, assignment["m.A"], assignment["m.Lone"], "isolated protein forms its own module")
}

func TestClusterAssignmentsDeterministic(t *testing.T) {
	network := clusteredNetwork()
	first := clusterAssignments(network)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, clusterAssignments(network))
	}
}

func TestClusterAssignmentsEmptyNetwork(t *testing.T) {
	result := &model.NetworkResult{
		Key:   model.NewNetworkRequestKey([]string{"m.A"}, 400, model.NetworkFull, 10090),
		Nodes: []model.NetworkNode{{CanonicalID: "m.A", PreferredName: "A"}},
	}
	assert.Nil(t, clusterAssignments(result), "no edges, no clustering")
}

func TestToGraphCarriesClusterAttribute(t *testing.T) {
	graph := ToGraph(clusteredNetwork())

	byID := make(map[string]model.GraphNode)
	for _, n := range graph.Nodes {
		byID[n.ID] = n
	}
	require.Contains(t, byID, "m.A")
	assert.Equal(t, byID["m.A"].Attributes["cluster"], byID["m.B"].Attributes["cluster"])
	assert.NotEqual(t, byID["m.A"].Attributes["cluster"], byID["m.X"].Attributes["cluster"])
}
