// Package assemble shapes a fetched network into the renderer-neutral graph
// the frontend consumes. Pure transformation: no I/O, no filtering, and the
// same input always produces byte-identical output so the UI can diff and
// highlight across calls.
package assemble

import (
	"fmt"
	"sort"

	"github.com/dvsite/interactome/internal/core/model"
)

// ToGraph converts a network result into a graph. Node ids are the canonical
// identifiers; edge ids are derived from the ordered endpoint pair, so
// re-assembly never renumbers anything. Confidence filtering happened at
// fetch time; every edge passes through with its combined score as weight.
func ToGraph(result *model.NetworkResult) *model.Graph {
	graph := &model.Graph{
		Nodes: make([]model.GraphNode, 0, len(result.Nodes)),
		Edges: make([]model.GraphEdge, 0, len(result.Edges)),
	}

	clusters := clusterAssignments(result)
	for _, node := range result.Nodes {
		gnode := model.GraphNode{
			ID:    node.CanonicalID,
			Label: node.PreferredName,
		}
		if cluster, ok := clusters[node.CanonicalID]; ok {
			gnode.Attributes = map[string]string{"cluster": cluster}
		}
		graph.Nodes = append(graph.Nodes, gnode)
	}
	sort.Slice(graph.Nodes, func(i, j int) bool { return graph.Nodes[i].ID < graph.Nodes[j].ID })

	for _, edge := range result.Edges {
		graph.Edges = append(graph.Edges, model.GraphEdge{
			ID:     edgeID(edge.SourceID, edge.TargetID),
			Source: edge.SourceID,
			Target: edge.TargetID,
			Weight: edge.CombinedScore,
		})
	}

	return graph
}

// edgeID is stable under endpoint swap: both orderings name the same
// undirected interaction.
func edgeID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s--%s", a, b)
}
