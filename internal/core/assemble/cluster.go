package assemble

import (
	"fmt"
	"sort"

	"github.com/dvsite/interactome/internal/core/model"
)

// maxPropagationRounds bounds label propagation; dense interaction networks
// stabilize in a handful of rounds.
const maxPropagationRounds = 20

// clusterAssignments groups the network's proteins into interaction modules
// with label propagation, weighted by combined score. Deterministic: nodes
// are visited in sorted order and label ties break lexically, so the same
// network always yields the same assignment.
func clusterAssignments(result *model.NetworkResult) map[string]string {
	if len(result.Edges) == 0 {
		return nil
	}

	adj := make(map[string]map[string]int)
	for _, node := range result.Nodes {
		adj[node.CanonicalID] = make(map[string]int)
	}
	for _, edge := range result.Edges {
		if _, ok := adj[edge.SourceID]; !ok {
			continue
		}
		if _, ok := adj[edge.TargetID]; !ok {
			continue
		}
		adj[edge.SourceID][edge.TargetID] += edge.CombinedScore
		adj[edge.TargetID][edge.SourceID] += edge.CombinedScore
	}

	ids := make([]string, 0, len(adj))
	labels := make(map[string]string, len(adj))
	for id := range adj {
		ids = append(ids, id)
		labels[id] = id
	}
	sort.Strings(ids)

	for round := 0; round < maxPropagationRounds; round++ {
		changed := 0
		for _, id := range ids {
			neighbors := adj[id]
			if len(neighbors) == 0 {
				continue
			}

			weights := make(map[string]int)
			for neighbor, weight := range neighbors {
				weights[labels[neighbor]] += weight
			}

			best := labels[id]
			bestWeight := -1
			for label, weight := range weights {
				if weight > bestWeight || (weight == bestWeight && label < best) {
					best, bestWeight = label, weight
				}
			}
			if best != labels[id] {
				labels[id] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	// Renumber by first appearance in sorted node order so the raw labels
	// (arbitrary canonical ids) never leak into the output.
	names := make(map[string]string)
	assignment := make(map[string]string, len(labels))
	for _, id := range ids {
		label := labels[id]
		name, ok := names[label]
		if !ok {
			name = fmt.Sprintf("c%d", len(names)+1)
			names[label] = name
		}
		assignment[id] = name
	}
	return assignment
}
