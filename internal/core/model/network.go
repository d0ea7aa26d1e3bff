package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NetworkType selects which interaction categories the remote service returns.
type NetworkType string

const (
	NetworkFull       NetworkType = "full"
	NetworkPhysical   NetworkType = "physical"
	NetworkFunctional NetworkType = "functional"
)

// ParseNetworkType validates a caller-supplied network type string.
// The empty string defaults to the full network.
func ParseNetworkType(s string) (NetworkType, error) {
	switch NetworkType(strings.ToLower(strings.TrimSpace(s))) {
	case "", NetworkFull:
		return NetworkFull, nil
	case NetworkPhysical:
		return NetworkPhysical, nil
	case NetworkFunctional:
		return NetworkFunctional, nil
	}
	return "", fmt.Errorf("unknown network type %q", s)
}

// NetworkRequestKey identifies one logical network request. Two requests with
// the same identifier set (in any order), threshold, type and species are the
// same request and share a cache entry.
type NetworkRequestKey struct {
	IdentifierSet       []string    `json:"identifier_set"`
	ConfidenceThreshold int         `json:"confidence_threshold"`
	NetworkType         NetworkType `json:"network_type"`
	SpeciesTaxonomyID   int         `json:"species_taxonomy_id"`
}

// NewNetworkRequestKey sorts and de-duplicates the identifier set so the key
// is canonical from the start.
func NewNetworkRequestKey(ids []string, threshold int, netType NetworkType, species int) NetworkRequestKey {
	set := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		set = append(set, id)
	}
	sort.Strings(set)
	return NetworkRequestKey{
		IdentifierSet:       set,
		ConfidenceThreshold: threshold,
		NetworkType:         netType,
		SpeciesTaxonomyID:   species,
	}
}

// Fingerprint returns the content-addressed cache key: a sha256 over the
// canonical serialization. Permutation of the identifier set never changes
// the fingerprint because the set is sorted.
func (k NetworkRequestKey) Fingerprint() string {
	ids := make([]string, len(k.IdentifierSet))
	copy(ids, k.IdentifierSet)
	sort.Strings(ids)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%d", strings.Join(ids, "\n"), k.ConfidenceThreshold, k.NetworkType, k.SpeciesTaxonomyID)
	return hex.EncodeToString(h.Sum(nil))
}

// NetworkNode is one protein in a fetched network with its display metadata.
type NetworkNode struct {
	CanonicalID   string `json:"canonical_id"`
	PreferredName string `json:"preferred_name"`
}

// InteractionEdge is one undirected interaction. SourceID/TargetID are kept
// in lexical order so a re-fetched network compares equal to its cached copy.
type InteractionEdge struct {
	SourceID         string         `json:"source_id"`
	TargetID         string         `json:"target_id"`
	CombinedScore    int            `json:"combined_score"`
	EvidenceChannels map[string]int `json:"evidence_channels,omitempty"`
}

// NewInteractionEdge normalizes endpoint order.
func NewInteractionEdge(a, b string, score int, channels map[string]int) InteractionEdge {
	if b < a {
		a, b = b, a
	}
	return InteractionEdge{SourceID: a, TargetID: b, CombinedScore: score, EvidenceChannels: channels}
}

// NetworkResult is one fetched network. Immutable once persisted; a forced
// refresh replaces the whole entry, never patches it.
type NetworkResult struct {
	Key       NetworkRequestKey `json:"key"`
	Nodes     []NetworkNode     `json:"nodes"`
	Edges     []InteractionEdge `json:"edges"`
	FetchedAt time.Time         `json:"fetched_at"`
}
