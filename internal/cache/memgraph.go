package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/driver"
)

// MemgraphStore persists networks in the graph database: one :Network node
// per fingerprint, :Protein nodes linked by :CONTAINS, interactions as
// :INTERACTS relationships carrying the scores. Everything is scoped by
// fingerprint so entries never share subgraphs and a delete cannot bleed
// into another cached network.
type MemgraphStore struct {
	driver driver.GraphDriver
}

var _ NetworkStore = (*MemgraphStore)(nil)

func NewMemgraphStore(d driver.GraphDriver) *MemgraphStore {
	return &MemgraphStore{driver: d}
}

// Lookup reads the whole entry with one query so the read runs in a single
// transaction; a Store or Invalidate committing concurrently can never be
// observed half-applied.
func (s *MemgraphStore) Lookup(ctx context.Context, key model.NetworkRequestKey) (*model.NetworkResult, bool, error) {
	fingerprint := key.Fingerprint()

	res, err := s.driver.ExecuteQuery(ctx, driver.GetNetworkQuery, map[string]interface{}{"fingerprint": fingerprint})
	if err != nil {
		return nil, false, fmt.Errorf("network lookup failed: %w", err)
	}
	if len(res.Records) == 0 {
		return nil, false, nil
	}
	rec := res.Records[0]

	result := &model.NetworkResult{}
	keyStr, err := recordString(rec, "key_json")
	if err != nil {
		return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
	}
	if err := json.Unmarshal([]byte(keyStr), &result.Key); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached key: %w", err)
	}
	fetchedAt, err := recordString(rec, "fetched_at")
	if err != nil {
		return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
	}
	if result.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return nil, false, fmt.Errorf("failed to decode fetched_at: %w", err)
	}

	rawProteins, _ := rec.Get("proteins")
	proteins, ok := rawProteins.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("cached network %s: proteins are not a list", fingerprint)
	}
	for _, raw := range proteins {
		props, ok := raw.(map[string]interface{})
		if !ok {
			return nil, false, fmt.Errorf("cached network %s: malformed protein entry", fingerprint)
		}
		id, err := propString(props, "canonical_id")
		if err != nil {
			return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
		}
		name, err := propString(props, "preferred_name")
		if err != nil {
			return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
		}
		result.Nodes = append(result.Nodes, model.NetworkNode{CanonicalID: id, PreferredName: name})
	}

	rawInteractions, _ := rec.Get("interactions")
	interactions, ok := rawInteractions.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("cached network %s: interactions are not a list", fingerprint)
	}
	for _, raw := range interactions {
		props, ok := raw.(map[string]interface{})
		if !ok {
			return nil, false, fmt.Errorf("cached network %s: malformed interaction entry", fingerprint)
		}
		src, err := propString(props, "source_id")
		if err != nil {
			return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
		}
		tgt, err := propString(props, "target_id")
		if err != nil {
			return nil, false, fmt.Errorf("cached network %s: %w", fingerprint, err)
		}
		score, isInt := props["combined_score"].(int64)
		if !isInt {
			return nil, false, fmt.Errorf("cached network %s: combined_score missing or not an integer", fingerprint)
		}

		edge := model.InteractionEdge{SourceID: src, TargetID: tgt, CombinedScore: int(score)}
		if channels, ok := props["channels_json"].(string); ok && channels != "" {
			if err := json.Unmarshal([]byte(channels), &edge.EvidenceChannels); err != nil {
				return nil, false, fmt.Errorf("failed to decode evidence channels: %w", err)
			}
		}
		result.Edges = append(result.Edges, edge)
	}

	return result, true, nil
}

func recordString(rec *neo4j.Record, key string) (string, error) {
	raw, ok := rec.Get(key)
	str, isStr := raw.(string)
	if !ok || !isStr {
		return "", fmt.Errorf("field %s missing or not a string", key)
	}
	return str, nil
}

func propString(props map[string]interface{}, key string) (string, error) {
	str, ok := props[key].(string)
	if !ok {
		return "", fmt.Errorf("property %s missing or not a string", key)
	}
	return str, nil
}

// Store replaces any prior entry for the fingerprint inside one write
// transaction, so readers see either the old network or the new one.
func (s *MemgraphStore) Store(ctx context.Context, result *model.NetworkResult) error {
	fingerprint := result.Key.Fingerprint()

	keyJSON, err := json.Marshal(result.Key)
	if err != nil {
		return fmt.Errorf("failed to encode key: %w", err)
	}

	return s.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) error {
		if _, err := tx.Run(ctx, driver.DeleteNetworkQuery, map[string]interface{}{"fingerprint": fingerprint}); err != nil {
			return fmt.Errorf("failed to delete prior entry: %w", err)
		}

		if _, err := tx.Run(ctx, driver.SaveNetworkQuery, map[string]interface{}{
			"fingerprint": fingerprint,
			"key_json":    string(keyJSON),
			"fetched_at":  result.FetchedAt.UTC().Format(time.RFC3339Nano),
		}); err != nil {
			return fmt.Errorf("failed to save network: %w", err)
		}

		for _, node := range result.Nodes {
			if _, err := tx.Run(ctx, driver.SaveProteinQuery, map[string]interface{}{
				"fingerprint":    fingerprint,
				"canonical_id":   node.CanonicalID,
				"preferred_name": node.PreferredName,
			}); err != nil {
				return fmt.Errorf("failed to save protein %s: %w", node.CanonicalID, err)
			}
		}

		for ord, edge := range result.Edges {
			channelsJSON := ""
			if edge.EvidenceChannels != nil {
				raw, err := json.Marshal(edge.EvidenceChannels)
				if err != nil {
					return fmt.Errorf("failed to encode evidence channels: %w", err)
				}
				channelsJSON = string(raw)
			}
			if _, err := tx.Run(ctx, driver.SaveInteractionQuery, map[string]interface{}{
				"fingerprint":    fingerprint,
				"source_id":      edge.SourceID,
				"target_id":      edge.TargetID,
				"combined_score": edge.CombinedScore,
				"channels_json":  channelsJSON,
				"ord":            ord,
			}); err != nil {
				return fmt.Errorf("failed to save interaction %s-%s: %w", edge.SourceID, edge.TargetID, err)
			}
		}

		return nil
	})
}

func (s *MemgraphStore) Invalidate(ctx context.Context, key model.NetworkRequestKey) error {
	return s.driver.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) error {
		_, err := tx.Run(ctx, driver.DeleteNetworkQuery, map[string]interface{}{"fingerprint": key.Fingerprint()})
		return err
	})
}
