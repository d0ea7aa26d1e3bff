// Package cache is the content-addressed store for fetched interaction
// networks. Entries are keyed by the request fingerprint and carry no TTL:
// STRING data changes rarely, and an implicit expiry would re-open the
// re-fetch storms this layer exists to prevent. Staleness is caller
// controlled through forced refresh and explicit invalidation.
package cache

import (
	"context"

	"github.com/dvsite/interactome/internal/core/model"
)

// NetworkStore persists NetworkResults keyed by their request fingerprint.
//
// Store must be atomic: it either replaces the whole entry or leaves the old
// one in place; a reader never observes a partially written network.
// Invalidate of an absent entry is not an error.
type NetworkStore interface {
	Lookup(ctx context.Context, key model.NetworkRequestKey) (*model.NetworkResult, bool, error)
	Store(ctx context.Context, result *model.NetworkResult) error
	Invalidate(ctx context.Context, key model.NetworkRequestKey) error
}
