// Package core wires the identifier resolver, the cache-first network
// fetcher and the graph assembler into the API the HTTP layer consumes.
package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvsite/interactome/internal/cache"
	"github.com/dvsite/interactome/internal/core/assemble"
	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/core/netfetch"
	"github.com/dvsite/interactome/internal/core/resolve"
)

// RemoteClient is everything the core needs from the STRING client.
type RemoteClient interface {
	resolve.Mapper
	netfetch.NetworkClient
}

// Interactome is the caller-facing entry point of the acquisition layer.
type Interactome struct {
	Resolver *resolve.Resolver
	Fetcher  *netfetch.Fetcher
}

func NewInteractome(client RemoteClient, store cache.NetworkStore, logger zerolog.Logger) *Interactome {
	resolver := resolve.NewResolver(client, logger)
	return &Interactome{
		Resolver: resolver,
		Fetcher:  netfetch.NewFetcher(resolver, client, store, logger),
	}
}

// NetworkView is what the HTTP layer returns for a network request: the
// assembled graph plus the inputs that could not be part of it.
type NetworkView struct {
	Graph     *model.Graph              `json:"graph"`
	Skipped   []model.ResolutionOutcome `json:"skipped,omitempty"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// ResolveIdentifiers maps raw terms to resolution outcomes, one per input,
// input order preserved.
func (i *Interactome) ResolveIdentifiers(ctx context.Context, terms []string, species int) ([]model.ResolutionOutcome, error) {
	return i.Resolver.Resolve(ctx, terms, species)
}

// GetNetwork runs the full flow: resolve, cache-first fetch, assemble.
func (i *Interactome) GetNetwork(ctx context.Context, terms []string, opts netfetch.Options) (*NetworkView, error) {
	result, skipped, err := i.Fetcher.GetNetwork(ctx, terms, opts)
	if err != nil {
		return nil, err
	}
	return &NetworkView{
		Graph:     assemble.ToGraph(result),
		Skipped:   skipped,
		FetchedAt: result.FetchedAt,
	}, nil
}

// InvalidateNetwork drops the cached entry the terms resolve to.
func (i *Interactome) InvalidateNetwork(ctx context.Context, terms []string, opts netfetch.Options) error {
	return i.Fetcher.Invalidate(ctx, terms, opts)
}
