// Package netfetch orchestrates cache-first acquisition of interaction
// networks: resolve the input terms, consult the cache, and only on a miss
// (or forced refresh) call the remote network endpoint — at most once per
// fingerprint at a time, however many callers are waiting.
package netfetch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvsite/interactome/internal/cache"
	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/metrics"
)

// Options controls one GetNetwork call.
type Options struct {
	ConfidenceThreshold int
	NetworkType         model.NetworkType
	SpeciesTaxonomyID   int
	ForceRefresh        bool
}

// Resolver is the slice of the identifier resolver the fetcher needs.
type Resolver interface {
	Resolve(ctx context.Context, terms []string, species int) ([]model.ResolutionOutcome, error)
}

// NetworkClient is the slice of the STRING client the fetcher needs.
type NetworkClient interface {
	FetchInteractions(ctx context.Context, ids []string, threshold int, netType model.NetworkType, species int) ([]model.InteractionEdge, error)
}

// flight is one in-progress remote fetch. Waiters share its outcome; its
// context is cancelled only when the last waiter gives up.
type flight struct {
	done    chan struct{}
	result  *model.NetworkResult
	err     error
	waiters int
	cancel  context.CancelFunc
}

// Fetcher implements the cache-first network acquisition flow.
type Fetcher struct {
	resolver Resolver
	client   NetworkClient
	store    cache.NetworkStore
	logger   zerolog.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

func NewFetcher(resolver Resolver, client NetworkClient, store cache.NetworkStore, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		resolver: resolver,
		client:   client,
		store:    store,
		logger:   logger.With().Str("component", "netfetch").Logger(),
		flights:  make(map[string]*flight),
	}
}

// GetNetwork resolves terms, then returns the cached network or fetches a
// fresh one. The second return value reports the ambiguous/unresolved inputs
// that were excluded from the network, so the UI can warn about them.
func (f *Fetcher) GetNetwork(ctx context.Context, terms []string, opts Options) (*model.NetworkResult, []model.ResolutionOutcome, error) {
	if opts.ConfidenceThreshold < 0 || opts.ConfidenceThreshold > 1000 {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("confidence threshold %d outside 0-1000", opts.ConfidenceThreshold)}
	}
	if opts.NetworkType == "" {
		opts.NetworkType = model.NetworkFull
	}

	outcomes, err := f.resolver.Resolve(ctx, terms, opts.SpeciesTaxonomyID)
	if err != nil {
		return nil, nil, err
	}

	var skipped []model.ResolutionOutcome
	names := make(map[string]string)
	var ids []string
	for _, outcome := range outcomes {
		if outcome.Kind != model.OutcomeResolved {
			skipped = append(skipped, outcome)
			continue
		}
		if _, ok := names[outcome.Match.CanonicalID]; !ok {
			ids = append(ids, outcome.Match.CanonicalID)
		}
		names[outcome.Match.CanonicalID] = outcome.Match.PreferredName
	}
	if len(ids) == 0 {
		return nil, skipped, ErrNoResolvableIdentifiers
	}

	key := model.NewNetworkRequestKey(ids, opts.ConfidenceThreshold, opts.NetworkType, opts.SpeciesTaxonomyID)

	if !opts.ForceRefresh {
		cached, ok, err := f.store.Lookup(ctx, key)
		if err != nil {
			// A broken cache read degrades to a fetch; availability wins.
			f.logger.Warn().Err(err).Str("fingerprint", key.Fingerprint()).Msg("cache lookup failed")
		} else if ok {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			return cached, skipped, nil
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	result, err := f.fetchShared(ctx, key, names)
	if err != nil {
		return nil, skipped, err
	}
	return result, skipped, nil
}

// Invalidate drops the cache entry for the request the given terms resolve
// to. Absence is not an error.
func (f *Fetcher) Invalidate(ctx context.Context, terms []string, opts Options) error {
	outcomes, err := f.resolver.Resolve(ctx, terms, opts.SpeciesTaxonomyID)
	if err != nil {
		return err
	}
	var ids []string
	for _, outcome := range outcomes {
		if outcome.Kind == model.OutcomeResolved {
			ids = append(ids, outcome.Match.CanonicalID)
		}
	}
	if len(ids) == 0 {
		return ErrNoResolvableIdentifiers
	}
	key := model.NewNetworkRequestKey(ids, opts.ConfidenceThreshold, opts.NetworkType, opts.SpeciesTaxonomyID)
	return f.store.Invalidate(ctx, key)
}

// fetchShared joins the in-flight fetch for the fingerprint, creating one if
// none exists. Only the flight's own goroutine talks to the remote service.
func (f *Fetcher) fetchShared(ctx context.Context, key model.NetworkRequestKey, names map[string]string) (*model.NetworkResult, error) {
	fingerprint := key.Fingerprint()

	f.mu.Lock()
	fl, ok := f.flights[fingerprint]
	if !ok {
		// The flight gets a context detached from any single caller; waiter
		// refcounting decides when it dies.
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		fl = &flight{done: make(chan struct{}), cancel: cancel}
		f.flights[fingerprint] = fl
		go f.run(fctx, fl, key, names, fingerprint)
	}
	fl.waiters++
	f.mu.Unlock()

	select {
	case <-fl.done:
		f.mu.Lock()
		fl.waiters--
		f.mu.Unlock()
		return fl.result, fl.err
	case <-ctx.Done():
		f.mu.Lock()
		fl.waiters--
		last := fl.waiters == 0
		if last && f.flights[fingerprint] == fl {
			// The flight is about to be cancelled; newcomers must start a
			// fresh one instead of inheriting a dead context.
			delete(f.flights, fingerprint)
		}
		f.mu.Unlock()
		if last {
			// Dedup groups share fate: the remote call survives until the
			// last waiter walks away.
			fl.cancel()
		}
		return nil, ctx.Err()
	}
}

func (f *Fetcher) run(ctx context.Context, fl *flight, key model.NetworkRequestKey, names map[string]string, fingerprint string) {
	defer fl.cancel()

	result, err := f.fetch(ctx, key, names)

	f.mu.Lock()
	// A cancelled flight was already unregistered; a newer flight for the
	// same fingerprint may own the slot by now.
	if f.flights[fingerprint] == fl {
		delete(f.flights, fingerprint)
	}
	f.mu.Unlock()

	fl.result, fl.err = result, err
	close(fl.done)
}

func (f *Fetcher) fetch(ctx context.Context, key model.NetworkRequestKey, names map[string]string) (*model.NetworkResult, error) {
	edges, err := f.client.FetchInteractions(ctx, key.IdentifierSet, key.ConfidenceThreshold, key.NetworkType, key.SpeciesTaxonomyID)
	if err != nil {
		return nil, &NetworkFetchError{Err: err}
	}

	// The remote may report a pair twice; endpoint order is already
	// normalized, so first occurrence wins.
	seen := make(map[string]struct{}, len(edges))
	deduped := edges[:0]
	for _, edge := range edges {
		pair := edge.SourceID + "\x00" + edge.TargetID
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		deduped = append(deduped, edge)
	}

	// Node set: every edge endpoint plus every resolved identifier, so a
	// gene with zero interactions still shows up as an isolated node.
	nodeNames := make(map[string]string, len(names))
	for id, name := range names {
		nodeNames[id] = name
	}
	for _, edge := range deduped {
		for _, id := range []string{edge.SourceID, edge.TargetID} {
			if _, ok := nodeNames[id]; !ok {
				nodeNames[id] = id
			}
		}
	}
	nodes := make([]model.NetworkNode, 0, len(nodeNames))
	for id, name := range nodeNames {
		nodes = append(nodes, model.NetworkNode{CanonicalID: id, PreferredName: name})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].CanonicalID < nodes[j].CanonicalID })

	result := &model.NetworkResult{
		Key:       key,
		Nodes:     nodes,
		Edges:     deduped,
		FetchedAt: time.Now().UTC(),
	}

	if err := f.store.Store(ctx, result); err != nil {
		// The result is already computed; losing the cache write costs a
		// future re-fetch, not this response.
		metrics.CacheWriteFailures.Inc()
		f.logger.Error().Err(err).Str("fingerprint", key.Fingerprint()).Msg("failed to cache network")
	}

	f.logger.Info().
		Str("fingerprint", key.Fingerprint()).
		Int("nodes", len(result.Nodes)).
		Int("edges", len(result.Edges)).
		Msg("fetched network")
	return result, nil
}
