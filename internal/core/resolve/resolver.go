// Package resolve maps free-form gene symbols and accessions to canonical
// STRING identifiers. Input is best-effort: malformed or unknown terms do not
// fail a batch, they come back as explicit unresolved outcomes.
package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/stringdb"
)

// MaxBatchTerms bounds one resolve call. Larger lists get rejected before
// any I/O rather than producing an oversized remote request.
const MaxBatchTerms = 2000

// Mapper is the slice of the STRING client this package needs.
type Mapper interface {
	MapIdentifiers(ctx context.Context, terms []string, species int) ([]stringdb.MappingRow, error)
}

// ValidationError rejects a batch before any I/O happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ResolutionError means the whole batch failed against the remote mapping
// endpoint. Retryable by the caller as a unit; there is no per-term retry.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string { return fmt.Sprintf("identifier resolution failed: %v", e.Err) }
func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver turns raw terms into resolution outcomes via one batched remote
// call per Resolve invocation.
type Resolver struct {
	mapper Mapper
	logger zerolog.Logger
}

func NewResolver(mapper Mapper, logger zerolog.Logger) *Resolver {
	return &Resolver{
		mapper: mapper,
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve returns exactly one outcome per input term, in input order.
// Duplicate inputs yield duplicate outcomes; de-duplication is the caller's
// concern. The remote endpoint is called once for the whole batch.
func (r *Resolver) Resolve(ctx context.Context, terms []string, species int) ([]model.ResolutionOutcome, error) {
	if len(terms) == 0 {
		return nil, &ValidationError{Msg: "no identifiers supplied"}
	}
	if len(terms) > MaxBatchTerms {
		return nil, &ValidationError{Msg: fmt.Sprintf("batch of %d terms exceeds limit of %d", len(terms), MaxBatchTerms)}
	}

	// One remote request carries every distinct normalized term.
	var query []string
	seen := make(map[string]struct{})
	for _, term := range terms {
		norm := normalize(term)
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		query = append(query, strings.TrimSpace(term))
	}

	groups := make(map[string][]stringdb.MappingRow)
	if len(query) > 0 {
		rows, err := r.mapper.MapIdentifiers(ctx, query, species)
		if err != nil {
			return nil, &ResolutionError{Err: err}
		}
		for _, row := range rows {
			key := normalize(row.QueryTerm)
			groups[key] = append(groups[key], row)
		}
	}

	outcomes := make([]model.ResolutionOutcome, 0, len(terms))
	for _, term := range terms {
		outcomes = append(outcomes, r.outcomeFor(term, groups[normalize(term)]))
	}

	r.logger.Debug().Int("terms", len(terms)).Int("queried", len(query)).Msg("resolved identifier batch")
	return outcomes, nil
}

func (r *Resolver) outcomeFor(term string, rows []stringdb.MappingRow) model.ResolutionOutcome {
	if normalize(term) == "" {
		return model.Unresolved(term, "empty term")
	}

	candidates := make([]model.ResolvedIdentifier, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, model.ResolvedIdentifier{
			InputTerm:     term,
			CanonicalID:   row.CanonicalID,
			PreferredName: row.PreferredName,
			TaxonomyID:    row.TaxonomyID,
			MatchScore:    row.MatchScore,
		})
	}

	switch len(candidates) {
	case 0:
		// Also covers terms the remote silently dropped from its response.
		return model.Unresolved(term, "no match")
	case 1:
		return model.Resolved(candidates[0])
	default:
		// Descending match score; preferred-name order breaks ties so the
		// candidate list is deterministic across calls.
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].MatchScore != candidates[j].MatchScore {
				return candidates[i].MatchScore > candidates[j].MatchScore
			}
			return candidates[i].PreferredName < candidates[j].PreferredName
		})
		return model.Ambiguous(term, candidates)
	}
}

func normalize(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
