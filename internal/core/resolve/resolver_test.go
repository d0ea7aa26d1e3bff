package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvsite/interactome/internal/core/model"
	"github.com/dvsite/interactome/internal/stringdb"
)

type mockMapper struct {
	Rows    []stringdb.MappingRow
	Err     error
	Calls   int
	Queried []string
}

func (m *mockMapper) MapIdentifiers(_ context.Context, terms []string, _ int) ([]stringdb.MappingRow, error) {
	m.Calls++
	m.Queried = terms
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rows, nil
}

func TestResolvePreservesOrderAndLength(t *testing.T) {
	mapper := &mockMapper{Rows: []stringdb.MappingRow{
		{QueryTerm: "Eif5a", CanonicalID: "10090.ENSMUSP00000049385", PreferredName: "Eif5a", TaxonomyID: 10090, MatchScore: 0.99},
	}}
	r := NewResolver(mapper, zerolog.Nop())

	outcomes, err := r.Resolve(context.Background(), []string{"Eif5a", "NotAGene123"}, 10090)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, model.OutcomeResolved, outcomes[0].Kind)
	assert.Equal(t, "10090.ENSMUSP00000049385", outcomes[0].Match.CanonicalID)
	assert.Equal(t, model.OutcomeUnresolved, outcomes[1].Kind)
	assert.Equal(t, "no match", outcomes[1].Reason)
	assert.Equal(t, 1, mapper.Calls, "one batched call for the whole list")
}

func TestResolveDuplicateTermsGetIdenticalOutcomes(t *testing.T) {
	mapper := &mockMapper{Rows: []stringdb.MappingRow{
		{QueryTerm: "Actb", CanonicalID: "10090.ENSMUSP00000001963", PreferredName: "Actb", TaxonomyID: 10090, MatchScore: 0.97},
	}}
	r := NewResolver(mapper, zerolog.Nop())

	outcomes, err := r.Resolve(context.Background(), []string{"Actb", "actb", " ACTB "}, 10090)
	require.NoError(t, err)

	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"Actb"}, mapper.Queried, "duplicates collapse into one query term")
	for _, o := range outcomes {
		require.Equal(t, model.OutcomeResolved, o.Kind)
		assert.Equal(t, "10090.ENSMUSP00000001963", o.Match.CanonicalID)
	}
	assert.Equal(t, "actb", outcomes[1].InputTerm, "outcomes keep the caller's spelling")
}

func TestResolveAmbiguousCandidateOrdering(t *testing.T) {
	mapper := &mockMapper{Rows: []stringdb.MappingRow{
		{QueryTerm: "P53", CanonicalID: "9606.B", PreferredName: "TP53BP1", MatchScore: 0.5},
		{QueryTerm: "P53", CanonicalID: "9606.A", PreferredName: "TP53", MatchScore: 0.9},
		{QueryTerm: "P53", CanonicalID: "9606.C", PreferredName: "TP53AIP1", MatchScore: 0.5},
	}}
	r := NewResolver(mapper, zerolog.Nop())

	outcomes, err := r.Resolve(context.Background(), []string{"P53"}, 9606)
	require.NoError(t, err)

	require.Equal(t, model.OutcomeAmbiguous, outcomes[0].Kind)
	require.Len(t, outcomes[0].Candidates, 3)
	assert.Equal(t, "TP53", outcomes[0].Candidates[0].PreferredName, "highest score first")
	assert.Equal(t, "TP53AIP1", outcomes[0].Candidates[1].PreferredName, "score ties break on preferred name")
	assert.Equal(t, "TP53BP1", outcomes[0].Candidates[2].PreferredName)
}

func TestResolveBlankTermIsUnresolvedWithoutRemoteCall(t *testing.T) {
	mapper := &mockMapper{}
	r := NewResolver(mapper, zerolog.Nop())

	outcomes, err := r.Resolve(context.Background(), []string{"   ", ""}, 10090)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	assert.Equal(t, model.OutcomeUnresolved, outcomes[0].Kind)
	assert.Equal(t, "empty term", outcomes[0].Reason)
	assert.Zero(t, mapper.Calls, "nothing resolvable, nothing sent")
}

func TestResolveEmptyBatchRejectedBeforeIO(t *testing.T) {
	mapper := &mockMapper{}
	r := NewResolver(mapper, zerolog.Nop())

	_, err := r.Resolve(context.Background(), nil, 10090)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, mapper.Calls)
}

func TestResolveRemoteFailureFailsWholeBatch(t *testing.T) {
	mapper := &mockMapper{Err: errors.New("connection refused")}
	r := NewResolver(mapper, zerolog.Nop())

	_, err := r.Resolve(context.Background(), []string{"Actb", "Gapdh"}, 10090)

	var rerr *ResolutionError
	require.ErrorAs(t, err, &rerr)
	assert.ErrorContains(t, err, "connection refused")
}
