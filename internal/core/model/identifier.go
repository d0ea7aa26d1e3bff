package model

// OutcomeKind discriminates the three resolution states of one input term.
type OutcomeKind string

const (
	OutcomeResolved   OutcomeKind = "resolved"
	OutcomeAmbiguous  OutcomeKind = "ambiguous"
	OutcomeUnresolved OutcomeKind = "unresolved"
)

// ResolvedIdentifier is one successful match of a free-form input term to a
// canonical STRING identifier. Immutable after creation.
type ResolvedIdentifier struct {
	InputTerm     string  `json:"input_term"`
	CanonicalID   string  `json:"canonical_id"`
	PreferredName string  `json:"preferred_name"`
	TaxonomyID    int     `json:"taxonomy_id"`
	MatchScore    float64 `json:"match_score"`
}

// ResolutionOutcome is the tagged result for exactly one input term.
// Kind decides which of the remaining fields are meaningful:
// resolved -> Match, ambiguous -> Candidates, unresolved -> Reason.
type ResolutionOutcome struct {
	Kind       OutcomeKind          `json:"kind"`
	InputTerm  string               `json:"input_term"`
	Match      *ResolvedIdentifier  `json:"match,omitempty"`
	Candidates []ResolvedIdentifier `json:"candidates,omitempty"`
	Reason     string               `json:"reason,omitempty"`
}

func Resolved(match ResolvedIdentifier) ResolutionOutcome {
	return ResolutionOutcome{
		Kind:      OutcomeResolved,
		InputTerm: match.InputTerm,
		Match:     &match,
	}
}

func Ambiguous(term string, candidates []ResolvedIdentifier) ResolutionOutcome {
	return ResolutionOutcome{
		Kind:       OutcomeAmbiguous,
		InputTerm:  term,
		Candidates: candidates,
	}
}

func Unresolved(term, reason string) ResolutionOutcome {
	return ResolutionOutcome{
		Kind:      OutcomeUnresolved,
		InputTerm: term,
		Reason:    reason,
	}
}
