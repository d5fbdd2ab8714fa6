package validate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"weedlist/internal"
	"weedlist/internal/diag"
	"weedlist/internal/util"
)

// Lookup is the nomenclature authority as seen by the validator: a
// genus+species query returning zero or more records.
type Lookup interface {
	Search(ctx context.Context, genus, species string) ([]internal.Record, error)
}

type Validator struct {
	authority      Lookup
	sink           diag.Sink
	scoreThreshold float64
}

func New(authority Lookup, sink diag.Sink, scoreThreshold float64) *Validator {
	if scoreThreshold <= 0 {
		scoreThreshold = 0.8
	}
	return &Validator{authority: authority, sink: sink, scoreThreshold: scoreThreshold}
}

// BuildCandidateSet deduplicates raw names by exact case-sensitive equality
// and returns them in lexical ascending order. Adapters are trusted to have
// done their own whitespace/case cleanup already.
func BuildCandidateSet(raw []internal.RawName) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r.Name)
	}
	sort.Strings(out)
	return out
}

// Run validates every candidate in order, accumulating accepted names as a
// set union, and returns the sorted accepted list plus one report row per
// candidate. A failure for one candidate never aborts the batch.
func (v *Validator) Run(ctx context.Context, candidates []string) ([]string, []internal.ReportRow) {
	accepted := map[string]struct{}{}
	rows := make([]internal.ReportRow, 0, len(candidates))
	total := len(candidates)

	for i, candidate := range candidates {
		outcome := v.Validate(ctx, candidate, i+1, total)
		if outcome.Status != internal.StatusUnmatched {
			accepted[outcome.AcceptedName] = struct{}{}
		}
		rows = append(rows, internal.ReportRow{
			Index:        i + 1,
			Candidate:    candidate,
			Status:       string(outcome.Status),
			Reason:       string(outcome.Reason),
			AcceptedName: outcome.AcceptedName,
			Confidence:   outcome.Confidence,
		})
	}

	names := make([]string, 0, len(accepted))
	for name := range accepted {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows
}

// Validate classifies a single candidate against the authority. Only records
// with rank "Species" are considered; the first qualifying record wins.
func (v *Validator) Validate(ctx context.Context, candidate string, index, total int) internal.Outcome {
	parts := strings.Fields(candidate)
	if len(parts) < 2 {
		v.record(diag.KindMalformed, candidate, "fewer than 2 tokens", index, total)
		return internal.Outcome{Status: internal.StatusUnmatched, Reason: internal.ReasonMalformed}
	}

	genus, species := parts[0], parts[1]
	records, err := v.authority.Search(ctx, genus, species)
	if err != nil {
		v.record(diag.KindQueryError, candidate, err.Error(), index, total)
		return internal.Outcome{Status: internal.StatusUnmatched, Reason: internal.ReasonQueryError}
	}

	for _, rec := range records {
		if rec.Rank != "Species" {
			continue
		}

		if rec.Accepted != nil && *rec.Accepted && rec.Name != "" {
			v.record(diag.KindAccepted, candidate, fmt.Sprintf("accepted as %q", rec.Name), index, total)
			return internal.Outcome{
				Status:       internal.StatusAccepted,
				AcceptedName: rec.Name,
				Confidence:   1.0,
				Reason:       internal.ReasonDirect,
			}
		}

		if rec.Accepted != nil && !*rec.Accepted && rec.SynonymOf != nil && rec.SynonymOf.Name != "" {
			acceptedName := rec.SynonymOf.Name
			score := util.SimilarityRatio(candidate, acceptedName)
			if score < v.scoreThreshold {
				// Advisory only: the authority-confirmed mapping is
				// trusted over the lexical score.
				v.record(diag.KindLowConfidence, candidate,
					fmt.Sprintf("synonym mismatch: %q -> %q (score %.2f)", candidate, acceptedName, score), index, total)
			} else {
				v.record(diag.KindSynonym, candidate, fmt.Sprintf("synonym of %q", acceptedName), index, total)
			}
			return internal.Outcome{
				Status:       internal.StatusSynonym,
				AcceptedName: acceptedName,
				Confidence:   score,
				Reason:       internal.ReasonSynonymOf,
			}
		}
	}

	v.record(diag.KindUnmatched, candidate, "no accepted species match", index, total)
	return internal.Outcome{Status: internal.StatusUnmatched, Reason: internal.ReasonNoMatch}
}

func (v *Validator) record(kind diag.Kind, candidate, detail string, index, total int) {
	if v.sink == nil {
		return
	}
	v.sink.Record(diag.Event{Kind: kind, Candidate: candidate, Detail: detail, Index: index, Total: total})
}
