package validate

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"weedlist/internal"
	"weedlist/internal/diag"
)

func bp(v bool) *bool { return &v }

type stubAuthority struct {
	records map[string][]internal.Record
	errs    map[string]error
	calls   int
}

func (s *stubAuthority) Search(_ context.Context, genus, species string) ([]internal.Record, error) {
	s.calls++
	key := genus + " " + species
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	return s.records[key], nil
}

func lantanaAuthority() *stubAuthority {
	return &stubAuthority{
		records: map[string][]internal.Record{
			"Lantana camara": {
				{Rank: "Species", Accepted: bp(true), Name: "Lantana camara"},
			},
			"Lantana aculeata": {
				{Rank: "Species", Accepted: bp(false), Name: "Lantana aculeata", SynonymOf: &internal.Record{Name: "Lantana camara"}},
			},
			"Unmatched sp": {},
		},
	}
}

func TestEndToEndScenario(t *testing.T) {
	sink := &diag.CaptureSink{}
	v := New(lantanaAuthority(), sink, 0.8)

	candidates := []string{"Lantana aculeata", "Lantana camara", "Unmatched sp"}
	accepted, rows := v.Run(context.Background(), candidates)

	if !reflect.DeepEqual(accepted, []string{"Lantana camara"}) {
		t.Fatalf("accepted = %v", accepted)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if got := sink.Count(diag.KindSynonym) + sink.Count(diag.KindLowConfidence); got != 1 {
		t.Fatalf("synonym diagnostics = %d", got)
	}
	if got := sink.Count(diag.KindUnmatched); got != 1 {
		t.Fatalf("unmatched diagnostics = %d", got)
	}
}

func TestDedupConvergence(t *testing.T) {
	// A direct accept and a synonym resolution land on the same canonical
	// name; the accepted set holds it once.
	v := New(lantanaAuthority(), &diag.CaptureSink{}, 0.8)
	accepted, _ := v.Run(context.Background(), []string{"Lantana aculeata", "Lantana camara"})
	if len(accepted) != 1 || accepted[0] != "Lantana camara" {
		t.Fatalf("accepted = %v", accepted)
	}
}

func TestOrderIndependence(t *testing.T) {
	base := []string{"Lantana aculeata", "Lantana camara", "Unmatched sp"}
	var want []string

	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), base...)
		rand.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		v := New(lantanaAuthority(), nil, 0.8)
		accepted, _ := v.Run(context.Background(), shuffled)
		if want == nil {
			want = accepted
			continue
		}
		if !reflect.DeepEqual(accepted, want) {
			t.Fatalf("permutation changed result: %v vs %v", accepted, want)
		}
	}
}

func TestIdempotence(t *testing.T) {
	candidates := []string{"Lantana aculeata", "Lantana camara", "Unmatched sp"}
	v := New(lantanaAuthority(), nil, 0.8)

	first, firstRows := v.Run(context.Background(), candidates)
	second, secondRows := v.Run(context.Background(), candidates)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("accepted sets differ: %v vs %v", first, second)
	}
	if !reflect.DeepEqual(firstRows, secondRows) {
		t.Fatal("report rows differ between runs")
	}
}

func TestMalformedCandidate(t *testing.T) {
	stub := lantanaAuthority()
	sink := &diag.CaptureSink{}
	v := New(stub, sink, 0.8)

	accepted, rows := v.Run(context.Background(), []string{"SingleToken"})
	if len(accepted) != 0 {
		t.Fatalf("accepted = %v", accepted)
	}
	if rows[0].Reason != string(internal.ReasonMalformed) {
		t.Fatalf("reason = %s", rows[0].Reason)
	}
	if stub.calls != 0 {
		t.Fatalf("authority queried %d times for malformed input", stub.calls)
	}
	if sink.Count(diag.KindMalformed) != 1 {
		t.Fatal("missing malformed diagnostic")
	}
}

func TestQueryErrorTreatedAsUnmatched(t *testing.T) {
	stub := lantanaAuthority()
	stub.errs = map[string]error{"Lantana camara": errors.New("boom")}
	sink := &diag.CaptureSink{}
	v := New(stub, sink, 0.8)

	accepted, rows := v.Run(context.Background(), []string{"Lantana aculeata", "Lantana camara"})
	// The failing candidate is dropped; the batch still completes and the
	// synonym still resolves.
	if !reflect.DeepEqual(accepted, []string{"Lantana camara"}) {
		t.Fatalf("accepted = %v", accepted)
	}
	if rows[1].Reason != string(internal.ReasonQueryError) {
		t.Fatalf("reason = %s", rows[1].Reason)
	}
	if sink.Count(diag.KindQueryError) != 1 {
		t.Fatal("missing query error diagnostic")
	}
}

func TestNonSpeciesRankIgnored(t *testing.T) {
	stub := &stubAuthority{records: map[string][]internal.Record{
		"Lantana camara": {
			{Rank: "Genus", Accepted: bp(true), Name: "Lantana"},
			{Rank: "Species", Accepted: bp(true), Name: "Lantana camara"},
		},
	}}
	v := New(stub, nil, 0.8)
	out := v.Validate(context.Background(), "Lantana camara", 1, 1)
	if out.AcceptedName != "Lantana camara" {
		t.Fatalf("accepted name = %q", out.AcceptedName)
	}
}

func TestFirstQualifyingRecordWins(t *testing.T) {
	stub := &stubAuthority{records: map[string][]internal.Record{
		"Lantana camara": {
			{Rank: "Species", Accepted: bp(true), Name: "Lantana camara"},
			{Rank: "Species", Accepted: bp(true), Name: "Lantana other"},
		},
	}}
	v := New(stub, nil, 0.8)
	out := v.Validate(context.Background(), "Lantana camara", 1, 1)
	if out.AcceptedName != "Lantana camara" {
		t.Fatalf("accepted name = %q", out.AcceptedName)
	}
}

func TestLowConfidenceSynonymStillApplied(t *testing.T) {
	stub := &stubAuthority{records: map[string][]internal.Record{
		"Xyz abc": {
			{Rank: "Species", Accepted: bp(false), Name: "Xyz abc", SynonymOf: &internal.Record{Name: "Completely different name"}},
		},
	}}
	sink := &diag.CaptureSink{}
	v := New(stub, sink, 0.8)

	out := v.Validate(context.Background(), "Xyz abc", 1, 1)
	if out.Status != internal.StatusSynonym || out.AcceptedName != "Completely different name" {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Confidence >= 0.8 {
		t.Fatalf("confidence = %v", out.Confidence)
	}
	if sink.Count(diag.KindLowConfidence) != 1 {
		t.Fatal("missing low-confidence diagnostic")
	}
}

func TestMissingAcceptedFieldIsUnmatched(t *testing.T) {
	stub := &stubAuthority{records: map[string][]internal.Record{
		"Lantana camara": {
			{Rank: "Species", Name: "Lantana camara"},
		},
	}}
	v := New(stub, nil, 0.8)
	out := v.Validate(context.Background(), "Lantana camara", 1, 1)
	if out.Status != internal.StatusUnmatched {
		t.Fatalf("status = %s", out.Status)
	}
}

func TestBuildCandidateSet(t *testing.T) {
	raw := []internal.RawName{
		{Source: internal.SourceNSW, Name: "Lantana camara"},
		{Source: internal.SourceWONS, Name: "Lantana camara"},
		{Source: internal.SourceNSW, Name: "Acacia nilotica"},
		{Source: internal.SourceNSW, Name: "lantana camara"},
	}
	got := BuildCandidateSet(raw)
	// Dedup is case-sensitive, ordering lexical ascending.
	want := []string{"Acacia nilotica", "Lantana camara", "lantana camara"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestAcceptedSetNeverLargerThanCandidateSet(t *testing.T) {
	candidates := []string{"Lantana aculeata", "Lantana camara", "Unmatched sp"}
	v := New(lantanaAuthority(), nil, 0.8)
	accepted, _ := v.Run(context.Background(), candidates)
	if len(accepted) > len(candidates) {
		t.Fatalf("|accepted|=%d > |candidates|=%d", len(accepted), len(candidates))
	}
}
