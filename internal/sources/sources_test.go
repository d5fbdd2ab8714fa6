package sources

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"weedlist/internal"
	"weedlist/internal/diag"
)

func TestParseQLDCards(t *testing.T) {
	html := `<html><body>
	<div class="bq-qgds-card"><h3>Lantana</h3><p class="scientific">Lantana camara</p></div>
	<div class="bq-qgds-card"><p class="scientific">Opuntia stricta</p></div>
	<div class="bq-qgds-card"><p class="scientific">not a binomial</p></div>
	<div class="bq-qgds-card"><p>No scientific paragraph</p></div>
	</body></html>`

	got, err := ParseQLDCards(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lantana camara", "Opuntia stricta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseNSWList(t *testing.T) {
	html := `<html><body><div id="contentbuffer">
	<span><i>Lantana</i> <i>camara</i> (lantana)</span>
	<span><i>Salvinia</i> <i>molesta</i></span>
	<span><i>OnlyGenus</i></span>
	<span>no italics at all</span>
	</div></body></html>`

	got, err := ParseNSWList(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lantana camara", "Salvinia molesta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseTable(t *testing.T) {
	html := `<html><body><table>
	<tr><th>Common name</th><th>Scientific name</th><th>Status</th></tr>
	<tr><td>Lantana</td><td>Lantana camara</td><td>declared</td></tr>
	<tr><td>Gorse</td><td>Ulex europaeus L.</td><td>declared</td></tr>
	<tr><td>junk</td><td>123 not a name</td><td>x</td></tr>
	</table></body></html>`

	got, err := ParseTable(strings.NewReader(html), "scientific")
	if err != nil {
		t.Fatal(err)
	}
	// Cells keep their full text; only the binomial prefix is checked.
	want := []string{"Lantana camara", "Ulex europaeus L."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseTableNoMatchingHeader(t *testing.T) {
	html := `<table><tr><th>Name</th></tr><tr><td>Lantana camara</td></tr></table>`
	got, err := ParseTable(strings.NewReader(html), "scientific")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestParseTableDegeneratePages(t *testing.T) {
	// An upstream page without the expected table must yield an empty
	// result, not abort the batch.
	cases := []string{
		`<html><body><p>no table at all</p></body></html>`,
		`<table></table>`,
		`<table><tr><th>Scientific name</th></tr></table>`,
	}
	for _, html := range cases {
		got, err := ParseTable(strings.NewReader(html), "scientific")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("got %v for %q", got, html)
		}
	}
}

func TestParseWONSTable(t *testing.T) {
	html := `<html><body><table class="wikitable">
	<tr><th>Common name</th><th>Scientific name</th></tr>
	<tr><td>Alligator weed</td><td>Alternanthera philoxeroides</td></tr>
	<tr><td>short row</td></tr>
	</table></body></html>`

	got, err := ParseWONSTable(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Alternanthera philoxeroides"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseWONSTableDegeneratePages(t *testing.T) {
	cases := []string{
		`<html><body><p>no table</p></body></html>`,
		`<table class="wikitable"></table>`,
		`<table class="wikitable"><tr><th>Common name</th><th>Scientific name</th></tr></table>`,
	}
	for _, html := range cases {
		got, err := ParseWONSTable(strings.NewReader(html))
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Fatalf("got %v for %q", got, html)
		}
	}
}

func TestParseWeedScan(t *testing.T) {
	html := `<html><body><table>
	<tr><td><a title="*Lantana camara* lantana">Lantana</a></td></tr>
	<tr><td><a title="no asterisks here">x</a></td></tr>
	<tr><td>no link</td></tr>
	</table></body></html>`

	got, err := ParseWeedScan(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lantana camara"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseWACSV(t *testing.T) {
	csv := "\uFEFFDeclared organisms export,,\n" +
		"Common name,Scientific name,Category\n" +
		"Lantana,Lantana camara,s22\n" +
		"Blank,,s22\n" +
		"Gorse,Ulex europaeus,s22\n"

	got, err := ParseWACSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lantana camara", "Ulex europaeus"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseBCCCSV(t *testing.T) {
	csv := "commonName,botanicalName,class\n" +
		"Lantana,Lantana camara,R\n" +
		"Broadleaf pepper,Schinus terebinthifolius,R\n" +
		"Junk,Not A Name 42,R\n"

	got, err := ParseBCCCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Lantana camara", "Schinus terebinthifolius"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestParseNTLines(t *testing.T) {
	text := "DECLARED WEEDS IN THE NT 2025\n" +
		"Acacia nilotica prickly acacia Class A\n" +
		"lowercase line ignored\n" +
		"X 1\n" +
		"Ziziphus mauritiana chinee apple\n"

	got := ParseNTLines(text)
	want := []string{"Acacia nilotica", "Ziziphus mauritiana"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

func TestExtractLucidNames(t *testing.T) {
	labels := []string{
		"Lantana camara (lantana)",
		"Parkinsonia aculeata",
		"Not-a-species label",
		"",
	}
	got := ExtractLucidNames(labels)
	want := []string{"Lantana camara", "Parkinsonia aculeata"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

type fakeSource struct {
	id    internal.SourceID
	names []string
	err   error
}

func (f fakeSource) ID() internal.SourceID { return f.id }

func (f fakeSource) Names(_ context.Context) ([]string, error) { return f.names, f.err }

func TestCollectIsolatesFailures(t *testing.T) {
	sink := &diag.CaptureSink{}
	srcs := []Source{
		fakeSource{id: "good_one", names: []string{"Lantana camara"}},
		fakeSource{id: "broken", err: errors.New("connection refused")},
		fakeSource{id: "good_two", names: []string{"Ulex europaeus", "Lantana camara"}},
	}

	raw := Collect(context.Background(), srcs, sink)
	if len(raw) != 3 {
		t.Fatalf("raw = %v", raw)
	}
	if sink.Count(diag.KindSourceError) != 1 {
		t.Fatal("missing source error diagnostic")
	}
	if sink.Count(diag.KindSource) != 2 {
		t.Fatal("expected two source summaries")
	}
}
