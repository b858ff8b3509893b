package normalizer

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/big5-stats/internal/stats"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("testdata/big5_sample.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}
	return string(data)
}

func column(t *testing.T, tbl *stats.Table, name string) []string {
	t.Helper()
	out := make([]string, 0, tbl.Len())
	for _, row := range tbl.Rows() {
		v, ok := row.Get(name)
		if !ok {
			t.Fatalf("column %q not found in %v", name, tbl.ColumnNames())
		}
		out = append(out, v.String())
	}
	return out
}

func TestNormalize_Fixture(t *testing.T) {
	n := New(DefaultTranslations())

	tbl, err := n.Normalize(loadFixture(t))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	wantColumns := []string{
		"Classificação", "Equipe", "País", "Posição na Liga", "Jogos Disputados",
		"Vitórias", "Empates", "Derrotas", "Gols pró", "Gols contra",
		"Diferença de Gols", "Pontos", "Gols previstos", "Comparecimento/Jogo",
	}
	if diff := cmp.Diff(wantColumns, tbl.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	// The repeated header row, the row with an empty xG and the row with "—"
	// attendance are dropped; source order is kept.
	if diff := cmp.Diff([]string{"Manchester City", "Liverpool", "Real Madrid"}, column(t, tbl, TeamColumn)); diff != "" {
		t.Errorf("teams mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"eng ENG", "eng ENG", "es ESP"}, column(t, tbl, CountryColumn)); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}

	if tbl.HasMissing() {
		t.Error("normalized table still has missing values")
	}

	wantTypes := map[string]stats.ColumnType{
		"Classificação":       stats.Numeric,
		"Equipe":              stats.Text,
		"País":                stats.Text,
		"Posição na Liga":     stats.Text,
		"Pontos":              stats.Numeric,
		"Gols previstos":      stats.Numeric,
		"Diferença de Gols":   stats.Numeric,
		"Comparecimento/Jogo": stats.Numeric,
	}
	for name, want := range wantTypes {
		got, ok := tbl.ColumnType(name)
		if !ok || got != want {
			t.Errorf("ColumnType(%q) = %v, want %v", name, got, want)
		}
	}

	first := tbl.Row(0)
	checks := map[string]float64{
		"Diferença de Gols":   73,
		"Comparecimento/Jogo": 52759,
		"Gols previstos":      92.5,
		"Pontos":              93,
	}
	for name, want := range checks {
		v, _ := first.Get(name)
		if f, ok := v.Float(); !ok || f != want {
			t.Errorf("first row %s = %v, want %v", name, v, want)
		}
	}
}

func TestNormalize_NoTable(t *testing.T) {
	n := New(DefaultTranslations())

	docs := map[string]string{
		"empty document": "",
		"no table":       "<html><body><p>Sem dados</p></body></html>",
		"blocked page":   "<html><body><h1>429 Too Many Requests</h1></body></html>",
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			tbl, err := n.Normalize(doc)
			if tbl != nil {
				t.Errorf("Normalize() returned a table for %q", doc)
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Normalize() error = %v, want *ParseError", err)
			}
			if parseErr.Reason != "no table found" {
				t.Errorf("ParseError.Reason = %q, want %q", parseErr.Reason, "no table found")
			}
		})
	}
}

func TestNormalize_MultiLevelHeader(t *testing.T) {
	doc := `
		<table>
			<thead>
				<tr><th rowspan="2">Equipe</th><th colspan="2">Geral</th><th></th></tr>
				<tr><th>MP</th><th>V</th><th>xG</th></tr>
			</thead>
			<tbody>
				<tr><td>Arsenal</td><td>10</td><td>7</td><td>18.2</td></tr>
				<tr><td>Chelsea</td><td>10</td><td>5</td><td>15.0</td></tr>
			</tbody>
		</table>`

	tbl, err := New(NewTranslations(map[string]string{"Geral MP": "Jogos"})).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if diff := cmp.Diff([]string{"Equipe", "Jogos", "Geral V", "xG"}, tbl.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 2 {
		t.Errorf("rows = %d, want 2", tbl.Len())
	}
}

func TestNormalize_RowspanVersusRepeatedLevel(t *testing.T) {
	// "Equipe" spans both header rows and names one column; "Gols" over "Gols"
	// is a real group and sub-column pair.
	doc := `
		<table>
			<thead>
				<tr><th rowspan="2">Equipe</th><th colspan="2">Gols</th></tr>
				<tr><th>Gols</th><th>xG</th></tr>
			</thead>
			<tbody>
				<tr><td>Roma</td><td>65</td><td>58.1</td></tr>
			</tbody>
		</table>`

	tbl, err := New(NewTranslations(nil)).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if diff := cmp.Diff([]string{"Equipe", "Gols Gols", "Gols xG"}, tbl.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_BodyRowspanRepeatsValue(t *testing.T) {
	doc := `
		<table>
			<thead><tr><th>País</th><th>Equipe</th></tr></thead>
			<tbody>
				<tr><td rowspan="2">it ITA</td><td>Inter</td></tr>
				<tr><td>Milan</td></tr>
			</tbody>
		</table>`

	tbl, err := New(DefaultTranslations()).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if diff := cmp.Diff([]string{"it ITA", "it ITA"}, column(t, tbl, CountryColumn)); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NonNumericInNumericColumn(t *testing.T) {
	doc := `
		<table>
			<thead><tr><th>Equipe</th><th>MP</th><th>V</th></tr></thead>
			<tbody>
				<tr><td>Arsenal</td><td>10</td><td>—</td></tr>
				<tr><td>Chelsea</td><td>10</td><td>6</td></tr>
				<tr><td>Everton</td><td>10</td><td>abc</td></tr>
				<tr><td>Fulham</td><td>10</td><td>4</td></tr>
			</tbody>
		</table>`

	n := New(NewTranslations(nil))

	before, err := n.materialize(doc)
	if err != nil {
		t.Fatalf("materialize() error: %v", err)
	}
	if before.Len() != 4 {
		t.Fatalf("rows before elimination = %d, want 4", before.Len())
	}

	tbl, err := n.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if ct, _ := tbl.ColumnType("V"); ct != stats.Numeric {
		t.Errorf("V column type = %v, want numeric", ct)
	}
	if diff := cmp.Diff([]string{"Chelsea", "Fulham"}, column(t, tbl, "Equipe")); diff != "" {
		t.Errorf("teams mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_TranslationIsPureRename(t *testing.T) {
	doc := loadFixture(t)

	raw, err := New(NewTranslations(nil)).materialize(doc)
	if err != nil {
		t.Fatalf("materialize() error: %v", err)
	}
	translations := DefaultTranslations()
	translated, err := New(translations).materialize(doc)
	if err != nil {
		t.Fatalf("materialize() error: %v", err)
	}

	if raw.Len() != translated.Len() {
		t.Errorf("translation changed row count: %d vs %d", raw.Len(), translated.Len())
	}

	want := make([]string, 0)
	for _, name := range raw.ColumnNames() {
		want = append(want, translations.Translate(name))
	}
	if diff := cmp.Diff(want, translated.ColumnNames()); diff != "" {
		t.Errorf("translated columns mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_NullEliminationIdempotent(t *testing.T) {
	n := New(DefaultTranslations())
	doc := loadFixture(t)

	before, err := n.materialize(doc)
	if err != nil {
		t.Fatalf("materialize() error: %v", err)
	}
	after, err := n.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}

	if after.Len() > before.Len() {
		t.Errorf("elimination grew the table: %d > %d", after.Len(), before.Len())
	}
	if before.HasMissing() == (after.Len() == before.Len()) {
		t.Errorf("row counts equal iff no missing values: before=%d after=%d hasMissing=%v",
			before.Len(), after.Len(), before.HasMissing())
	}

	again := after.DropMissing()
	if diff := cmp.Diff(column(t, after, TeamColumn), column(t, again, TeamColumn)); diff != "" {
		t.Errorf("second elimination changed the table (-first +second):\n%s", diff)
	}
}

func TestNormalize_FirstTableOnly(t *testing.T) {
	doc := `
		<div>
			<table id="first">
				<tr><th>Equipe</th><th>Pt</th></tr>
				<tr><td>Milan<table><tr><td>nested</td></tr></table></td><td>86</td></tr>
			</table>
			<table id="second"><tr><th>Outra</th></tr><tr><td>x</td></tr></table>
		</div>`

	tbl, err := New(DefaultTranslations()).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if diff := cmp.Diff([]string{"Equipe", "Pontos"}, tbl.ColumnNames()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if tbl.Len() != 1 {
		t.Errorf("rows = %d, want 1 (nested table rows excluded)", tbl.Len())
	}
}

func TestNormalize_NoHeaderRow(t *testing.T) {
	doc := `<table><tr><td>Lazio</td><td>64</td></tr></table>`

	tbl, err := New(DefaultTranslations()).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if diff := cmp.Diff([]string{"0", "1"}, tbl.ColumnNames()); diff != "" {
		t.Errorf("positional columns mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name   string
		levels [][]string
		want   []string
	}{
		{
			name:   "two-level header",
			levels: [][]string{{"Geral", "Geral"}, {"MP", "V"}},
			want:   []string{"Geral MP", "Geral V"},
		},
		{
			name:   "single level unchanged",
			levels: [][]string{{"Class.", "Equipe", "Últimos 5"}},
			want:   []string{"Class.", "Equipe", "Últimos 5"},
		},
		{
			name:   "blank upper level skipped",
			levels: [][]string{{"", "Esperado"}, {"Equipe", "xG"}},
			want:   []string{"Equipe", "Esperado xG"},
		},
		{
			name:   "equal levels both kept",
			levels: [][]string{{"Gols", "Gols"}, {"Gols", "xG"}},
			want:   []string{"Gols Gols", "Gols xG"},
		},
		{
			name:   "surrounding whitespace trimmed",
			levels: [][]string{{" Geral "}, {" MP"}},
			want:   []string{"Geral MP"},
		},
		{
			name:   "no header",
			levels: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Flatten(tt.levels)); diff != "" {
				t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlatten_IdempotentOnFlatHeaders(t *testing.T) {
	flat := [][]string{{"Geral MP", "Geral V"}}
	once := Flatten(flat)
	twice := Flatten([][]string{once})
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Flatten() not idempotent (-once +twice):\n%s", diff)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"38", 38, true},
		{"+73", 73, true},
		{"-4", -4, true},
		{"1.85", 1.85, true},
		{"52,759", 52759, true},
		{" 7 ", 7, true},
		{"1º", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"V E D V V", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseNumber(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTranslations(t *testing.T) {
	tr := DefaultTranslations()

	if got := tr.Translate("Pt"); got != "Pontos" {
		t.Errorf("Translate(Pt) = %q, want Pontos", got)
	}
	if got := tr.Translate("Equipe"); got != TeamColumn {
		t.Errorf("Translate(Equipe) = %q, want passthrough", got)
	}
	if got := tr.Translate("País"); got != CountryColumn {
		t.Errorf("Translate(País) = %q, want %q", got, CountryColumn)
	}

	src := map[string]string{"MP": "Jogos"}
	custom := NewTranslations(src)
	src["MP"] = "changed"
	if got := custom.Translate("MP"); got != "Jogos" {
		t.Errorf("NewTranslations did not copy its input: %q", got)
	}
}
