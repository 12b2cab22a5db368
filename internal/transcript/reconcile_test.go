package transcript

import (
	"reflect"
	"strings"
	"testing"
)

func words(pairs ...string) []Word {
	out := make([]Word, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Word{Text: pairs[i], SpeakerID: pairs[i+1]})
	}
	return out
}

func TestReconcile_RecoversPunctuationPerSpeaker(t *testing.T) {
	report := Reconcile(words("oi", "1", "tudo", "1", "bem", "1", "ótimo", "2"), "Oi, tudo bem? Ótimo.")

	if len(report.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(report.Turns), report.Turns)
	}
	first, second := report.Turns[0], report.Turns[1]
	if first.SpeakerID != "1" || first.Text != "Oi, tudo bem?" {
		t.Fatalf("unexpected first turn: %+v", first)
	}
	if second.SpeakerID != "2" || second.Text != "Ótimo." {
		t.Fatalf("unexpected second turn: %+v", second)
	}
	if first.Tier != MatchTierPattern || second.Tier != MatchTierPattern {
		t.Fatalf("expected pattern tier for both turns, got %s and %s", first.Tier, second.Tier)
	}
}

func TestReconcile_EmptyTranscriptFallsBackToWords(t *testing.T) {
	report := Reconcile(words("abc", "1"), "")
	if len(report.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(report.Turns))
	}
	if report.Turns[0].Text != "abc" || report.Turns[0].Tier != MatchTierUnmatched {
		t.Fatalf("unexpected turn: %+v", report.Turns[0])
	}
}

func TestReconcile_NoWordsRendersSentinel(t *testing.T) {
	for _, transcript := range []string{"", "Alguma coisa foi dita."} {
		report := Reconcile(nil, transcript)
		if !report.Empty() {
			t.Fatalf("expected empty report for transcript %q", transcript)
		}
		if report.Render() != NoWordsDetected {
			t.Fatalf("expected sentinel, got %q", report.Render())
		}
	}
}

func TestReconcile_AlternatingSpeakersStayDistinct(t *testing.T) {
	report := Reconcile(words("sim", "1", "não", "2", "talvez", "1"), "Sim. Não. Talvez.")
	if len(report.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(report.Turns))
	}
	got := []string{report.Turns[0].SpeakerID, report.Turns[1].SpeakerID, report.Turns[2].SpeakerID}
	if !reflect.DeepEqual(got, []string{"1", "2", "1"}) {
		t.Fatalf("unexpected speaker order: %v", got)
	}
	if report.Turns[2].Text != "Talvez." {
		t.Fatalf("unexpected third turn text: %q", report.Turns[2].Text)
	}
}

func TestReconcile_UnpunctuatedTranscriptMatchesEveryTurn(t *testing.T) {
	ws := words("bom", "a", "dia", "a", "como", "b", "vai", "b", "você", "a")
	joined := make([]string, 0, len(ws))
	for _, w := range ws {
		joined = append(joined, w.Text)
	}
	report := Reconcile(ws, strings.Join(joined, " "))
	for i, turn := range report.Turns {
		if turn.Tier != MatchTierPattern {
			t.Fatalf("turn %d fell back to %s: %+v", i, turn.Tier, turn)
		}
	}
}

func TestReconcile_OutOfOrderTurnFallsBack(t *testing.T) {
	report := Reconcile(words("mundo", "1", "olá", "2"), "Olá, mundo!")
	if report.Turns[0].Tier != MatchTierPattern || report.Turns[0].Text != "mundo!" {
		t.Fatalf("unexpected first turn: %+v", report.Turns[0])
	}
	if report.Turns[1].Tier != MatchTierUnmatched || report.Turns[1].Text != "olá" {
		t.Fatalf("expected unmatched fallback after cursor passed, got %+v", report.Turns[1])
	}
}

func TestReconcile_WindowTierWhenPatternFails(t *testing.T) {
	report := Reconcile(words("bom", "1", "dia!", "1"), "Bom dia.")
	if len(report.Turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(report.Turns))
	}
	turn := report.Turns[0]
	if turn.Tier != MatchTierWindow {
		t.Fatalf("expected window tier, got %s", turn.Tier)
	}
	if turn.Text != "Bom dia." {
		t.Fatalf("unexpected window text: %q", turn.Text)
	}
}

func TestReconcile_RawFallbackIsLowerCase(t *testing.T) {
	report := Reconcile(words("Brasil", "1"), "Portugal.")
	if report.Turns[0].Text != "brasil" {
		t.Fatalf("expected lower-cased fallback, got %q", report.Turns[0].Text)
	}
}

func TestReconcile_PreservesWordOrder(t *testing.T) {
	ws := words("a", "1", "b", "1", "c", "2", "d", "3", "e", "3", "f", "1")
	report := Reconcile(ws, "")
	var got []string
	for _, turn := range report.Turns {
		got = append(got, turn.Words...)
	}
	want := []string{"a", "b", "c", "d", "e", "f"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPartitionTurns_CountsMaximalRuns(t *testing.T) {
	cases := []struct {
		speakers []string
		want     int
	}{
		{[]string{"1"}, 1},
		{[]string{"1", "1", "1"}, 1},
		{[]string{"1", "2"}, 2},
		{[]string{"1", "2", "1"}, 3},
		{[]string{"1", "1", "2", "2", "1", "3", "3"}, 4},
	}
	for _, tc := range cases {
		ws := make([]Word, 0, len(tc.speakers))
		for _, s := range tc.speakers {
			ws = append(ws, Word{Text: "x", SpeakerID: s})
		}
		if got := len(PartitionTurns(ws)); got != tc.want {
			t.Fatalf("speakers %v: expected %d turns, got %d", tc.speakers, tc.want, got)
		}
	}
	if PartitionTurns(nil) != nil {
		t.Fatal("expected nil turns for empty input")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Oi, tudo bem? Ótimo.":  "oi tudo bem ótimo",
		"  muitos   espaços \n": "muitos espaços",
		"snake_case!":           "snake_case",
		"":                      "",
		"...":                   "",
		"İstanbul":              "istanbul",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Oi, tudo bem? Ótimo.",
		"ÇÃO — ação; “aspas” e 'apóstrofos'",
		"İİ ΣΑΣ ß ǅ",
		"\t tabs\tand\nnewlines ",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  olá ,  tudo   bem ? ", want: "olá, tudo bem?"},
		{in: "olá\u00a0,\u00a0tudo\u00a0\u00a0bem\u00a0?", want: "olá, tudo bem?"},
		{in: "\u2003oi\u2009!\u00a0", want: "oi!"},
	}
	for _, tc := range cases {
		if got := cleanText(tc.in); got != tc.want {
			t.Fatalf("cleanText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReconcile_UnicodeSpacesAreCollapsed(t *testing.T) {
	words := []Word{{Text: "oi", SpeakerID: "1"}, {Text: "tudo", SpeakerID: "1"}, {Text: "bem", SpeakerID: "1"}}
	report := Reconcile(words, "Oi,\u00a0tudo\u00a0\u00a0bem\u00a0?")
	if len(report.Turns) != 1 {
		t.Fatalf("expected one turn, got %d", len(report.Turns))
	}
	if got := report.Turns[0].Text; got != "Oi, tudo bem?" {
		t.Fatalf("unexpected text: %q", got)
	}
	if report.Turns[0].Tier != MatchTierPattern {
		t.Fatalf("expected pattern tier, got %s", report.Turns[0].Tier)
	}
}

func TestReport_Render(t *testing.T) {
	report := Report{Turns: []ReconciledTurn{
		{SpeakerID: "1", Text: "Oi."},
		{SpeakerID: "2", Text: "Olá."},
	}}
	want := "👤 Pessoa 1:\nOi.\n\n👤 Pessoa 2:\nOlá."
	if got := report.Render(); got != want {
		t.Fatalf("unexpected render:\n%s", got)
	}
}
