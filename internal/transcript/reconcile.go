// Package transcript groups diarized words into speaker turns and recovers the
// punctuation of each turn from the full transcript returned by the speech API.
package transcript

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NoWordsDetected is rendered instead of a report when the API emitted no words.
const NoWordsDetected = "(nenhuma palavra detectada)"

const (
	windowLeadRunes  = 10
	windowMinRunes   = 20
	windowExtraRunes = 30
)

// MatchTier tells how the text of a reconciled turn was obtained.
type MatchTier string

const (
	MatchTierPattern   MatchTier = "pattern"
	MatchTierWindow    MatchTier = "window"
	MatchTierUnmatched MatchTier = "unmatched"
)

// Word is one recognized word. Start and End are seconds from the beginning of
// the audio and are nil when the API did not return offsets.
type Word struct {
	Text      string
	SpeakerID string
	Start     *float64
	End       *float64
}

// Turn is a maximal run of adjacent words attributed to one speaker.
type Turn struct {
	SpeakerID string
	Words     []string
}

// Joined returns the raw words separated by single spaces.
func (t Turn) Joined() string {
	return strings.Join(t.Words, " ")
}

type ReconciledTurn struct {
	SpeakerID string
	Text      string
	Words     []string
	Tier      MatchTier
}

type Report struct {
	Turns []ReconciledTurn
}

func (r Report) Empty() bool {
	return len(r.Turns) == 0
}

// Blocks returns one rendered block per turn, or the sentinel alone when the
// report is empty.
func (r Report) Blocks() []string {
	if r.Empty() {
		return []string{NoWordsDetected}
	}
	out := make([]string, 0, len(r.Turns))
	for _, t := range r.Turns {
		out = append(out, RenderTurn(t))
	}
	return out
}

func (r Report) Render() string {
	return strings.Join(r.Blocks(), "\n\n")
}

func RenderTurn(t ReconciledTurn) string {
	return "👤 Pessoa " + t.SpeakerID + ":\n" + t.Text
}

// Normalize lower-cases s, drops every rune that is not a letter, number,
// underscore or space and collapses whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_'
}

func tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}

// PartitionTurns starts a new turn whenever a word's speaker differs from the
// previous word's speaker.
func PartitionTurns(words []Word) []Turn {
	if len(words) == 0 {
		return nil
	}
	turns := make([]Turn, 0, 1)
	current := Turn{SpeakerID: words[0].SpeakerID}
	for _, w := range words {
		if w.SpeakerID != current.SpeakerID {
			turns = append(turns, current)
			current = Turn{SpeakerID: w.SpeakerID}
		}
		current.Words = append(current.Words, w.Text)
	}
	return append(turns, current)
}

// Reconcile partitions words into turns and attaches to each turn the best
// punctuated text recoverable from transcript. Turns are matched against the
// transcript tokens in order; the search never goes back before the end of the
// previous match, so out-of-order turns fall back to their raw words.
func Reconcile(words []Word, transcript string) Report {
	turns := PartitionTurns(words)
	if len(turns) == 0 {
		return Report{}
	}
	corpus := tokenize(transcript)
	cursor := 0
	out := make([]ReconciledTurn, 0, len(turns))
	for _, turn := range turns {
		rt := ReconciledTurn{SpeakerID: turn.SpeakerID, Words: turn.Words}
		end, ok := matchTokens(corpus, tokenize(turn.Joined()), cursor)
		if ok {
			cursor = end
			rt.Text, rt.Tier = recoverPunctuated(transcript, turn)
		} else {
			rt.Text, rt.Tier = unmatchedText(turn), MatchTierUnmatched
		}
		rt.Text = cleanText(rt.Text)
		out = append(out, rt)
	}
	return Report{Turns: out}
}

// matchTokens finds segment as a contiguous run of corpus at or after from and
// returns the index just past the match.
func matchTokens(corpus, segment []string, from int) (int, bool) {
	if len(segment) == 0 {
		return 0, false
	}
	for start := from; start+len(segment) <= len(corpus); start++ {
		if corpus[start] != segment[0] {
			continue
		}
		if equalTokens(corpus[start:start+len(segment)], segment) {
			return start + len(segment), true
		}
	}
	return 0, false
}

func equalTokens(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func recoverPunctuated(transcript string, turn Turn) (string, MatchTier) {
	if s, ok := PatternMatch(transcript, turn.Words); ok {
		return s, MatchTierPattern
	}
	if s, ok := WindowMatch(transcript, turn.Words); ok {
		return s, MatchTierWindow
	}
	return unmatchedText(turn), MatchTierUnmatched
}

const (
	nonWordClass     = `[^\p{L}\p{N}_]`
	punctuationClass = `[^\p{L}\p{N}_\s]`
)

// PatternMatch looks for words in transcript case-insensitively, allowing any
// run of non-word characters between them and keeping punctuation glued to the
// last word. Boundaries are Unicode aware, unlike RE2's ASCII \b.
func PatternMatch(transcript string, words []string) (string, bool) {
	if len(words) == 0 || transcript == "" {
		return "", false
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	pattern := `(?i)(?:^|` + nonWordClass + `)(` +
		strings.Join(quoted, nonWordClass+`+`) + punctuationClass + `*)(?:$|` + nonWordClass + `)`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(transcript)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// WindowMatch approximates a turn by a fixed-size slice of transcript that
// starts shortly before the first occurrence of the turn's first word.
func WindowMatch(transcript string, words []string) (string, bool) {
	if len(words) == 0 || words[0] == "" {
		return "", false
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(words[0]))
	if err != nil {
		return "", false
	}
	loc := re.FindStringIndex(transcript)
	if loc == nil {
		return "", false
	}
	runes := []rune(transcript)
	start := utf8.RuneCountInString(transcript[:loc[0]]) - windowLeadRunes
	if start < 0 {
		start = 0
	}
	length := utf8.RuneCountInString(strings.Join(words, " ")) + windowExtraRunes
	if length < windowMinRunes {
		length = windowMinRunes
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	return strings.TrimSpace(string(runes[start:end])), true
}

func unmatchedText(turn Turn) string {
	return strings.ToLower(turn.Joined())
}

var (
	// \s is ASCII only in RE2; \p{Z} adds NBSP and the other Unicode spaces.
	whitespaceRun       = regexp.MustCompile(`[\s\p{Z}]+`)
	spaceBeforePunctRun = regexp.MustCompile(`[\s\p{Z}]+([.,;:!?])`)
)

func cleanText(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = spaceBeforePunctRun.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}
