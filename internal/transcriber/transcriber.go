package transcriber

import (
	"context"
	"errors"
	"strings"

	"github.com/foxseedlab/kikitori/internal/transcript"
)

// ErrNoSpeech is returned when the API found nothing to transcribe, even
// after retrying without diarization.
var ErrNoSpeech = errors.New("no speech detected in audio")

// UnknownSpeakerID stands in for a word the API left unlabelled while
// labelling others of the same result.
const UnknownSpeakerID = "?"

type Diarization struct {
	Enabled     bool
	MinSpeakers int
	MaxSpeakers int
}

type Request struct {
	Audio           []byte
	Language        string
	SampleRateHertz int
	Channels        int
	Diarization     Diarization
}

type Result struct {
	Transcript string
	Confidence float32
	Words      []transcript.Word
	// Diarized is true when at least one word carries a speaker label. Every
	// word of a diarized result has a SpeakerID.
	Diarized bool
}

type Transcriber interface {
	Recognize(ctx context.Context, req Request) (*Result, error)
	Model() string
	Close() error
}

// Segment is one recognition result of the API before the words of all
// results are merged.
type Segment struct {
	Transcript string
	Confidence float32
	Words      []transcript.Word
}

// Merge joins per-result transcripts with spaces and concatenates their words.
// Confidence is the mean over segments that carry text.
func Merge(segments []Segment) *Result {
	res := &Result{}
	texts := make([]string, 0, len(segments))
	var confidenceSum float32
	for _, seg := range segments {
		if t := strings.TrimSpace(seg.Transcript); t != "" {
			texts = append(texts, t)
			confidenceSum += seg.Confidence
		}
		res.Words = append(res.Words, seg.Words...)
	}
	res.Transcript = strings.TrimSpace(strings.Join(texts, " "))
	if len(texts) > 0 {
		res.Confidence = confidenceSum / float32(len(texts))
	}
	res.Diarized = FillSpeakerGaps(res.Words)
	return res
}

// FillSpeakerGaps reports whether any word carries a speaker label and, when
// one does, assigns UnknownSpeakerID to the unlabelled words in place.
func FillSpeakerGaps(words []transcript.Word) bool {
	if !hasSpeakerLabels(words) {
		return false
	}
	for i := range words {
		if words[i].SpeakerID == "" {
			words[i].SpeakerID = UnknownSpeakerID
		}
	}
	return true
}

func hasSpeakerLabels(words []transcript.Word) bool {
	for _, w := range words {
		if w.SpeakerID != "" {
			return true
		}
	}
	return false
}
