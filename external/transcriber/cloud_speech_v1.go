package transcriber

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/transcript"
)

type longRunningFunc func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error)

// CloudSpeechV1Transcriber submits audio as a long-running operation and
// waits for it until ctx is done.
type CloudSpeechV1Transcriber struct {
	credentialsJSON string
	model           string

	mu          sync.Mutex
	client      *speech.Client
	longRunning longRunningFunc
}

func NewCloudSpeechV1Transcriber(cfg CloudSpeechConfig) *CloudSpeechV1Transcriber {
	return &CloudSpeechV1Transcriber{
		credentialsJSON: cfg.CredentialsJSON,
		model:           v1Model(cfg.Model),
	}
}

// v1Model drops chirp models, which only exist on the v2 API.
func v1Model(model string) string {
	model = strings.TrimSpace(model)
	if strings.HasPrefix(model, "chirp") {
		return ""
	}
	return model
}

func (t *CloudSpeechV1Transcriber) Model() string {
	if t.model == "" {
		return "default"
	}
	return t.model
}

func (t *CloudSpeechV1Transcriber) Recognize(ctx context.Context, req transcriber.Request) (*transcriber.Result, error) {
	run, err := t.operation(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("sending audio to cloud speech v1", "model", t.Model(), "language", req.Language, "bytes", len(req.Audio), "diarization", req.Diarization.Enabled)
	resp, err := run(ctx, t.buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("cloud speech long running recognize: %w", err)
	}
	slog.Info("cloud speech v1 operation finished", "results", len(resp.GetResults()))

	if len(resp.GetResults()) == 0 {
		return nil, transcriber.ErrNoSpeech
	}
	return resultFromV1(resp, req.Diarization.Enabled), nil
}

func (t *CloudSpeechV1Transcriber) buildRequest(req transcriber.Request) *speechpb.LongRunningRecognizeRequest {
	cfg := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(req.SampleRateHertz),
		AudioChannelCount:          int32(req.Channels),
		LanguageCode:               req.Language,
		Model:                      t.model,
		EnableWordTimeOffsets:      true,
		EnableAutomaticPunctuation: true,
	}
	if req.Diarization.Enabled {
		cfg.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          int32(req.Diarization.MinSpeakers),
			MaxSpeakerCount:          int32(req.Diarization.MaxSpeakers),
		}
	}
	return &speechpb.LongRunningRecognizeRequest{
		Config: cfg,
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	}
}

func (t *CloudSpeechV1Transcriber) operation(ctx context.Context) (longRunningFunc, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.longRunning != nil {
		return t.longRunning, nil
	}
	opts, err := clientOptions(t.credentialsJSON, "")
	if err != nil {
		return nil, err
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud speech v1 client: %w", err)
	}
	t.client = client
	t.longRunning = func(ctx context.Context, req *speechpb.LongRunningRecognizeRequest) (*speechpb.LongRunningRecognizeResponse, error) {
		op, err := client.LongRunningRecognize(ctx, req)
		if err != nil {
			return nil, err
		}
		slog.Debug("waiting for long running operation", "name", op.Name())
		return op.Wait(ctx)
	}
	return t.longRunning, nil
}

func (t *CloudSpeechV1Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	t.longRunning = nil
	return err
}

// resultFromV1 joins the transcripts of every result. With diarization the
// API repeats the whole word list, speaker tags included, on the last result
// that has words, so only that list is kept.
func resultFromV1(resp *speechpb.LongRunningRecognizeResponse, diarized bool) *transcriber.Result {
	segments := make([]transcriber.Segment, 0, len(resp.GetResults()))
	var lastWords []transcript.Word
	for _, result := range resp.GetResults() {
		alts := result.GetAlternatives()
		if len(alts) == 0 {
			continue
		}
		alt := alts[0]
		seg := transcriber.Segment{
			Transcript: alt.GetTranscript(),
			Confidence: alt.GetConfidence(),
		}
		for _, w := range alt.GetWords() {
			seg.Words = append(seg.Words, transcript.Word{
				Text:      w.GetWord(),
				SpeakerID: v1SpeakerID(w),
				Start:     offsetSeconds(w.GetStartTime()),
				End:       offsetSeconds(w.GetEndTime()),
			})
		}
		if len(seg.Words) > 0 {
			lastWords = seg.Words
		}
		segments = append(segments, seg)
	}

	if !diarized {
		return transcriber.Merge(segments)
	}
	for i := range segments {
		segments[i].Words = nil
	}
	res := transcriber.Merge(segments)
	res.Words = lastWords
	res.Diarized = transcriber.FillSpeakerGaps(res.Words)
	return res
}

func v1SpeakerID(w *speechpb.WordInfo) string {
	if label := w.GetSpeakerLabel(); label != "" {
		return label
	}
	if tag := w.GetSpeakerTag(); tag > 0 {
		return strconv.Itoa(int(tag))
	}
	return ""
}
