package transcriber

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	speech "cloud.google.com/go/speech/apiv2"
	speechpb "cloud.google.com/go/speech/apiv2/speechpb"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/foxseedlab/kikitori/internal/transcript"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type CloudSpeechConfig struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	Model           string
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// CloudSpeechV2Transcriber calls the synchronous Recognize RPC of Speech-to-Text
// v2 against the default recognizer of the configured location.
type CloudSpeechV2Transcriber struct {
	projectID       string
	credentialsJSON string
	location        string
	model           string

	mu        sync.Mutex
	client    *speech.Client
	recognize recognizeFunc
}

func NewCloudSpeechV2Transcriber(cfg CloudSpeechConfig) *CloudSpeechV2Transcriber {
	return &CloudSpeechV2Transcriber{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
		location:        strings.TrimSpace(cfg.Location),
		model:           strings.TrimSpace(cfg.Model),
	}
}

func (t *CloudSpeechV2Transcriber) Model() string {
	return t.model
}

func (t *CloudSpeechV2Transcriber) Recognize(ctx context.Context, req transcriber.Request) (*transcriber.Result, error) {
	recognize, err := t.recognizer(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("sending audio to cloud speech v2", "location", t.location, "model", t.model, "language", req.Language, "bytes", len(req.Audio), "diarization", req.Diarization.Enabled)
	resp, err := recognize(ctx, t.buildRequest(req, req.Diarization.Enabled))
	if err != nil {
		return nil, fmt.Errorf("cloud speech recognize: %w", err)
	}
	slog.Info("cloud speech v2 response received", "results", len(resp.GetResults()))

	if len(resp.GetResults()) == 0 && req.Diarization.Enabled {
		slog.Warn("no results with diarization; retrying without diarization")
		resp, err = recognize(ctx, t.buildRequest(req, false))
		if err != nil {
			return nil, fmt.Errorf("cloud speech recognize without diarization: %w", err)
		}
		slog.Info("cloud speech v2 retry response received", "results", len(resp.GetResults()))
	}
	if len(resp.GetResults()) == 0 {
		return nil, transcriber.ErrNoSpeech
	}
	return transcriber.Merge(segmentsFromV2(resp)), nil
}

func (t *CloudSpeechV2Transcriber) recognizerName() string {
	return fmt.Sprintf("projects/%s/locations/%s/recognizers/_", t.projectID, t.location)
}

func (t *CloudSpeechV2Transcriber) buildRequest(req transcriber.Request, diarize bool) *speechpb.RecognizeRequest {
	features := &speechpb.RecognitionFeatures{
		EnableAutomaticPunctuation: true,
	}
	if diarize {
		features.EnableWordTimeOffsets = true
		features.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			MinSpeakerCount: int32(req.Diarization.MinSpeakers),
			MaxSpeakerCount: int32(req.Diarization.MaxSpeakers),
		}
	}
	return &speechpb.RecognizeRequest{
		Recognizer: t.recognizerName(),
		Config: &speechpb.RecognitionConfig{
			Model:         t.model,
			LanguageCodes: []string{req.Language},
			// WAV input carries its own header, so let the API read it.
			DecodingConfig: &speechpb.RecognitionConfig_AutoDecodingConfig{
				AutoDecodingConfig: &speechpb.AutoDetectDecodingConfig{},
			},
			Features: features,
		},
		AudioSource: &speechpb.RecognizeRequest_Content{Content: req.Audio},
	}
}

func (t *CloudSpeechV2Transcriber) recognizer(ctx context.Context) (recognizeFunc, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.recognize != nil {
		return t.recognize, nil
	}
	client, err := t.connectLocked(ctx)
	if err != nil {
		return nil, err
	}
	t.recognize = func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
		return client.Recognize(ctx, req)
	}
	return t.recognize, nil
}

func (t *CloudSpeechV2Transcriber) connectLocked(ctx context.Context) (*speech.Client, error) {
	if t.client != nil {
		return t.client, nil
	}
	opts, err := clientOptions(t.credentialsJSON, t.location)
	if err != nil {
		return nil, err
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud speech v2 client: %w", err)
	}
	t.client = client
	return client, nil
}

// ListRecognizers returns the full resource names of the recognizers in the
// configured project and location.
func (t *CloudSpeechV2Transcriber) ListRecognizers(ctx context.Context) ([]string, error) {
	t.mu.Lock()
	client, err := t.connectLocked(ctx)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	it := client.ListRecognizers(ctx, &speechpb.ListRecognizersRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", t.projectID, t.location),
	})
	var names []string
	for {
		r, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list recognizers: %w", err)
		}
		names = append(names, r.GetName())
	}
	return names, nil
}

// DeleteRecognizers removes named recognizers left over from earlier
// experiments. Missing recognizers are skipped.
func (t *CloudSpeechV2Transcriber) DeleteRecognizers(ctx context.Context, ids []string) error {
	t.mu.Lock()
	client, err := t.connectLocked(ctx)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		name := fmt.Sprintf("projects/%s/locations/%s/recognizers/%s", t.projectID, t.location, id)
		op, err := client.DeleteRecognizer(ctx, &speechpb.DeleteRecognizerRequest{Name: name})
		if err == nil {
			_, err = op.Wait(ctx)
		}
		if err != nil {
			if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
				slog.Info("recognizer not found; skipping", "recognizer", name)
				continue
			}
			return fmt.Errorf("delete recognizer %s: %w", name, err)
		}
		slog.Info("recognizer deleted", "recognizer", name)
	}
	return nil
}

func (t *CloudSpeechV2Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	t.recognize = nil
	return err
}

func segmentsFromV2(resp *speechpb.RecognizeResponse) []transcriber.Segment {
	segments := make([]transcriber.Segment, 0, len(resp.GetResults()))
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
				SpeakerID: w.GetSpeakerLabel(),
				Start:     offsetSeconds(w.GetStartOffset()),
				End:       offsetSeconds(w.GetEndOffset()),
			})
		}
		segments = append(segments, seg)
	}
	return segments
}
