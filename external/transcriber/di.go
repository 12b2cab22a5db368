package transcriber

import (
	"fmt"

	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/transcriber"
	"github.com/samber/do/v2"
)

// RegisterDI provides the Speech-to-Text client selected by
// GOOGLE_CLOUD_SPEECH_API.
func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		return newTranscriber(do.MustInvoke[*config.Config](i))
	})
}

func newTranscriber(c *config.Config) (transcriber.Transcriber, error) {
	sc := CloudSpeechConfig{
		ProjectID:       c.GoogleCloudProjectID,
		CredentialsJSON: c.GoogleCloudCredentialsJSON,
		Location:        c.GoogleCloudSpeechLocation,
		Model:           c.GoogleCloudSpeechModel,
	}
	switch c.GoogleCloudSpeechAPI {
	case config.SpeechAPIV1:
		return NewCloudSpeechV1Transcriber(sc), nil
	case config.SpeechAPIV2, "":
		return NewCloudSpeechV2Transcriber(sc), nil
	default:
		return nil, fmt.Errorf("unsupported speech api %q", c.GoogleCloudSpeechAPI)
	}
}
