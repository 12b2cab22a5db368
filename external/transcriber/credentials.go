package transcriber

import (
	"fmt"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/durationpb"
)

const (
	speechAPIEndpointPort = 443
	cloudPlatformScope    = "https://www.googleapis.com/auth/cloud-platform"
)

// clientOptions falls back to Application Default Credentials when
// credentialsJSON is empty. Regional locations get their own endpoint.
func clientOptions(credentialsJSON, location string) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: []byte(credentialsJSON),
			Scopes:          []string{cloudPlatformScope},
		})
		if err != nil {
			return nil, fmt.Errorf("detect credentials: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))
	}
	if location != "" && location != "global" {
		opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-speech.googleapis.com:%d", location, speechAPIEndpointPort)))
	}
	return opts, nil
}

func offsetSeconds(d *durationpb.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.AsDuration().Seconds()
	return &s
}
