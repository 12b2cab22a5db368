package document

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/firestore"
	"github.com/foxseedlab/kikitori/internal/document"
	"google.golang.org/api/option"
)

const datastoreScope = "https://www.googleapis.com/auth/datastore"

type FirestoreConfig struct {
	ProjectID       string
	CredentialsJSON string
}

type FirestoreStore struct {
	projectID       string
	credentialsJSON string

	mu     sync.Mutex
	client *firestore.Client
}

func NewFirestoreStore(cfg FirestoreConfig) *FirestoreStore {
	return &FirestoreStore{
		projectID:       cfg.ProjectID,
		credentialsJSON: cfg.CredentialsJSON,
	}
}

func (s *FirestoreStore) SetField(ctx context.Context, target document.Target, value string) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(target.Collection).Doc(target.DocumentID).Set(ctx, fieldUpdate(target.Field, value), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("set firestore field %s/%s.%s: %w", target.Collection, target.DocumentID, target.Field, err)
	}
	return nil
}

func (s *FirestoreStore) connect(ctx context.Context) (*firestore.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	var opts []option.ClientOption
	if s.credentialsJSON != "" {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			CredentialsJSON: []byte(s.credentialsJSON),
			Scopes:          []string{datastoreScope},
		})
		if err != nil {
			return nil, fmt.Errorf("detect firestore credentials: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))
	}
	client, err := firestore.NewClient(ctx, s.projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	s.client = client
	return client, nil
}

func (s *FirestoreStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func validateTarget(target document.Target) error {
	switch {
	case strings.TrimSpace(target.Collection) == "":
		return fmt.Errorf("firestore collection is empty")
	case strings.TrimSpace(target.DocumentID) == "":
		return fmt.Errorf("firestore document id is empty")
	case strings.TrimSpace(target.Field) == "":
		return fmt.Errorf("firestore field is empty")
	case strings.Contains(target.DocumentID, "/"):
		return fmt.Errorf("firestore document id must not contain '/': %s", target.DocumentID)
	}
	return nil
}

// fieldUpdate nests dotted field paths so MergeAll touches only the leaf.
func fieldUpdate(field, value string) map[string]interface{} {
	parts := strings.Split(field, ".")
	var node interface{} = value
	for i := len(parts) - 1; i >= 0; i-- {
		node = map[string]interface{}{parts[i]: node}
	}
	return node.(map[string]interface{})
}
