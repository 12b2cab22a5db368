package document

import "context"

// Target names the document field the latest transcript is written to.
type Target struct {
	Collection string
	DocumentID string
	Field      string
}

type Store interface {
	// SetField merges value into one field of a document, creating the
	// document when missing and leaving its other fields untouched.
	SetField(ctx context.Context, target Target, value string) error
	Close() error
}
