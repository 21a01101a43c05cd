package ports

import "context"

// DocumentStore persists encoded documents under string keys.
// Encoding is the caller's concern; stores only move bytes.
type DocumentStore interface {
	// Save writes the document, replacing any previous content.
	Save(ctx context.Context, key string, data []byte) error

	// Load returns the document stored under key.
	// Returns domain.ErrDocumentNotFound if the key does not exist.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)
}
