package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fintrack/internal/backend"
)

// Blobs is an in-memory blob store.
type Blobs struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailUpload / FailDelete force the respective operation to fail.
	FailUpload error
	FailDelete error
}

func NewBlobs() *Blobs {
	return &Blobs{files: make(map[string][]byte)}
}

func (b *Blobs) Upload(_ context.Context, path string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailUpload != nil {
		err := b.FailUpload
		b.FailUpload = nil
		return err
	}
	b.files[path] = append([]byte(nil), data...)
	return nil
}

func (b *Blobs) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.files[path]; !ok {
		return "", fmt.Errorf("blob %s not found", path)
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("mem://%s?exp=%d", path, expires), nil
}

func (b *Blobs) Delete(_ context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailDelete != nil {
		err := b.FailDelete
		b.FailDelete = nil
		return err
	}
	if _, ok := b.files[path]; !ok {
		return fmt.Errorf("blob %s not found", path)
	}
	delete(b.files, path)
	return nil
}

// Has reports whether a blob exists, for assertions in tests.
func (b *Blobs) Has(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[path]
	return ok
}

var _ backend.BlobStore = (*Blobs)(nil)
