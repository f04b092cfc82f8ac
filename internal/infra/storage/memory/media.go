package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"stayhub/internal/infra/storage/s3"
)

// MediaStore is an in-memory media backend for local runs and tests. Objects
// live in a map and URLs are synthetic.
type MediaStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	BaseURL string
}

func NewMediaStore() *MediaStore {
	return &MediaStore{objects: make(map[string][]byte), BaseURL: "memory://media"}
}

func (m *MediaStore) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("media: object key is required")
	}
	if reader == nil {
		return "", errors.New("media: reader is required")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return m.BaseURL + "/" + key, nil
}

func (m *MediaStore) Remove(ctx context.Context, publicURL string) error {
	key, ok := strings.CutPrefix(publicURL, m.BaseURL+"/")
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Len reports the stored object count.
func (m *MediaStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var _ s3.Store = (*MediaStore)(nil)
