package storage

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dyehouse/backend/internal/application/report"
)

// Object is a stored export
type Object struct {
	Data        []byte
	ContentType string
	UploadedAt  time.Time
}

// MemoryStorage keeps exports in process. Download links point at BaseURL
// and are not served by anything; it exists for local runs and tests.
type MemoryStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/files"
	}
	return &MemoryStorage{BaseURL: baseURL, objects: make(map[string]Object)}
}

func (m *MemoryStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = Object{
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		UploadedAt:  time.Now(),
	}
	return nil
}

func (m *MemoryStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	expiresAt := time.Now().Add(expiresIn)
	link := m.BaseURL + "/" + storageKey + "?expires=" + url.QueryEscape(strconv.FormatInt(expiresAt.Unix(), 10))
	return link, expiresAt, nil
}

// Get returns a stored object
func (m *MemoryStorage) Get(storageKey string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	return obj, ok
}

var _ report.ExportStorage = (*MemoryStorage)(nil)
