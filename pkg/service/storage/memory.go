package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/rolodex/pkg/domain/interfaces"
	"github.com/secmon-lab/rolodex/pkg/domain/model"
)

// Object is a stored upload
type Object struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Memory keeps uploads in process. It is used for development and tests.
type Memory struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]*Object
}

var _ interfaces.Uploader = &Memory{}

// NewMemory creates an in-memory uploader. Attachment URLs are baseURL + "/" + id, or empty
// when baseURL is empty.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]*Object),
	}
}

func (m *Memory) UploadFile(ctx context.Context, data []byte, filename string) (*model.Attachment, error) {
	if err := checkUpload(data, filename); err != nil {
		return nil, err
	}

	obj := &Object{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType(filename, data),
		Data:        append([]byte(nil), data...),
		CreatedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	m.objects[obj.ID] = obj
	m.mu.Unlock()

	attachment := &model.Attachment{ID: obj.ID}
	if m.baseURL != "" {
		attachment.URL = m.baseURL + "/" + obj.ID
	}
	return attachment, nil
}

// Get returns a copy of the stored object
func (m *Memory) Get(id string) (*Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[id]
	if !ok {
		return nil, false
	}
	copied := *obj
	copied.Data = append([]byte(nil), obj.Data...)
	return &copied, true
}
