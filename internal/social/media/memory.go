package media

import (
	"context"
	"sync"
)

type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps uploads in process. Used in tests and when no bucket is
// configured.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Object)}
}

func (m *Memory) Upload(_ context.Context, filename string, data []byte) (string, error) {
	key, contentType, err := prepare(filename, data)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: append([]byte(nil), data...)}
	return key, nil
}

func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}
