package storage

import (
	"context"
	"errors"
	"sync"

	"face-quality-scan/internal/domain/port"
)

// StoredObject объект в памяти вместе с типом содержимого
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStore in-memory объектное хранилище
type MemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryObjectStore создаёт новое in-memory хранилище
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string]StoredObject),
	}
}

// PutObject сохраняет копию данных под bucket/key
func (s *MemoryObjectStore) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	if bucket == "" || key == "" {
		return errors.New("bucket and key are required")
	}
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	s.objects[bucket+"/"+key] = StoredObject{Data: cp, ContentType: contentType}
	s.mu.Unlock()

	return nil
}

// Get возвращает объект, если он есть
func (s *MemoryObjectStore) Get(bucket, key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[bucket+"/"+key]
	return obj, ok
}

// Len возвращает количество объектов
func (s *MemoryObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}

// Проверка реализации интерфейса
var _ port.ObjectStore = (*MemoryObjectStore)(nil)
