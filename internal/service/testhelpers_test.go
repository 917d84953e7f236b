package service

import (
	"context"
	"errors"
	"sync"
)

type memoryBlobRepo struct {
	mu      sync.Mutex
	data    map[string][]byte
	puts    int
	failGet error
}

func newMemoryBlobRepo() *memoryBlobRepo {
	return &memoryBlobRepo{data: map[string][]byte{}}
}

func (r *memoryBlobRepo) key(sessionID, key string) string {
	return sessionID + "|" + key
}

func (r *memoryBlobRepo) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, false, r.failGet
	}
	v, ok := r.data[r.key(sessionID, key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (r *memoryBlobRepo) Put(_ context.Context, sessionID, key string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.puts++
	r.data[r.key(sessionID, key)] = append([]byte(nil), payload...)
	return nil
}

func (r *memoryBlobRepo) Delete(_ context.Context, sessionID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, r.key(sessionID, key))
	return nil
}

func (r *memoryBlobRepo) raw(sessionID, key string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[r.key(sessionID, key)]
	return v, ok
}

var errStorageDown = errors.New("storage down")
