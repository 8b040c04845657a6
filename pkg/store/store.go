// Package store provides the string-keyed persisted state used for tokens
// and UI preferences.
package store

import (
	"context"
	"sync"
)

const (
	// KeyAccessToken holds the current bearer token.
	KeyAccessToken = "accessToken"

	// KeyRefreshToken holds the token used to obtain a new access token.
	KeyRefreshToken = "refreshToken"

	// KeyTokenExpiry holds the access token expiry as unix milliseconds.
	KeyTokenExpiry = "tokenExpiryTime"

	// KeyLastPath holds the last navigation path opened in the browser.
	KeyLastPath = "lastPath"
)

// Store is a plain string-keyed get/set/remove store. Implementations
// must be safe for concurrent use.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
