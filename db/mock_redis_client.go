package db

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// MockRedisClient simulates a Redis client for testing purposes.
type MockRedisClient struct {
	data    map[string]string             // Key-value store
	indexes map[string]map[string]float64 // Sorted sets: index key -> member -> score
	mu      sync.RWMutex
	context context.Context
}

// NewMockRedisClient initializes a new MockRedisClient.
func NewMockRedisClient(ctx context.Context) *MockRedisClient {
	return &MockRedisClient{
		data:    make(map[string]string),
		indexes: make(map[string]map[string]float64),
		context: ctx,
	}
}

// Set stores a key-value pair in the mock Redis.
func (m *MockRedisClient) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Get retrieves a value for a given key from the mock Redis.
func (m *MockRedisClient) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, exists := m.data[key]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return value, nil
}

// Del removes a plain key or a whole sorted set.
func (m *MockRedisClient) Del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.indexes, key)
	return nil
}

// Keys matches glob patterns over plain keys and sorted-set keys, sorted.
func (m *MockRedisClient) Keys(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	collect := func(key string) error {
		ok, err := path.Match(pattern, key)
		if err != nil {
			return fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if ok {
			keys = append(keys, key)
		}
		return nil
	}
	for k := range m.data {
		if err := collect(k); err != nil {
			return nil, err
		}
	}
	for k := range m.indexes {
		if err := collect(k); err != nil {
			return nil, err
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MockRedisClient) AddToDateIndex(indexKey, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.indexes[indexKey]; !exists {
		m.indexes[indexKey] = make(map[string]float64)
	}
	m.indexes[indexKey][member] = score
	return nil
}

// RangeDateIndex mirrors ZRANGEBYSCORE: ascending score, ties broken by member.
func (m *MockRedisClient) RangeDateIndex(indexKey string, min, max float64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.indexes[indexKey]
	out := make([]string, 0, len(members))
	for member, score := range members {
		if score >= min && score <= max {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := members[out[i]], members[out[j]]
		if si != sj {
			return si < sj
		}
		return out[i] < out[j]
	})
	return out, nil
}

func (m *MockRedisClient) RemoveFromDateIndex(indexKey, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if members, exists := m.indexes[indexKey]; exists {
		delete(members, member)
		if len(members) == 0 {
			delete(m.indexes, indexKey)
		}
	}
	return nil
}

// GetContext returns the mock Redis client's context.
func (m *MockRedisClient) GetContext() context.Context {
	return m.context
}

// Ping simulates a Redis Ping operation.
func (m *MockRedisClient) Ping() error {
	log.Debug().Msg("[MockRedisClient] Ping successful")
	return nil
}
