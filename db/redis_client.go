package db

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// RedisClient defines the methods available in the RedisClient
type RedisClient interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Del(key string) error
	Keys(pattern string) ([]string, error)

	// Date index: a sorted set of members scored by day number.
	AddToDateIndex(indexKey, member string, score float64) error
	RangeDateIndex(indexKey string, min, max float64) ([]string, error)
	RemoveFromDateIndex(indexKey, member string) error

	GetContext() context.Context
	Ping() error
}
