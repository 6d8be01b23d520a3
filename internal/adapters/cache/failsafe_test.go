package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/cache"
)

type stubProvider struct {
	data    map[string][]byte
	failing bool
	sets    int
}

func (s *stubProvider) Get(ctx context.Context, key string) ([]byte, error) {
	if s.failing {
		return nil, errors.New("connection refused")
	}
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return nil, errors.New("key not found: " + key)
}

func (s *stubProvider) Set(ctx context.Context, key string, value []byte, ttl int) error {
	if s.failing {
		return errors.New("connection refused")
	}
	s.sets++
	s.data[key] = value
	return nil
}

func (s *stubProvider) Delete(ctx context.Context, key string) error {
	if s.failing {
		return errors.New("connection refused")
	}
	delete(s.data, key)
	return nil
}

func (s *stubProvider) Exists(ctx context.Context, key string) (bool, error) {
	if s.failing {
		return false, errors.New("connection refused")
	}
	_, ok := s.data[key]
	return ok, nil
}

func TestFailsafeCache_HitAndMiss(t *testing.T) {
	inner := &stubProvider{data: map[string][]byte{"k": []byte("v")}}
	c := cache.NewFailsafeCache(inner, nil)

	value, ok := c.Get(context.Background(), "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), value)

	_, ok = c.Get(context.Background(), "absent")
	assert.False(t, ok)
}

func TestFailsafeCache_ProviderFailureReadsAsMiss(t *testing.T) {
	inner := &stubProvider{failing: true}
	c := cache.NewFailsafeCache(inner, nil)

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.False(t, c.Exists(context.Background(), "k"))

	// Set and Delete must not panic or surface errors
	c.Set(context.Background(), "k", []byte("v"), 60)
	c.Delete(context.Background(), "k")
}

func TestFailsafeCache_NilProviderAlwaysMisses(t *testing.T) {
	c := cache.NewFailsafeCache(nil, nil)

	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.False(t, c.Exists(context.Background(), "k"))
	c.Set(context.Background(), "k", []byte("v"), 60)
	c.Delete(context.Background(), "k")
}

func TestFailsafeCache_SetRoundTrip(t *testing.T) {
	inner := &stubProvider{data: map[string][]byte{}}
	c := cache.NewFailsafeCache(inner, nil)

	c.Set(context.Background(), "k", []byte(`{"a":1}`), 60)
	assert.Equal(t, 1, inner.sets)

	value, ok := c.Get(context.Background(), "k")
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(value))
}
