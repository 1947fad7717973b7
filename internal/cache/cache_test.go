package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMiss(t *testing.T) {
	s := New(time.Minute)

	_, ok := s.Get(Key("/dashboard", 1))

	assert.False(t, ok)
}

func TestPutGet(t *testing.T) {
	s := New(time.Minute)
	key := Key("/dashboard", 1)

	s.Put(key, "payload")
	val, ok := s.Get(key)

	assert.True(t, ok)
	assert.Equal(t, "payload", val)
}

func TestExpiry(t *testing.T) {
	s := New(10 * time.Millisecond)
	key := Key("/costs/detailed", 1)
	s.Put(key, "payload")

	time.Sleep(20 * time.Millisecond)

	_, ok := s.Get(key)
	assert.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	s := New(time.Minute)
	key := Key("/recommendations", 1)
	s.Put(key, "payload")

	s.Invalidate(key)

	_, ok := s.Get(key)
	assert.False(t, ok)
}

func TestKeyDistinguishesUsers(t *testing.T) {
	assert.NotEqual(t, Key("/dashboard", 1), Key("/dashboard", 2))
	assert.NotEqual(t, Key("/dashboard", 1), Key("/costs/detailed", 1))
}
