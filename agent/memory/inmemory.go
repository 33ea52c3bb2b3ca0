package memory

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const lockStripes = 64

// InMemoryStore keeps profiles in process memory. Keys hash onto a fixed set
// of lock stripes, so the lock table stays bounded however many customers
// are stored.
type InMemoryStore struct {
	locks    [lockStripes]sync.Mutex
	profiles sync.Map // key -> contractx.Preferences
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func stripeFor(key string) int {
	return int(xxhash.Sum64String(key) % lockStripes)
}

func (s *InMemoryStore) keyLock(key string) *sync.Mutex {
	return &s.locks[stripeFor(key)]
}

func (s *InMemoryStore) Get(_ context.Context, namespace, customerID string) (contractx.Preferences, error) {
	key, err := profileKey(defaultKeyPrefix, namespace, customerID)
	if err != nil {
		return nil, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	v, ok := s.profiles.Load(key)
	if !ok {
		return nil, ErrProfileNotFound
	}
	return v.(contractx.Preferences).Clone(), nil
}

func (s *InMemoryStore) Put(_ context.Context, namespace, customerID string, prefs contractx.Preferences) error {
	key, err := profileKey(defaultKeyPrefix, namespace, customerID)
	if err != nil {
		return err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	s.profiles.Store(key, prefs.Clone())
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, namespace, customerID string, fn UpdateFunc) (contractx.Preferences, error) {
	key, err := profileKey(defaultKeyPrefix, namespace, customerID)
	if err != nil {
		return nil, err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	current := contractx.Preferences{}
	if v, ok := s.profiles.Load(key); ok {
		current = v.(contractx.Preferences).Clone()
	}

	next := fn(current).Clone()
	s.profiles.Store(key, next)
	return next.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, namespace, customerID string) error {
	key, err := profileKey(defaultKeyPrefix, namespace, customerID)
	if err != nil {
		return err
	}

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	s.profiles.Delete(key)
	return nil
}
