package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const defaultUpdateRetries = 16

type RedisConfig struct {
	Addr         string        `envconfig:"ADDR" split_words:"true" default:"localhost:6379"`
	Password     string        `envconfig:"PASSWORD" split_words:"true"`
	DB           int           `envconfig:"DB" split_words:"true" default:"0"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" split_words:"true" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"3s"`
	PoolSize     int           `envconfig:"POOL_SIZE" split_words:"true" default:"10"`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" split_words:"true" default:"support:profile:"`
}

// NewRedisClient dials Redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type RedisOption func(*RedisStore)

func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithUpdateRetries(n int) RedisOption {
	return func(s *RedisStore) {
		if n > 0 {
			s.retries = n
		}
	}
}

// RedisStore keeps each profile as one JSON document. Update runs inside
// WATCH/MULTI and retries when another writer touched the key.
type RedisStore struct {
	client    goredis.UniversalClient
	keyPrefix string
	retries   int
}

func NewRedisStore(client goredis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		retries:   defaultUpdateRetries,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) Get(ctx context.Context, namespace, customerID string) (contractx.Preferences, error) {
	key, err := profileKey(s.keyPrefix, namespace, customerID)
	if err != nil {
		return nil, err
	}
	return readProfile(ctx, s.client, key)
}

func (s *RedisStore) Put(ctx context.Context, namespace, customerID string, prefs contractx.Preferences) error {
	key, err := profileKey(s.keyPrefix, namespace, customerID)
	if err != nil {
		return err
	}
	payload, err := encodePreferences(prefs)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set profile: %w", err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, namespace, customerID string, fn UpdateFunc) (contractx.Preferences, error) {
	key, err := profileKey(s.keyPrefix, namespace, customerID)
	if err != nil {
		return nil, err
	}

	var next contractx.Preferences
	txf := func(tx *goredis.Tx) error {
		current, err := readProfile(ctx, tx, key)
		switch {
		case errors.Is(err, ErrProfileNotFound):
			current = contractx.Preferences{}
		case err != nil:
			return err
		}

		next = fn(current).Clone()
		payload, err := encodePreferences(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.retries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return next.Clone(), nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("redis update profile: %w", err)
	}
	return nil, fmt.Errorf("redis update profile: %w after %d attempts", goredis.TxFailedErr, s.retries)
}

func (s *RedisStore) Delete(ctx context.Context, namespace, customerID string) error {
	key, err := profileKey(s.keyPrefix, namespace, customerID)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete profile: %w", err)
	}
	return nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func readProfile(ctx context.Context, c stringGetter, key string) (contractx.Preferences, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get profile: %w", err)
	}

	prefs := contractx.Preferences{}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return prefs, nil
}

func encodePreferences(prefs contractx.Preferences) ([]byte, error) {
	payload, err := json.Marshal(prefs.Clone())
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return payload, nil
}
