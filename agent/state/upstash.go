package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultThreadKeyPrefix = "support:thread:"
	maxRESTResponseBytes   = 2 << 20
)

var ErrInvalidStoreConfig = errors.New("invalid checkpoint store config")

// RESTError is a command failure reported by the Upstash REST endpoint,
// either as an error payload or a non-2xx status.
type RESTError struct {
	Status  int
	Message string
}

func (e *RESTError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstash status=%d: %s", e.Status, e.Message)
	}
	return "upstash: " + e.Message
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	TTL     time.Duration `envconfig:"TTL" split_words:"true" default:"0s"`
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *UpstashRedisStore) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.keyPrefix = p
		}
	}
}

// WithTTL expires checkpoints after ttl. Zero keeps them until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *UpstashRedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore keeps one JSON snapshot per thread in Upstash Redis,
// talking to its REST endpoint with SET, GET and DEL commands.
type UpstashRedisStore struct {
	endpoint   string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("%w: url %q: %v", ErrInvalidStoreConfig, cfg.URL, err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is required", ErrInvalidStoreConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &UpstashRedisStore{
		endpoint:   endpoint,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultThreadKeyPrefix,
		ttl:        cfg.TTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl < 0 {
		return nil, fmt.Errorf("%w: ttl must be >= 0", ErrInvalidStoreConfig)
	}
	return s, nil
}

func (s *UpstashRedisStore) Load(ctx context.Context, threadID string) (*Checkpoint, error) {
	key, err := s.threadKey(threadID)
	if err != nil {
		return nil, err
	}

	result, err := s.do(ctx, "GET", key)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, ErrCheckpointNotFound
	}

	// GET returns the stored snapshot as a JSON string.
	var snapshot string
	if err := json.Unmarshal(result, &snapshot); err != nil {
		return nil, fmt.Errorf("decode GET result for %s: %w", key, err)
	}
	return decodeCheckpoint([]byte(snapshot))
}

func (s *UpstashRedisStore) Save(ctx context.Context, cp *Checkpoint) error {
	payload, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}
	key, err := s.threadKey(cp.ThreadID)
	if err != nil {
		return err
	}

	args := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		args = append(args, "EX", expirySeconds(s.ttl))
	}
	_, err = s.do(ctx, args...)
	return err
}

func (s *UpstashRedisStore) Delete(ctx context.Context, threadID string) error {
	key, err := s.threadKey(threadID)
	if err != nil {
		return err
	}
	_, err = s.do(ctx, "DEL", key)
	return err
}

func (s *UpstashRedisStore) threadKey(threadID string) (string, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		return "", ErrInvalidThread
	}
	return s.keyPrefix + threadID, nil
}

// do posts one command as a JSON array and returns the raw "result" field.
func (s *UpstashRedisStore) do(ctx context.Context, args ...any) (json.RawMessage, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("encode %v command: %w", args[0], err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %v request: %w", args[0], err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v request: %w", args[0], err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRESTResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %v response: %w", args[0], err)
	}

	var reply struct {
		Result json.RawMessage `json:"result"`
		Error  string          `json:"error"`
	}
	decodeErr := json.Unmarshal(raw, &reply)

	switch {
	case reply.Error != "":
		return nil, &RESTError{Status: statusIfFailed(resp.StatusCode), Message: reply.Error}
	case resp.StatusCode/100 != 2:
		return nil, &RESTError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	case decodeErr != nil:
		return nil, fmt.Errorf("decode %v response: %w", args[0], decodeErr)
	}
	return bytes.TrimSpace(reply.Result), nil
}

func statusIfFailed(code int) int {
	if code/100 == 2 {
		return 0
	}
	return code
}

// expirySeconds rounds ttl up to whole seconds, minimum one.
func expirySeconds(ttl time.Duration) string {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
