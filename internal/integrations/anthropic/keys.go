package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"brandvoice-chat/internal/integrations/paramstore"
)

// ErrAPIKeyNotConfigured is returned by a KeySource when no credential is set.
var ErrAPIKeyNotConfigured = errors.New("anthropic: api key not configured")

// KeySource resolves the provider credential. It is consulted on every request.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// tokenPayload is the optional JSON shape of the SSM parameter value.
type tokenPayload struct {
	Token string `json:"token"`
}

// EnvKeySource reads the key from an environment variable on every call, so a
// missing variable only fails the request that observes it.
type EnvKeySource struct {
	name   string
	lookup func(string) (string, bool)
}

func NewEnvKeySource(name string) *EnvKeySource {
	return &EnvKeySource{name: name, lookup: os.LookupEnv}
}

func (s *EnvKeySource) APIKey(_ context.Context) (string, error) {
	v, _ := s.lookup(s.name)
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrAPIKeyNotConfigured
	}
	return v, nil
}

// ParamStoreKeySource fetches the key from SSM Parameter Store. A successful
// fetch is cached for the lifetime of the process; failures are retried on
// the next call. The fetch runs outside the lock, so concurrent requests on
// a cold cache may each fetch once.
type ParamStoreKeySource struct {
	getter paramstore.Getter
	name   string

	mu     sync.RWMutex
	apiKey string
}

func NewParamStoreKeySource(getter paramstore.Getter, name string) (*ParamStoreKeySource, error) {
	if getter == nil {
		return nil, errors.New("anthropic: paramstore getter must not be nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("anthropic: key parameter name must not be empty")
	}
	return &ParamStoreKeySource{getter: getter, name: name}, nil
}

func (s *ParamStoreKeySource) APIKey(ctx context.Context) (string, error) {
	s.mu.RLock()
	cached := s.apiKey
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	key, err := fetchAPIKeyFromParamStore(ctx, s.getter, s.name)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.apiKey == "" {
		s.apiKey = key
	}
	key = s.apiKey
	s.mu.Unlock()
	return key, nil
}

// fetchAPIKeyFromParamStore accepts either a bare key or {"token":"..."}.
func fetchAPIKeyFromParamStore(ctx context.Context, getter paramstore.Getter, name string) (string, error) {
	raw, err := getter.GetParameter(ctx, name)
	if errors.Is(err, paramstore.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrAPIKeyNotConfigured, err)
	}
	if err != nil {
		return "", fmt.Errorf("anthropic: fetch key from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("anthropic: unmarshal paramstore key value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", ErrAPIKeyNotConfigured
	}
	return raw, nil
}
