package memory

import (
	"context"
	"errors"
	"strings"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidKey      = errors.New("profile namespace and customer id are required")
)

const defaultKeyPrefix = "support:profile:"

// Store is the long-term profile store, keyed by (namespace, customer id).
// Profiles never expire; only Delete removes them.
type Store interface {
	Get(ctx context.Context, namespace, customerID string) (contractx.Preferences, error)
	// Put replaces the stored profile.
	Put(ctx context.Context, namespace, customerID string, prefs contractx.Preferences) error
	// Update applies fn atomically to the current profile (empty when absent).
	Update(ctx context.Context, namespace, customerID string, fn UpdateFunc) (contractx.Preferences, error)
	Delete(ctx context.Context, namespace, customerID string) error
}

type UpdateFunc func(current contractx.Preferences) contractx.Preferences

func profileKey(prefix, namespace, customerID string) (string, error) {
	namespace = strings.TrimSpace(namespace)
	customerID = strings.TrimSpace(customerID)
	if namespace == "" || customerID == "" {
		return "", ErrInvalidKey
	}
	return prefix + namespace + ":" + customerID, nil
}
