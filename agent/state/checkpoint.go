package state

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCheckpointNotFound = errors.New("checkpoint not found")
	ErrNilCheckpoint      = errors.New("checkpoint is nil")
	ErrInvalidThread      = errors.New("thread id is empty")
)

// Checkpoint is the latest snapshot of one conversation thread.
// Only one snapshot per thread is kept; Save replaces the previous one.
type Checkpoint struct {
	ThreadID       string         `json:"thread_id"`
	CustomerID     string         `json:"customer_id,omitempty"`
	Agent          string         `json:"agent,omitempty"`
	Classification string         `json:"classification,omitempty"`
	Turn           int            `json:"turn"`
	Values         map[string]any `json:"values,omitempty"` // opaque partial state
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewCheckpoint(threadID, customerID string, now time.Time) *Checkpoint {
	return &Checkpoint{
		ThreadID:   threadID,
		CustomerID: customerID,
		Values:     make(map[string]any, 4),
		UpdatedAt:  now.UTC(),
	}
}

func (c *Checkpoint) Touch(now time.Time) {
	c.UpdatedAt = now.UTC()
}

// EnsureValues makes sure c.Values is initialized.
func (c *Checkpoint) EnsureValues() {
	if c.Values == nil {
		c.Values = make(map[string]any, 4)
	}
}

func (c *Checkpoint) Set(key string, val any) {
	c.EnsureValues()
	c.Values[key] = val
}

// Advance records a completed turn handled by agent.
func (c *Checkpoint) Advance(agent, classification string, now time.Time) {
	c.Agent = agent
	c.Classification = classification
	c.Turn++
	c.Touch(now)
}

func (c *Checkpoint) Validate() error {
	if c == nil {
		return ErrNilCheckpoint
	}
	if strings.TrimSpace(c.ThreadID) == "" {
		return ErrInvalidThread
	}
	if c.Turn < 0 {
		return errors.New("checkpoint turn must be >= 0")
	}
	return nil
}
