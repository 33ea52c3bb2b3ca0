package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is the checkpoint persistence contract used by agents.
type Store interface {
	Load(ctx context.Context, threadID string) (*Checkpoint, error)
	Save(ctx context.Context, cp *Checkpoint) error
	Delete(ctx context.Context, threadID string) error
}

// encodeCheckpoint validates cp and renders the JSON snapshot every backend
// persists. UpdatedAt is normalised to UTC.
func encodeCheckpoint(cp *Checkpoint) ([]byte, error) {
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	if cp.UpdatedAt.IsZero() {
		cp.Touch(time.Now())
	} else {
		cp.UpdatedAt = cp.UpdatedAt.UTC()
	}

	payload, err := json.Marshal(cp)
	if err != nil {
		return nil, fmt.Errorf("marshal checkpoint %s: %w", cp.ThreadID, err)
	}
	return payload, nil
}

func decodeCheckpoint(payload []byte) (*Checkpoint, error) {
	var cp Checkpoint
	if err := json.Unmarshal(payload, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	cp.EnsureValues()
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("stored checkpoint is invalid: %w", err)
	}
	return &cp, nil
}
