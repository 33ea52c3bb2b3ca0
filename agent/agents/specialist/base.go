package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	statex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/state"
)

const (
	valueLastTurn    = "last_turn"
	valueToolResults = "tool_results"
)

// base carries the store handles shared by every agent.
type base struct {
	agentType     contractx.AgentType
	data          contractx.DataService
	completer     contractx.Completer
	profiles      memoryx.Store
	checkpoints   statex.Store
	namespace     string
	mergeProfiles bool
	now           func() time.Time
}

// readProfile returns the stored preferences of customerID. A missing
// profile and a failing store both read as empty.
func (b *base) readProfile(ctx context.Context, customerID string) contractx.Preferences {
	if b.profiles == nil || strings.TrimSpace(customerID) == "" {
		return contractx.Preferences{}
	}

	prefs, err := b.profiles.Get(ctx, b.namespace, customerID)
	switch {
	case err == nil:
		return prefs
	case errors.Is(err, memoryx.ErrProfileNotFound):
		return contractx.Preferences{}
	default:
		log.Warn().
			Err(err).
			Str("agent", string(b.agentType)).
			Str("customer_id", customerID).
			Msg("profile read failed, continuing with empty profile")
		return contractx.Preferences{}
	}
}

// writeProfile replaces the stored profile, or unions into it when the merge
// policy is on, and returns what is now stored.
func (b *base) writeProfile(ctx context.Context, customerID string, prefs contractx.Preferences) (contractx.Preferences, error) {
	if b.profiles == nil {
		return nil, fmt.Errorf("%w: profile store is not configured", contractx.ErrValidation)
	}
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}

	if b.mergeProfiles {
		return b.profiles.Update(ctx, b.namespace, customerID, func(current contractx.Preferences) contractx.Preferences {
			return current.Merge(prefs)
		})
	}

	stored := prefs.Clone()
	if err := b.profiles.Put(ctx, b.namespace, customerID, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// loadCheckpoint returns the thread's checkpoint, a fresh one when there is
// none or it belongs to another customer, or nil for single-turn requests.
func (b *base) loadCheckpoint(ctx context.Context, req contractx.Request) *statex.Checkpoint {
	threadID := strings.TrimSpace(req.ThreadID)
	if b.checkpoints == nil || threadID == "" {
		return nil
	}

	fresh := statex.NewCheckpoint(threadID, req.CustomerID, b.now())
	cp, err := b.checkpoints.Load(ctx, threadID)
	switch {
	case errors.Is(err, statex.ErrCheckpointNotFound):
		return fresh
	case err != nil:
		log.Warn().
			Err(err).
			Str("agent", string(b.agentType)).
			Str("thread_id", threadID).
			Msg("checkpoint load failed, starting fresh")
		return fresh
	}

	if cp.CustomerID != "" && req.CustomerID != "" && cp.CustomerID != req.CustomerID {
		log.Warn().
			Str("agent", string(b.agentType)).
			Str("thread_id", threadID).
			Msg("checkpoint belongs to another customer, starting fresh")
		return fresh
	}
	if cp.CustomerID == "" {
		cp.CustomerID = req.CustomerID
	}
	return cp
}

// saveCheckpoint records the completed turn. Failures are logged only.
func (b *base) saveCheckpoint(ctx context.Context, cp *statex.Checkpoint, req contractx.Request, classification contractx.QueryClassification, response string, results []contractx.ToolResult) {
	if cp == nil {
		return
	}

	cp.Set(valueLastTurn, map[string]any{
		"query":    req.Query,
		"response": response,
	})
	if len(results) > 0 {
		cp.Set(valueToolResults, results)
	} else {
		delete(cp.Values, valueToolResults)
	}
	cp.Advance(string(b.agentType), classification.String(), b.now())

	if err := b.checkpoints.Save(ctx, cp); err != nil {
		log.Warn().
			Err(err).
			Str("agent", string(b.agentType)).
			Str("thread_id", cp.ThreadID).
			Msg("checkpoint save failed")
	}
}

// completionContext seeds the completion context with the previous turn of
// the thread, if any.
func completionContext(cp *statex.Checkpoint) map[string]any {
	out := make(map[string]any, 2)
	if cp != nil && cp.Turn > 0 {
		if prev, ok := cp.Values[valueLastTurn]; ok {
			out["previous_turn"] = prev
		}
	}
	return out
}

func processingError(err error) *contractx.DomainError {
	return contractx.NewDomainError(contractx.ErrorKindCollaboratorFailure, "Error processing query: "+err.Error())
}

func queryRequired() *contractx.DomainError {
	return contractx.NewDomainError(contractx.ErrorKindValidation, "Query is required")
}
