package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
)

var (
	_ contractx.Agent        = (*MusicAgent)(nil)
	_ contractx.ProfileAware = (*MusicAgent)(nil)
)

// MusicAgent answers catalog questions and maintains the customer's music
// preferences.
type MusicAgent struct {
	base
	instruction string
	tools       []contractx.ToolDescriptor
}

func (a *MusicAgent) Type() contractx.AgentType {
	return contractx.AgentTypeMusic
}

func (a *MusicAgent) Tools() []contractx.ToolDescriptor {
	return a.tools
}

func (a *MusicAgent) Profile(ctx context.Context, customerID string) (contractx.Preferences, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}
	if a.profiles == nil {
		return contractx.Preferences{}, nil
	}
	prefs, err := a.profiles.Get(ctx, a.namespace, customerID)
	if err != nil {
		if errors.Is(err, memoryx.ErrProfileNotFound) {
			return contractx.Preferences{}, nil
		}
		return nil, err
	}
	return prefs, nil
}

func (a *MusicAgent) UpdateProfile(ctx context.Context, customerID string, prefs contractx.Preferences) error {
	_, err := a.writeProfile(ctx, customerID, prefs)
	return err
}

func (a *MusicAgent) ProcessRequest(ctx context.Context, req contractx.Request) contractx.Response {
	if strings.TrimSpace(req.Query) == "" {
		return queryRequired()
	}

	customerID := strings.TrimSpace(req.CustomerID)
	profile := a.readProfile(ctx, customerID)
	cp := a.loadCheckpoint(ctx, req)

	promptCtx := completionContext(cp)
	promptCtx["user_profile"] = profile

	completion, err := a.completer.Complete(ctx, contractx.CompletionRequest{
		Agent:       contractx.AgentTypeMusic,
		Instruction: a.instruction,
		Query:       req.Query,
		Context:     promptCtx,
		Tools:       a.tools,
	})
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.agentType)).Msg("music completion failed")
		return processingError(err)
	}

	reply, err := decodeReply[musicReply](completion.Content)
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.agentType)).Msg("music reply is not decodable")
		return processingError(err)
	}

	out := &contractx.Success{Response: strings.TrimSpace(reply.Response)}
	if prefs, ok := reply.preferences(); ok {
		out.Preferences = prefs
		if customerID != "" {
			stored, err := a.writeProfile(ctx, customerID, prefs)
			if err != nil {
				log.Error().Err(err).Str("customer_id", customerID).Msg("profile write failed")
				return contractx.NewDomainError(contractx.ErrorKindCollaboratorFailure, "Failed to update user profile: "+err.Error())
			}
			out.Preferences = stored
			log.Debug().Str("customer_id", customerID).Int("categories", len(stored)).Msg("profile updated")
		}
	}

	a.saveCheckpoint(ctx, cp, req, contractx.ClassificationMusic, out.Response, completion.ToolResults)
	return out
}

func newMusicAgent(b base, instruction string) *MusicAgent {
	b.agentType = contractx.AgentTypeMusic
	return &MusicAgent{
		base:        b,
		instruction: instruction,
		tools:       toolx.MusicTools(b.data),
	}
}
