package supervisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	specialistx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/agents/specialist"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	nodex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/nodes/supervisor"
)

const msgInternalFailure = "Error processing query: internal failure"

// Supervisor classifies every request and routes it to exactly one agent.
type Supervisor struct {
	completer   contractx.Completer
	data        contractx.DataService
	instruction string

	agents []contractx.Agent
	routes nodex.Routes

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	completer contractx.Completer,
	data contractx.DataService,
	instruction string,
	agents ...contractx.Agent,
) (*Supervisor, error) {
	if completer == nil {
		return nil, errors.New("completer is required")
	}
	if data == nil {
		return nil, errors.New("data service is required")
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, fmt.Errorf("%w: supervisor instruction", contractx.ErrPromptMissing)
	}
	if len(agents) == 0 {
		return nil, errors.New("at least one agent is required")
	}

	s := &Supervisor{
		completer:   completer,
		data:        data,
		instruction: instruction,
		agents:      agents,
		routes:      nodex.NewRoutes(agents...),
		now:         time.Now,
	}

	graphRunner, err := s.compileProcessRequestGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// ProcessRequest runs one orchestration cycle. It always returns a Response;
// graph errors and panics become a DomainError.
func (s *Supervisor) ProcessRequest(ctx context.Context, req contractx.Request) (resp contractx.Response) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("phase", nodex.PhaseFailed).
				Interface("panic", r).
				Str("thread_id", req.ThreadID).
				Msg("request panicked")
			resp = contractx.NewDomainError(contractx.ErrorKindCollaboratorFailure, msgInternalFailure)
		}
	}()

	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req})
	if err != nil {
		log.Error().
			Err(err).
			Str("phase", nodex.PhaseFailed).
			Str("thread_id", req.ThreadID).
			Msg("supervisor graph failed")
		return contractx.NewDomainError(contractx.KindOf(err), msgInternalFailure)
	}
	return out.Response
}

func (s *Supervisor) Classify(ctx context.Context, query string) (contractx.QueryClassification, error) {
	return nodex.Classify(ctx, s.completer, s.instruction, query)
}

func (s *Supervisor) Dispatch(ctx context.Context, classification contractx.QueryClassification, req contractx.Request) contractx.Response {
	_, resp := nodex.Route(ctx, s.routes, classification, req, nil)
	return resp
}

func (s *Supervisor) VerifyCustomer(ctx context.Context, customerID string) contractx.Verification {
	return specialistx.VerifyCustomer(ctx, s.data, customerID)
}

// PropagateProfile writes prefs through every profile-aware agent.
func (s *Supervisor) PropagateProfile(ctx context.Context, customerID string, prefs contractx.Preferences) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return fmt.Errorf("%w: customer id is required", contractx.ErrValidation)
	}

	var errs []error
	for _, a := range s.agents {
		aware, ok := a.(contractx.ProfileAware)
		if !ok {
			continue
		}
		if err := aware.UpdateProfile(ctx, customerID, prefs); err != nil {
			errs = append(errs, fmt.Errorf("agent=%s: %w", a.Type(), err))
		}
	}
	return errors.Join(errs...)
}

// GetProfile reads the profile through the first profile-aware agent. A
// missing profile is empty, not an error.
func (s *Supervisor) GetProfile(ctx context.Context, customerID string) (out contractx.ProfileResult) {
	customerID = strings.TrimSpace(customerID)
	out = contractx.ProfileResult{CustomerID: customerID, Profile: contractx.Preferences{}}

	defer func() {
		if r := recover(); r != nil {
			out.Profile = nil
			out.Error = fmt.Sprintf("Failed to get user profile: %v", r)
		}
	}()

	for _, a := range s.agents {
		aware, ok := a.(contractx.ProfileAware)
		if !ok {
			continue
		}
		prefs, err := aware.Profile(ctx, customerID)
		if err != nil {
			log.Warn().Err(err).Str("customer_id", customerID).Msg("profile read failed")
			out.Profile = nil
			out.Error = "Failed to get user profile: " + err.Error()
			return out
		}
		if prefs != nil {
			out.Profile = prefs
		}
		return out
	}
	return out
}
