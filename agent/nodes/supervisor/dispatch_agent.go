package supervisornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

// Routes is the fixed routing table from classification to agent.
type Routes map[contractx.QueryClassification]contractx.Agent

// NewRoutes binds every routable classification to the agent of its type.
func NewRoutes(agents ...contractx.Agent) Routes {
	byType := make(map[contractx.AgentType]contractx.Agent, len(agents))
	for _, a := range agents {
		if a != nil {
			byType[a.Type()] = a
		}
	}

	routes := make(Routes, 2)
	for _, c := range []contractx.QueryClassification{contractx.ClassificationMusic, contractx.ClassificationInvoice} {
		agentType, _ := c.AgentFor()
		if a, ok := byType[agentType]; ok {
			routes[c] = a
		}
	}
	return routes
}

// Route hands req to the agent bound to classification. Unbound
// classifications yield the unknown-query routing error.
func Route(ctx context.Context, routes Routes, classification contractx.QueryClassification, req contractx.Request, cause error) (contractx.AgentType, contractx.Response) {
	agent, ok := routes[classification]
	if !ok || agent == nil {
		return "", UnknownQuery(classification, cause)
	}

	resp := agent.ProcessRequest(ctx, req)
	if resp == nil {
		return agent.Type(), contractx.NewDomainError(contractx.ErrorKindCollaboratorFailure, "Error processing query: agent returned no response")
	}
	return agent.Type(), resp
}

func DispatchAgent(ctx context.Context, in *GraphState, routes Routes) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	in.Agent, in.Response = Route(ctx, routes, in.Classification, in.Request, in.ClassifyErr)

	log.Info().
		Str("phase", PhaseDispatched).
		Str("classification", in.Classification.String()).
		Str("agent", string(in.Agent)).
		Str("thread_id", in.Request.ThreadID).
		Msg("request dispatched")
	return in, nil
}
