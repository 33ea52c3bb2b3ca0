package supervisornode

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

// Phases of one orchestration cycle, logged under the "phase" field.
const (
	PhaseReceived   = "received"
	PhaseClassified = "classified"
	PhaseDispatched = "dispatched"
	PhaseCompleted  = "completed"
	PhaseFailed     = "failed"
)

type GraphInput struct {
	Request contractx.Request
}

type GraphOutput struct {
	Classification contractx.QueryClassification
	Agent          contractx.AgentType
	Response       contractx.Response
}

type GraphState struct {
	Request contractx.Request
	Now     time.Time

	Classification contractx.QueryClassification
	ClassifyErr    error

	Agent    contractx.AgentType
	Response contractx.Response
}

// Rejected reports whether the request was answered before classification.
func (s *GraphState) Rejected() bool {
	return s != nil && s.Response != nil
}

// ValidateRequest normalizes the request. An empty query is answered right
// away with a validation error instead of failing the graph.
func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	req := contractx.Request{
		Query:      strings.TrimSpace(in.Request.Query),
		CustomerID: strings.TrimSpace(in.Request.CustomerID),
		ThreadID:   strings.TrimSpace(in.Request.ThreadID),
	}

	st := &GraphState{
		Request: req,
		Now:     nowFn().UTC(),
	}

	log.Info().
		Str("phase", PhaseReceived).
		Str("customer_id", req.CustomerID).
		Str("thread_id", req.ThreadID).
		Msg("request received")

	if req.Query == "" {
		st.Response = contractx.NewDomainError(contractx.ErrorKindValidation, "Query is required")
	}
	return st, nil
}
