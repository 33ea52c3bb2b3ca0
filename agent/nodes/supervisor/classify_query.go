package supervisornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

// Classifier labels a query. Failures still yield ClassificationUnknown.
type Classifier func(ctx context.Context, query string) (contractx.QueryClassification, error)

// Classify asks the completer for a single label with no tools bound.
func Classify(ctx context.Context, completer contractx.Completer, instruction, query string) (contractx.QueryClassification, error) {
	completion, err := completer.Complete(ctx, contractx.CompletionRequest{
		Agent:       contractx.AgentTypeSupervisor,
		Instruction: instruction,
		Query:       query,
	})
	if err != nil {
		return contractx.ClassificationUnknown, fmt.Errorf("classify query: %w", err)
	}
	return contractx.ParseClassification(completion.Content), nil
}

func ClassifyQuery(ctx context.Context, in *GraphState, classify Classifier) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	classification, err := classify(ctx, in.Request.Query)
	if err != nil {
		classification = contractx.ClassificationUnknown
		in.ClassifyErr = err
	}
	in.Classification = classification

	evt := log.Info()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.Str("phase", PhaseClassified).
		Str("classification", classification.String()).
		Str("thread_id", in.Request.ThreadID).
		Msg("query classified")

	return in, nil
}
