package supervisornode

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

func FinalizeReply(in *GraphState, nowFn func() time.Time) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if in.Response == nil {
		return GraphOutput{}, fmt.Errorf("%w: no response was produced", contractx.ErrValidation)
	}

	phase := PhaseCompleted
	evt := log.Info()
	if msg := contractx.ErrorMessage(in.Response); msg != "" {
		phase = PhaseFailed
		evt = log.Warn().Str("error", msg)
	}
	evt.Str("phase", phase).
		Str("classification", in.Classification.String()).
		Str("agent", string(in.Agent)).
		Str("thread_id", in.Request.ThreadID).
		Dur("elapsed", nowFn().Sub(in.Now)).
		Msg("request finished")

	return GraphOutput{
		Classification: in.Classification,
		Agent:          in.Agent,
		Response:       in.Response,
	}, nil
}
