package supervisornode

import (
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

const rephraseSuggestion = "Please rephrase your query to be more specific about music or billing information."

// UnknownQuery is the routing error for a query no agent serves. cause is the
// classifier failure, if any.
func UnknownQuery(classification contractx.QueryClassification, cause error) *contractx.RoutingError {
	out := &contractx.RoutingError{
		Message:    "Unknown query type: " + classification.String(),
		Suggestion: rephraseSuggestion,
		Code:       contractx.ErrorKindClassificationAmbiguous,
	}
	if cause != nil {
		out.Detail = cause.Error()
	}
	return out
}
