package specialist

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
)

var _ contractx.Agent = (*InvoiceAgent)(nil)

const (
	msgCustomerIDRequired = "Customer ID is required for invoice information"
	msgInvoiceNoCustomer  = "Customer not found"
)

// InvoiceAgent answers billing questions for a verified customer only.
type InvoiceAgent struct {
	base
	instruction string
	tools       []contractx.ToolDescriptor
}

func (a *InvoiceAgent) Type() contractx.AgentType {
	return contractx.AgentTypeInvoice
}

// Tools describes the invoice lookups. Requests get a copy pinned to the
// verified customer.
func (a *InvoiceAgent) Tools() []contractx.ToolDescriptor {
	return a.tools
}

func (a *InvoiceAgent) ProcessRequest(ctx context.Context, req contractx.Request) contractx.Response {
	if strings.TrimSpace(req.Query) == "" {
		return queryRequired()
	}
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return contractx.NewDomainError(contractx.ErrorKindValidation, msgCustomerIDRequired)
	}

	verification := VerifyCustomer(ctx, a.data, customerID)
	if !verification.Verified {
		if verification.Error == contractx.ErrorKindCustomerNotFound {
			return contractx.NewDomainError(contractx.ErrorKindCustomerNotFound, msgInvoiceNoCustomer)
		}
		return contractx.NewDomainError(contractx.ErrorKindCollaboratorFailure, "Error processing query: "+msgVerificationDegraded)
	}

	// Tools are pinned to the id the data service resolved, so "042" and
	// "42" see the same invoices.
	pinnedID := strconv.FormatInt(verification.CustomerInfo.ID, 10)

	cp := a.loadCheckpoint(ctx, req)
	promptCtx := completionContext(cp)
	promptCtx["customer_info"] = verification.CustomerInfo

	completion, err := a.completer.Complete(ctx, contractx.CompletionRequest{
		Agent:       contractx.AgentTypeInvoice,
		Instruction: a.instruction,
		Query:       req.Query,
		Context:     promptCtx,
		Tools:       toolx.InvoiceTools(a.data, pinnedID),
	})
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.agentType)).Msg("invoice completion failed")
		return processingError(err)
	}

	reply, err := decodeReply[invoiceReply](completion.Content)
	if err != nil {
		log.Error().Err(err).Str("agent", string(a.agentType)).Msg("invoice reply is not decodable")
		return processingError(err)
	}

	out := &contractx.Success{
		Response:  strings.TrimSpace(reply.Response),
		Sensitive: reply.Sensitive,
	}
	a.saveCheckpoint(ctx, cp, req, contractx.ClassificationInvoice, out.Response, completion.ToolResults)
	return out
}

func newInvoiceAgent(b base, instruction string) *InvoiceAgent {
	b.agentType = contractx.AgentTypeInvoice
	return &InvoiceAgent{
		base:        b,
		instruction: instruction,
		tools:       toolx.InvoiceTools(b.data, ""),
	}
}
