package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
)

func TestInvoiceAgentRequiresCustomerID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeCompleter{replies: []string{`{"response":"never"}`}}, false)

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "What's my billing history?"})
	domainErr, ok := resp.(*contractx.DomainError)
	if !ok {
		t.Fatalf("expected domain error, got %#v", resp)
	}
	if domainErr.Message != "Customer ID is required for invoice information" || domainErr.Code != contractx.ErrorKindValidation {
		t.Fatalf("unexpected error: %#v", domainErr)
	}
	if env.completer.calls() != 0 {
		t.Fatalf("completer called %d times, want 0", env.completer.calls())
	}
	if env.data.callCount() != 0 {
		t.Fatalf("data service called %d times, want 0", env.data.callCount())
	}
}

func TestInvoiceAgentUnknownCustomer(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeCompleter{replies: []string{`{"response":"never"}`}}, false)

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "my invoices", CustomerID: "9999"})
	domainErr, ok := resp.(*contractx.DomainError)
	if !ok || domainErr.Message != "Customer not found" || domainErr.Code != contractx.ErrorKindCustomerNotFound {
		t.Fatalf("unexpected response: %#v", resp)
	}
	if env.completer.calls() != 0 {
		t.Fatalf("completer must not run for an unknown customer")
	}
}

func TestInvoiceAgentDataFailureDuringVerification(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeCompleter{}, false)
	env.data.customerErr = errors.New("connection refused")

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "my invoices", CustomerID: "42"})
	domainErr, ok := resp.(*contractx.DomainError)
	if !ok || domainErr.Code != contractx.ErrorKindCollaboratorFailure {
		t.Fatalf("expected collaborator failure, got %#v", resp)
	}
	if strings.Contains(domainErr.Message, "connection refused") {
		t.Fatalf("internal detail leaked: %q", domainErr.Message)
	}
}

func TestInvoiceAgentScopesToolsToVerifiedCustomer(t *testing.T) {
	t.Parallel()

	var own, foreign contractx.ToolResult
	completer := &fakeCompleter{
		run: func(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
			own = invokeTool(ctx, req, toolx.GetInvoiceDetails, map[string]any{"invoice_id": "98"})
			foreign = invokeTool(ctx, req, toolx.GetInvoiceDetails, map[string]any{"invoice_id": "121"})
			return contractx.Completion{
				Content:     "```json\n{\"response\":\"Invoice 98 totals $3.98.\",\"sensitive\":true}\n```",
				ToolResults: []contractx.ToolResult{own, foreign},
			}, nil
		},
	}
	env := newTestEnv(t, completer, false)

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "show invoice 98 and 121", CustomerID: "42"})
	success, ok := resp.(*contractx.Success)
	if !ok {
		t.Fatalf("expected success, got %#v", resp)
	}
	if success.Response != "Invoice 98 totals $3.98." || !success.Sensitive {
		t.Fatalf("unexpected success: %#v", success)
	}
	if own.Error != "" {
		t.Fatalf("own invoice should resolve, got %#v", own)
	}
	if foreign.Error != "not found" {
		t.Fatalf("foreign invoice should read as not found, got %#v", foreign)
	}

	req := completer.lastRequest()
	info, ok := req.Context["customer_info"].(*contractx.Customer)
	if !ok || info.ID != 42 {
		t.Fatalf("expected verified customer in context, got %#v", req.Context["customer_info"])
	}
	if _, ok := req.Context["user_profile"]; ok {
		t.Fatalf("invoice agent is not profile-aware")
	}
}

func TestInvoiceAgentPinsPurchaseHistory(t *testing.T) {
	t.Parallel()

	var history contractx.ToolResult
	completer := &fakeCompleter{
		run: func(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
			history = invokeTool(ctx, req, toolx.GetPurchaseHistory, map[string]any{"customer_id": "7"})
			return contractx.Completion{Content: `{"response":"No purchases yet."}`}, nil
		},
	}
	env := newTestEnv(t, completer, false)

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "history of customer 7", CustomerID: "42"})
	if _, ok := resp.(*contractx.Success); !ok {
		t.Fatalf("expected success, got %#v", resp)
	}
	if history.Error != "" {
		t.Fatalf("unexpected tool error: %#v", history)
	}
}

func TestInvoiceAgentMalformedReply(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeCompleter{replies: []string{""}}, false)

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "my invoices", CustomerID: "42"})
	domainErr, ok := resp.(*contractx.DomainError)
	if !ok || !strings.HasPrefix(domainErr.Message, "Error processing query: ") {
		t.Fatalf("unexpected response: %#v", resp)
	}
}

func TestInvoiceAgentPinsCanonicalCustomerID(t *testing.T) {
	t.Parallel()

	var data *fakeDataService
	var own, info contractx.ToolResult
	completer := &fakeCompleter{
		run: func(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
			// Only the canonical id resolves from here on.
			data.mu.Lock()
			delete(data.customers, "042")
			data.mu.Unlock()

			own = invokeTool(ctx, req, toolx.GetInvoiceDetails, map[string]any{"invoice_id": "98"})
			info = invokeTool(ctx, req, toolx.GetCustomerInfo, map[string]any{"customer_id": "7"})
			return contractx.Completion{Content: `{"response":"Invoice 98 totals $3.98.","sensitive":true}`}, nil
		},
	}
	env := newTestEnv(t, completer, false)
	data = env.data
	data.customers["042"] = data.customers["42"]

	resp := env.registry.Invoice().ProcessRequest(context.Background(), contractx.Request{Query: "show invoice 98", CustomerID: "042"})
	if _, ok := resp.(*contractx.Success); !ok {
		t.Fatalf("expected success, got %#v", resp)
	}
	if own.Error != "" {
		t.Fatalf("own invoice should resolve for a zero-padded id, got %#v", own)
	}
	if c, ok := info.Result.(*contractx.Customer); !ok || c.ID != 42 {
		t.Fatalf("customer lookup must be pinned to 42, got %#v", info)
	}
}

func TestInvoiceAgentToolsFixedAtConstruction(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, &fakeCompleter{}, false)
	agent := env.registry.Invoice()
	if first, second := agent.Tools(), agent.Tools(); &first[0] != &second[0] {
		t.Fatal("Tools() must return the descriptors built at construction")
	}
	tools := agent.Tools()
	want := []string{toolx.GetCustomerInfo, toolx.GetInvoiceDetails, toolx.GetPurchaseHistory}
	if len(tools) != len(want) {
		t.Fatalf("Tools() len = %d", len(tools))
	}
	for i, tool := range tools {
		if tool.Name != want[i] {
			t.Fatalf("Tools()[%d] = %s, want %s", i, tool.Name, want[i])
		}
	}
}
