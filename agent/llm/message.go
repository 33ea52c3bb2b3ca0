package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
)

// The instruction is a variable rather than template text so braces in
// prompt files are never parsed as placeholders.
var completionTemplate = einoprompt.FromMessages(
	schema.FString,
	schema.SystemMessage("{instruction}"),
	schema.UserMessage("User query: {query}{context}"),
)

// renderMessages formats the system and user turns of a completion. Context
// entries follow the query as one "key: <json>" line each, in key order.
func renderMessages(ctx context.Context, req contractx.CompletionRequest) ([]*schema.Message, error) {
	rendered, err := renderContext(req.Context)
	if err != nil {
		return nil, err
	}

	messages, err := completionTemplate.Format(ctx, map[string]any{
		"instruction": req.Instruction,
		"query":       strings.TrimSpace(req.Query),
		"context":     rendered,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: render prompt for agent=%s: %v", contractx.ErrValidation, req.Agent, err)
	}
	return messages, nil
}

func renderContext(values map[string]any) (string, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		raw, err := json.Marshal(values[k])
		if err != nil {
			return "", fmt.Errorf("%w: marshal context %s: %v", contractx.ErrValidation, k, err)
		}
		b.WriteString("\n")
		b.WriteString(k)
		b.WriteString(": ")
		b.Write(raw)
	}
	return b.String(), nil
}

func encodeToolResult(res contractx.ToolResult) string {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprintf(`{"tool":%q,"error":"unencodable result"}`, res.Tool)
	}
	return string(raw)
}

// runToolCall decodes the arguments of one model tool call and executes it.
// Undecodable arguments become a tool error rather than a failed completion.
func runToolCall(ctx context.Context, exec toolx.Executor, name, arguments string) contractx.ToolResult {
	name = strings.TrimSpace(name)
	args, err := toolx.DecodeArguments(arguments)
	if err != nil {
		return contractx.ToolResult{Tool: name, Error: err.Error()}
	}
	return exec(ctx, name, args)
}
