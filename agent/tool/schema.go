package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

// ToolInfos describes tools for eino chat models. All parameters are
// required strings.
func ToolInfos(tools []contractx.ToolDescriptor) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		params := make(map[string]*schema.ParameterInfo, len(t.Params))
		for _, p := range t.Params {
			params[p.Name] = &schema.ParameterInfo{Type: schema.String, Desc: p.Desc, Required: true}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        t.Name,
			Desc:        t.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// OpenAIFunctions describes tools for the OpenAI chat completions API.
func OpenAIFunctions(tools []contractx.ToolDescriptor) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]any, len(t.Params))
		required := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			properties[p.Name] = map[string]any{
				"type":        "string",
				"description": p.Desc,
			}
			required = append(required, p.Name)
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return out
}

// DecodeArguments parses a tool call's JSON arguments, repairing near-JSON
// such as trailing commas or single quotes.
func DecodeArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tool arguments: %v", contractx.ErrSchemaViolation, err)
	}
	args = map[string]any{}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("%w: invalid tool arguments: %v", contractx.ErrSchemaViolation, err)
	}
	return args, nil
}
