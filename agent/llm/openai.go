package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
	openrouterx "github.com/tanpawarit/Chative-Multi-Agent-Support/pkg/openrouter"
)

var _ contractx.Completer = (*OpenAICompleter)(nil)

type modelSettings struct {
	name        string
	temperature float32
	maxTokens   int
}

// OpenAICompleter talks to an OpenAI-compatible chat completions API directly.
type OpenAICompleter struct {
	client    *openai.Client
	models    map[contractx.AgentType]modelSettings
	maxRounds int
}

func NewOpenAICompleter(cfg Config) (*OpenAICompleter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := openrouterx.NewClient(cfg.OpenRouterFor(contractx.AgentTypeSupervisor))
	if client == nil {
		return nil, fmt.Errorf("%w: openai client requires an api key", contractx.ErrValidation)
	}
	return newOpenAICompleter(client, cfg), nil
}

func newOpenAICompleter(client *openai.Client, cfg Config) *OpenAICompleter {
	models := make(map[contractx.AgentType]modelSettings, 3)
	for _, agentType := range []contractx.AgentType{
		contractx.AgentTypeSupervisor,
		contractx.AgentTypeMusic,
		contractx.AgentTypeInvoice,
	} {
		rc := cfg.OpenRouterFor(agentType)
		ms := modelSettings{name: rc.Model, temperature: rc.Temperature}
		if rc.MaxCompletionToken != nil {
			ms.maxTokens = *rc.MaxCompletionToken
		}
		models[agentType] = ms
	}
	return &OpenAICompleter{
		client:    client,
		models:    models,
		maxRounds: cfg.ToolRounds(),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
	ms, ok := c.models[req.Agent]
	if !ok {
		return contractx.Completion{}, fmt.Errorf("%w: no chat model for agent=%s", contractx.ErrModelInvoke, req.Agent)
	}

	messages, err := renderMessages(ctx, req)
	if err != nil {
		return contractx.Completion{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(ms.name),
		Messages:    openAIMessages(messages),
		Temperature: openai.Float(float64(ms.temperature)),
	}
	if ms.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(ms.maxTokens))
	}
	if len(req.Tools) > 0 {
		params.Tools = toolx.OpenAIFunctions(req.Tools)
	}

	exec := toolx.NewExecutor(req.Tools)
	var results []contractx.ToolResult

	for round := 0; ; round++ {
		resp, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return contractx.Completion{}, fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, req.Agent, err)
		}
		if len(resp.Choices) == 0 {
			return contractx.Completion{}, fmt.Errorf("%w: completion has no choices", contractx.ErrSchemaViolation)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return contractx.Completion{
				Content:     strings.TrimSpace(msg.Content),
				ToolResults: results,
			}, nil
		}
		if round >= c.maxRounds {
			return contractx.Completion{}, fmt.Errorf("%w: agent=%s exceeded %d tool rounds", contractx.ErrModelInvoke, req.Agent, c.maxRounds)
		}

		params.Messages = append(params.Messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			res := runToolCall(ctx, exec, call.Function.Name, call.Function.Arguments)
			log.Debug().
				Str("agent", string(req.Agent)).
				Str("tool", res.Tool).
				Bool("failed", res.Error != "").
				Msg("tool call executed")
			results = append(results, res)
			params.Messages = append(params.Messages, openai.ToolMessage(encodeToolResult(res), call.ID))
		}
	}
}

// openAIMessages converts rendered template messages into request params.
func openAIMessages(messages []*schema.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case schema.System:
			out = append(out, openai.SystemMessage(m.Content))
		case schema.Assistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// NewCompleter builds the completion backend selected by cfg.Backend.
func NewCompleter(ctx context.Context, cfg Config) (contractx.Completer, error) {
	if cfg.ResolveBackend() == BackendOpenAI {
		c, err := NewOpenAICompleter(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := NewEinoCompleterFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
