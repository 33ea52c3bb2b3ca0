package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	toolx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/tool"
)

var _ contractx.Completer = (*EinoCompleter)(nil)

// EinoCompleter completes requests with one eino chat model per agent type.
type EinoCompleter struct {
	models    map[contractx.AgentType]einomodel.ToolCallingChatModel
	maxRounds int
}

func NewEinoCompleter(models map[contractx.AgentType]einomodel.ToolCallingChatModel, maxRounds int) (*EinoCompleter, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("%w: at least one chat model is required", contractx.ErrValidation)
	}
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	return &EinoCompleter{models: models, maxRounds: maxRounds}, nil
}

// NewEinoCompleterFromConfig builds an OpenRouter chat model for every agent type.
func NewEinoCompleterFromConfig(ctx context.Context, cfg Config) (*EinoCompleter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	agents := []contractx.AgentType{
		contractx.AgentTypeSupervisor,
		contractx.AgentTypeMusic,
		contractx.AgentTypeInvoice,
	}
	models := make(map[contractx.AgentType]einomodel.ToolCallingChatModel, len(agents))
	for _, agentType := range agents {
		modelCfg := cfg.OpenRouterFor(agentType)
		m, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		models[agentType] = m
	}
	return NewEinoCompleter(models, cfg.ToolRounds())
}

func (c *EinoCompleter) Complete(ctx context.Context, req contractx.CompletionRequest) (contractx.Completion, error) {
	chatModel, ok := c.models[req.Agent]
	if !ok {
		return contractx.Completion{}, fmt.Errorf("%w: no chat model for agent=%s", contractx.ErrModelInvoke, req.Agent)
	}

	if len(req.Tools) > 0 {
		bound, err := chatModel.WithTools(toolx.ToolInfos(req.Tools))
		if err != nil {
			return contractx.Completion{}, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, req.Agent, err)
		}
		chatModel = bound
	}

	messages, err := renderMessages(ctx, req)
	if err != nil {
		return contractx.Completion{}, err
	}

	exec := toolx.NewExecutor(req.Tools)
	var results []contractx.ToolResult

	for round := 0; ; round++ {
		msg, err := chatModel.Generate(ctx, messages)
		if err != nil {
			return contractx.Completion{}, fmt.Errorf("%w: agent=%s: %v", contractx.ErrModelInvoke, req.Agent, err)
		}
		if msg == nil {
			return contractx.Completion{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
		}

		if len(msg.ToolCalls) == 0 {
			return contractx.Completion{
				Content:     strings.TrimSpace(msg.Content),
				ToolResults: results,
			}, nil
		}
		if round >= c.maxRounds {
			return contractx.Completion{}, fmt.Errorf("%w: agent=%s exceeded %d tool rounds", contractx.ErrModelInvoke, req.Agent, c.maxRounds)
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			res := runToolCall(ctx, exec, call.Function.Name, call.Function.Arguments)
			log.Debug().
				Str("agent", string(req.Agent)).
				Str("tool", res.Tool).
				Bool("failed", res.Error != "").
				Msg("tool call executed")
			results = append(results, res)
			messages = append(messages, schema.ToolMessage(encodeToolResult(res), call.ID))
		}
	}
}
