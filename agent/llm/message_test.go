package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

func TestRenderMessages(t *testing.T) {
	t.Parallel()

	instruction := `Reply with {"response": "...", "music_preferences": {}} only.`
	messages, err := renderMessages(context.Background(), contractx.CompletionRequest{
		Agent:       contractx.AgentTypeMusic,
		Instruction: instruction,
		Query:       "  rock artists?\n",
		Context: map[string]any{
			"user_profile":  contractx.Preferences{"genres": {"Rock"}},
			"previous_turn": map[string]string{"query": "hi"},
		},
	})
	if err != nil {
		t.Fatalf("renderMessages() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected two messages, got %d", len(messages))
	}
	if messages[0].Role != schema.System || messages[0].Content != instruction {
		t.Fatalf("instruction must pass through verbatim, got %#v", messages[0])
	}

	want := "User query: rock artists?\nprevious_turn: {\"query\":\"hi\"}\nuser_profile: {\"genres\":[\"Rock\"]}"
	if messages[1].Role != schema.User || messages[1].Content != want {
		t.Fatalf("user message = %q, want %q", messages[1].Content, want)
	}
}

func TestRenderMessagesRejectsUnencodableContext(t *testing.T) {
	t.Parallel()

	_, err := renderMessages(context.Background(), contractx.CompletionRequest{
		Agent:   contractx.AgentTypeMusic,
		Query:   "q",
		Context: map[string]any{"bad": make(chan int)},
	})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("renderMessages() error = %v, want validation error", err)
	}
}

func TestOpenAIMessagesKeepRoles(t *testing.T) {
	t.Parallel()

	out := openAIMessages([]*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("user"),
	})
	if len(out) != 2 || out[0].OfSystem == nil || out[1].OfUser == nil {
		t.Fatalf("unexpected params: %#v", out)
	}
}
