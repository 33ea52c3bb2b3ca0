package prompt

import (
	"errors"
	"strings"
	"testing"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

func TestLoadPromptSetEmbedsEveryAgent(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	for _, agentType := range []contractx.AgentType{
		contractx.AgentTypeSupervisor,
		contractx.AgentTypeMusic,
		contractx.AgentTypeInvoice,
	} {
		text, err := set.For(agentType)
		if err != nil {
			t.Fatalf("For(%s) error = %v", agentType, err)
		}
		if text != strings.TrimSpace(text) {
			t.Fatalf("prompt for %s is not trimmed", agentType)
		}
	}

	if !strings.Contains(set.Music, `"music_preferences"`) {
		t.Fatal("music prompt must describe the reply schema")
	}
	if !strings.Contains(set.Invoice, `"sensitive"`) {
		t.Fatal("invoice prompt must describe the reply schema")
	}
}

func TestPromptSetForMissing(t *testing.T) {
	t.Parallel()

	_, err := PromptSet{}.For(contractx.AgentTypeMusic)
	if !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("expected ErrPromptMissing, got %v", err)
	}
}
