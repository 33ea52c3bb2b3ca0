package specialist

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	promptx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/prompt"
)

func TestNewRegistryValidatesDeps(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(Deps{Completer: &fakeCompleter{}, Prompts: testPrompts()}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("missing data service: err = %v", err)
	}
	if _, err := NewRegistry(Deps{Data: newTestData(), Prompts: testPrompts()}); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("missing completer: err = %v", err)
	}

	prompts := testPrompts()
	prompts.Invoice = ""
	if _, err := NewRegistry(Deps{Data: newTestData(), Completer: &fakeCompleter{}, Prompts: prompts}); !errors.Is(err, contractx.ErrPromptMissing) {
		t.Fatalf("missing prompt: err = %v", err)
	}
}

func TestRegistryAgents(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Deps{Data: newTestData(), Completer: &fakeCompleter{}, Prompts: promptx.LoadPromptSet()})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	agents := reg.Agents()
	if len(agents) != 2 || agents[0].Type() != contractx.AgentTypeMusic || agents[1].Type() != contractx.AgentTypeInvoice {
		t.Fatalf("unexpected agents: %#v", agents)
	}
	if _, ok := agents[0].(contractx.ProfileAware); !ok {
		t.Fatalf("music agent must be profile-aware")
	}
	if _, ok := agents[1].(contractx.ProfileAware); ok {
		t.Fatalf("invoice agent must not be profile-aware")
	}
}
