package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

func TestConfigOpenRouterForFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{
		APIKey:                "k",
		Model:                 "default",
		Temperature:           0.5,
		MaxCompletionToken:    100,
		MusicModel:            "music-model",
		MusicTemperature:      0.9,
		InvoiceTemperature:    -1,
		SupervisorTemperature: 0,
	}

	music := cfg.OpenRouterFor(contractx.AgentTypeMusic)
	if music.Model != "music-model" || music.Temperature != 0.9 {
		t.Fatalf("unexpected music config: %+v", music)
	}
	invoice := cfg.OpenRouterFor(contractx.AgentTypeInvoice)
	if invoice.Model != "default" || invoice.Temperature != 0.5 {
		t.Fatalf("unexpected invoice config: %+v", invoice)
	}
	supervisor := cfg.OpenRouterFor(contractx.AgentTypeSupervisor)
	if supervisor.Temperature != 0 {
		t.Fatalf("supervisor temperature = %v, want 0", supervisor.Temperature)
	}
	if *supervisor.MaxCompletionToken != 100 {
		t.Fatalf("unexpected max tokens: %d", *supervisor.MaxCompletionToken)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	if err := (Config{Model: "m"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("missing api key error = %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m", Backend: "grpc"}).Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("unknown backend error = %v", err)
	}
	if err := (Config{APIKey: "k", Model: "m", Backend: "OpenAI"}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestConfigToolRoundsDefault(t *testing.T) {
	t.Parallel()

	if got := (Config{}).ToolRounds(); got != 4 {
		t.Fatalf("ToolRounds() = %d, want 4", got)
	}
	if got := (Config{MaxToolRounds: 2}).ToolRounds(); got != 2 {
		t.Fatalf("ToolRounds() = %d, want 2", got)
	}
}
