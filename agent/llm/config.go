package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Multi-Agent-Support/pkg/openrouter"
)

const (
	BackendEino   = "eino"
	BackendOpenAI = "openai"

	defaultMaxToolRounds = 4
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	// Backend selects the completion client: "eino" or "openai".
	Backend       string `envconfig:"BACKEND" split_words:"true" default:"eino"`
	MaxToolRounds int    `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"4"`

	SupervisorModel       string  `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	MusicModel            string  `envconfig:"MUSIC_MODEL" split_words:"true"`
	InvoiceModel          string  `envconfig:"INVOICE_MODEL" split_words:"true"`
	SupervisorTemperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"0"`
	MusicTemperature      float32 `envconfig:"MUSIC_TEMPERATURE" split_words:"true" default:"-1"`
	InvoiceTemperature    float32 `envconfig:"INVOICE_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.ResolveBackend() {
	case BackendEino, BackendOpenAI:
	default:
		return fmt.Errorf("%w: unknown llm backend %q", contractx.ErrValidation, c.Backend)
	}
	return nil
}

func (c Config) ResolveBackend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendEino
	}
	return b
}

func (c Config) ToolRounds() int {
	if c.MaxToolRounds <= 0 {
		return defaultMaxToolRounds
	}
	return c.MaxToolRounds
}

// OpenRouterFor resolves the model settings of one agent, falling back to the
// shared defaults. A negative per-agent temperature means "use the default".
func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch agentType {
	case contractx.AgentTypeSupervisor:
		if v := strings.TrimSpace(c.SupervisorModel); v != "" {
			modelName = v
		}
		if c.SupervisorTemperature >= 0 {
			temp = c.SupervisorTemperature
		}
	case contractx.AgentTypeMusic:
		if v := strings.TrimSpace(c.MusicModel); v != "" {
			modelName = v
		}
		if c.MusicTemperature >= 0 {
			temp = c.MusicTemperature
		}
	case contractx.AgentTypeInvoice:
		if v := strings.TrimSpace(c.InvoiceModel); v != "" {
			modelName = v
		}
		if c.InvoiceTemperature >= 0 {
			temp = c.InvoiceTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
