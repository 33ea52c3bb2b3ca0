package specialist

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	promptx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/prompt"
	statex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/state"
)

// Deps are the collaborators and store handles shared by all agents.
type Deps struct {
	Data        contractx.DataService
	Completer   contractx.Completer
	Profiles    memoryx.Store
	Checkpoints statex.Store // optional
	Prompts     promptx.PromptSet

	// Namespace partitions profile documents. Defaults to contract.ProfileNamespace.
	Namespace string
	// MergeProfiles unions new preferences into the stored profile instead
	// of replacing it.
	MergeProfiles bool
	Now           func() time.Time
}

type Registry struct {
	music   *MusicAgent
	invoice *InvoiceAgent
}

func (r *Registry) Music() *MusicAgent {
	return r.music
}

func (r *Registry) Invoice() *InvoiceAgent {
	return r.invoice
}

// Agents returns every agent in routing order.
func (r *Registry) Agents() []contractx.Agent {
	return []contractx.Agent{r.music, r.invoice}
}

func NewRegistry(deps Deps) (*Registry, error) {
	if deps.Data == nil {
		return nil, fmt.Errorf("%w: data service is required", contractx.ErrValidation)
	}
	if deps.Completer == nil {
		return nil, fmt.Errorf("%w: completer is required", contractx.ErrValidation)
	}
	if deps.Profiles == nil {
		deps.Profiles = memoryx.NewInMemoryStore()
	}
	if strings.TrimSpace(deps.Namespace) == "" {
		deps.Namespace = contractx.ProfileNamespace
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	musicPrompt, err := deps.Prompts.For(contractx.AgentTypeMusic)
	if err != nil {
		return nil, err
	}
	invoicePrompt, err := deps.Prompts.For(contractx.AgentTypeInvoice)
	if err != nil {
		return nil, err
	}

	b := base{
		data:          deps.Data,
		completer:     deps.Completer,
		profiles:      deps.Profiles,
		checkpoints:   deps.Checkpoints,
		namespace:     deps.Namespace,
		mergeProfiles: deps.MergeProfiles,
		now:           deps.Now,
	}

	return &Registry{
		music:   newMusicAgent(b, musicPrompt),
		invoice: newInvoiceAgent(b, invoicePrompt),
	}, nil
}
