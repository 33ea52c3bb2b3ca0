package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/music.txt
	musicRaw string

	//go:embed template/invoice.txt
	invoiceRaw string
)

// PromptSet holds the instruction of every agent.
type PromptSet struct {
	Supervisor string
	Music      string
	Invoice    string
}

// LoadPromptSet returns the embedded instructions, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor: strings.TrimSpace(supervisorRaw),
		Music:      strings.TrimSpace(musicRaw),
		Invoice:    strings.TrimSpace(invoiceRaw),
	}
}

// For returns the instruction of agentType.
func (p PromptSet) For(agentType contractx.AgentType) (string, error) {
	var out string
	switch agentType {
	case contractx.AgentTypeSupervisor:
		out = p.Supervisor
	case contractx.AgentTypeMusic:
		out = p.Music
	case contractx.AgentTypeInvoice:
		out = p.Invoice
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agentType)
	}
	return out, nil
}
