package contract

import (
	"context"
	"strings"
	"time"
)

type AgentType string

const (
	AgentTypeSupervisor AgentType = "supervisor"
	AgentTypeMusic      AgentType = "music"
	AgentTypeInvoice    AgentType = "invoice"
)

// ProfileNamespace partitions customer preference documents in the profile store.
const ProfileNamespace = "user_profiles"

type Request struct {
	Query      string `json:"query"`
	CustomerID string `json:"customer_id,omitempty"`
	ThreadID   string `json:"thread_id,omitempty"`
}

// QueryClassification is the supervisor's routing label for a query.
type QueryClassification int

const (
	ClassificationUnknown QueryClassification = iota
	ClassificationMusic
	ClassificationInvoice
)

func (c QueryClassification) String() string {
	switch c {
	case ClassificationMusic:
		return "music"
	case ClassificationInvoice:
		return "invoice"
	default:
		return "unknown"
	}
}

// ParseClassification case-folds and trims a raw label. Anything other than
// exactly "music" or "invoice" is ClassificationUnknown.
func ParseClassification(raw string) QueryClassification {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "music":
		return ClassificationMusic
	case "invoice":
		return ClassificationInvoice
	default:
		return ClassificationUnknown
	}
}

// AgentFor returns the agent type that serves a classification.
func (c QueryClassification) AgentFor() (AgentType, bool) {
	switch c {
	case ClassificationMusic:
		return AgentTypeMusic, true
	case ClassificationInvoice:
		return AgentTypeInvoice, true
	default:
		return "", false
	}
}

// Preferences is a customer's long-lived preference document: category -> values.
type Preferences map[string][]string

// Clone returns a deep copy. A nil receiver yields an empty, non-nil document.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Merge unions values per category, keeping first-seen order and dropping
// case-insensitive duplicates.
func (p Preferences) Merge(next Preferences) Preferences {
	out := p.Clone()
	for category, values := range next {
		seen := make(map[string]struct{}, len(out[category])+len(values))
		for _, v := range out[category] {
			seen[strings.ToLower(v)] = struct{}{}
		}
		for _, v := range values {
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out[category] = append(out[category], v)
		}
	}
	return out
}

type ToolParam struct {
	Name string `json:"name"`
	Desc string `json:"description"`
}

// ToolDescriptor is a named domain lookup exposed to the completion call.
type ToolDescriptor struct {
	Name        string
	Description string
	Params      []ToolParam
	Invoke      func(ctx context.Context, args map[string]any) ToolResult
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type CompletionRequest struct {
	Agent       AgentType
	Instruction string
	Query       string
	Context     map[string]any
	Tools       []ToolDescriptor
}

type Completion struct {
	Content     string
	ToolResults []ToolResult
}

type Album struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Track struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Album     string `json:"album"`
	Purchases int64  `json:"purchases"`
}

type Customer struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

type Invoice struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Date       time.Time `json:"date"`
	Address    string    `json:"address"`
	Total      float64   `json:"total"`
}

type Purchase struct {
	ID    int64     `json:"id"`
	Date  time.Time `json:"date"`
	Total float64   `json:"total"`
}

// Verification is the outcome of a customer lookup performed before sensitive data is revealed.
type Verification struct {
	Verified     bool      `json:"verified"`
	CustomerID   string    `json:"customer_id,omitempty"`
	CustomerInfo *Customer `json:"customer_info,omitempty"`
	Message      string    `json:"message"`
	Error        ErrorKind `json:"error,omitempty"`
}

type ProfileResult struct {
	CustomerID string      `json:"customer_id"`
	Profile    Preferences `json:"profile"`
	Error      string      `json:"error,omitempty"`
}
