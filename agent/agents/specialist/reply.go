package specialist

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	contractx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/contract"
)

// musicReply keeps the preference fields as pointers so an explicit empty
// object is told apart from an absent key.
type musicReply struct {
	Response         string                 `json:"response"`
	MusicPreferences *contractx.Preferences `json:"music_preferences,omitempty"`
	Preferences      *contractx.Preferences `json:"preferences,omitempty"`
}

// preferences returns the reply's preference document and whether one was
// present, preferring music_preferences over the generic key.
func (r musicReply) preferences() (contractx.Preferences, bool) {
	switch {
	case r.MusicPreferences != nil:
		return r.MusicPreferences.Clone(), true
	case r.Preferences != nil:
		return r.Preferences.Clone(), true
	default:
		return nil, false
	}
}

type invoiceReply struct {
	Response  string `json:"response"`
	Sensitive bool   `json:"sensitive"`
}

// decodeReply extracts the JSON object of a model reply. Markdown fences and
// surrounding prose are dropped and near-JSON is repaired before giving up.
func decodeReply[T any](content string) (T, error) {
	var out T

	payload := extractObject(stripFences(content))
	if payload == "" {
		return out, fmt.Errorf("%w: reply has no JSON object", contractx.ErrSchemaViolation)
	}

	if err := json.Unmarshal([]byte(payload), &out); err == nil {
		return out, nil
	}

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return out, fmt.Errorf("%w: reply is not valid JSON: %v", contractx.ErrSchemaViolation, err)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return out, fmt.Errorf("%w: reply is not valid JSON: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // language tag
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, '}')
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}
