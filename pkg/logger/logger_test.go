package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		conf Config
		want zerolog.Level
	}{
		{Config{}, zerolog.InfoLevel},
		{Config{Debug: true}, zerolog.DebugLevel},
		{Config{Debug: true, Level: "WARN"}, zerolog.WarnLevel},
		{Config{Level: "nonsense"}, zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := tc.conf.level(); got != tc.want {
			t.Fatalf("level(%+v) = %s, want %s", tc.conf, got, tc.want)
		}
	}
}

func TestNewWritesStructuredJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, Config{Service: "support-test"})
	logger.Debug().Msg("hidden")
	logger.Info().Str("customer_id", "42").Msg("profile updated")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "support-test" || entry["customer_id"] != "42" || entry["message"] != "profile updated" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
	if _, ok := entry["caller"]; !ok {
		t.Fatalf("caller missing: %#v", entry)
	}
}
