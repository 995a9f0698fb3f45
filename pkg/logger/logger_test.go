package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestInit_ServiceAndComponent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "custody-registry"})
	log := Component("audit")
	log.Debug().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "custody-registry" || entry["component"] != "audit" {
		t.Fatalf("missing fields in %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{"": "info", "WARNING": "warn", " trace ": "trace", "bogus": "info"}
	for in, want := range cases {
		if got := parseLevel(in).String(); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
