package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestInitWithWriter_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	Info("batch flushed", "count", 3)

	out := buf.String()
	if !strings.Contains(out, "batch flushed") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Errorf("output %q missing structured field", out)
	}
}

func TestInitWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json", false)

	Info("delete issued", "shape", "by-ids")

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", buf.String(), err)
	}
	if decoded["msg"] != "delete issued" {
		t.Errorf("msg = %v, want %q", decoded["msg"], "delete issued")
	}
	if decoded["shape"] != "by-ids" {
		t.Errorf("shape = %v, want %q", decoded["shape"], "by-ids")
	}
}

func TestSetLevel_FiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text", false)

	Info("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at WARN level for Info(), got %q", buf.String())
	}

	Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected Warn() output, got %q", buf.String())
	}
}

func TestSetLevel_InvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	SetLevel("NOT-A-LEVEL")

	Debug("still suppressed")
	if buf.Len() != 0 {
		t.Fatalf("invalid SetLevel should not have lowered the threshold, got %q", buf.String())
	}
}

func TestSetFormat_InvalidFormatIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text", false)

	SetFormat("xml")
	Info("plain text still")

	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("expected text format to be retained, got %q", buf.String())
	}
}
