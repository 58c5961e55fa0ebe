package agent

import "testing"

func TestExtractText_ConcatenatesTextEvents(t *testing.T) {
	stream := `{"type":"step-start"}
{"type":"text","part":{"text":"Hello "}}
{"type":"tool-call","part":{"name":"read"}}
{"type":"text","part":{"text":"world"}}
{"type":"step-finish"}`

	if got := ExtractText(stream); got != "Hello world" {
		t.Errorf("expected %q, got %q", "Hello world", got)
	}
}

func TestExtractText_SkipsMalformedLines(t *testing.T) {
	stream := `not json at all
{"type":"text","part":{"text":"ok"}}
{broken`

	if got := ExtractText(stream); got != "ok" {
		t.Errorf("expected %q, got %q", "ok", got)
	}
}

func TestExtractText_EmptyStream(t *testing.T) {
	if got := ExtractText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
	if got := ExtractText(`{"type":"step-start"}`); got != "" {
		t.Errorf("expected empty string for stream with no text events, got %q", got)
	}
}

func TestExtractText_TrimsSurroundingWhitespace(t *testing.T) {
	stream := `{"type":"text","part":{"text":"\n  answer  \n"}}`
	if got := ExtractText(stream); got != "answer" {
		t.Errorf("expected %q, got %q", "answer", got)
	}
}

func TestExtractText_PreservesOrder(t *testing.T) {
	stream := `{"type":"text","part":{"text":"1"}}
{"type":"text","part":{"text":"2"}}
{"type":"text","part":{"text":"3"}}`
	if got := ExtractText(stream); got != "123" {
		t.Errorf("expected %q, got %q", "123", got)
	}
}

func TestDiagnostic(t *testing.T) {
	out := &RunOutput{Stderr: "  model not found  \n"}
	if got := out.Diagnostic(); got != "model not found" {
		t.Errorf("expected trimmed stderr, got %q", got)
	}

	out = &RunOutput{}
	if got := out.Diagnostic(); got != "unknown agent error" {
		t.Errorf("expected fallback text, got %q", got)
	}
}
