package llms

import (
	"testing"
)

func TestNormalize_JSONObject(t *testing.T) {
	out := Normalize(`{"answer": "take it with food", "confidence": 0.9}`)
	if out.Fields == nil {
		t.Fatal("Expected structured output for a JSON object reply")
	}
	if out.Fields["answer"] != "take it with food" {
		t.Errorf("Expected answer field, got %q", out.Fields["answer"])
	}
	if out.Fields["confidence"] != "0.9" {
		t.Errorf("Expected stringified confidence, got %q", out.Fields["confidence"])
	}
}

func TestNormalize_JSONObjectWithWhitespace(t *testing.T) {
	out := Normalize("\n  {\"response\": \"ok\"}  ")
	if out.Fields == nil {
		t.Fatal("Expected structured output despite surrounding whitespace")
	}
	if out.Fields["response"] != "ok" {
		t.Errorf("Expected response field, got %q", out.Fields["response"])
	}
}

func TestNormalize_PlainText(t *testing.T) {
	out := Normalize("Aspirin is a common pain reliever.")
	if out.Fields != nil {
		t.Fatal("Expected plain output for free text")
	}
	if out.Text != "Aspirin is a common pain reliever." {
		t.Errorf("Text not carried through, got %q", out.Text)
	}
}

func TestNormalize_MalformedJSONIsPlainText(t *testing.T) {
	raw := `{"answer": truncated`
	out := Normalize(raw)
	if out.Fields != nil {
		t.Fatal("Malformed JSON must not be treated as structured")
	}
	if out.Text != raw {
		t.Errorf("Expected raw text preserved, got %q", out.Text)
	}
}

func TestNormalize_EmptyString(t *testing.T) {
	out := Normalize("")
	if out.Fields != nil {
		t.Fatal("Expected plain output for empty reply")
	}
	if out.Text != "" {
		t.Errorf("Expected empty text, got %q", out.Text)
	}
}
