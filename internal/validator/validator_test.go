package validator

import (
	"strings"
	"testing"
)

func TestParseJudgment_CleanJSON(t *testing.T) {
	c, reasoning, err := parseJudgment(`{"confidence": 0.85, "reasoning": "well established"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != 0.85 {
		t.Errorf("confidence: got %v", c)
	}
	if reasoning != "well established" {
		t.Errorf("reasoning: got %q", reasoning)
	}
}

func TestParseJudgment_JSONWrappedInProse(t *testing.T) {
	raw := `Sure! Here is my assessment:

{"confidence": 0.6, "reasoning": "partially supported"}

Let me know if you need more detail.`
	c, reasoning, err := parseJudgment(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != 0.6 {
		t.Errorf("confidence: got %v", c)
	}
	if reasoning != "partially supported" {
		t.Errorf("reasoning: got %q", reasoning)
	}
}

func TestParseJudgment_ClampsOutOfRange(t *testing.T) {
	c, _, err := parseJudgment(`{"confidence": 1.8, "reasoning": "overshoot"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != 1.0 {
		t.Errorf("expected clamp to 1.0, got %v", c)
	}

	c, _, err = parseJudgment(`{"confidence": -0.2, "reasoning": "undershoot"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c != 0.0 {
		t.Errorf("expected clamp to 0.0, got %v", c)
	}
}

func TestParseJudgment_MissingConfidenceIsError(t *testing.T) {
	if _, _, err := parseJudgment(`{"reasoning": "no score"}`); err == nil {
		t.Error("missing confidence must be an error, never a 0.0 score")
	}
}

func TestParseJudgment_NoJSON(t *testing.T) {
	if _, _, err := parseJudgment("I cannot comply with this request."); err == nil {
		t.Error("expected error for output without JSON")
	}
}

func TestParseJudgment_EmptyReasoning(t *testing.T) {
	_, reasoning, err := parseJudgment(`{"confidence": 0.5}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if reasoning == "" {
		t.Error("expected a placeholder reasoning")
	}
}

func TestBuildPrompt_DefaultsDomain(t *testing.T) {
	p := buildPrompt("claim text", "")
	if want := "Domain: general"; !strings.Contains(p, want) {
		t.Errorf("expected %q in prompt", want)
	}
	p = buildPrompt("claim text", "physics")
	if want := "Domain: physics"; !strings.Contains(p, want) {
		t.Errorf("expected %q in prompt", want)
	}
}
