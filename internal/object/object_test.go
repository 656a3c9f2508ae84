package object

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestClaimHash_IgnoresMetadata(t *testing.T) {
	a := &Claim{
		Content:            "Water boils at 100C at sea level",
		Domain:             "physics",
		DeclaredConfidence: 0.9,
		CreatedAt:          "2024-01-01T00:00:00Z",
	}
	b := &Claim{
		Content:            "Water boils at 100C at sea level",
		Domain:             "physics",
		DeclaredConfidence: 0.1,
		CreatedAt:          "2025-06-15T12:34:56Z",
	}

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hb, err := b.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if ha != hb {
		t.Errorf("claims with same content/domain should share an address: %s vs %s", ha, hb)
	}
	if len(ha) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(ha))
	}
}

func TestClaimHash_DomainChangesAddress(t *testing.T) {
	a := &Claim{Content: "The sky is blue", Domain: "physics"}
	b := &Claim{Content: "The sky is blue", Domain: "poetry"}

	ha, _ := a.Hash()
	hb, _ := b.Hash()
	if ha == hb {
		t.Error("different domains must yield different addresses")
	}
}

func TestClaimAndAxiomHashDiffer(t *testing.T) {
	c := &Claim{Content: "x", Domain: "d"}
	a := &Axiom{Content: "x", Domain: "d"}

	hc, _ := c.Hash()
	ha, _ := a.Hash()
	if hc == ha {
		t.Error("type tag must be part of identity")
	}
}

func TestVerificationHash_ResultOrderIndependent(t *testing.T) {
	r1 := ValidatorResult{Validator: "GPT", Confidence: 0.9, Status: StatusOK}
	r2 := ValidatorResult{Validator: "CLAUDE", Confidence: 0.7, Status: StatusOK}

	a := &Verification{
		ClaimHash: strings.Repeat("a", 64),
		Results:   []ValidatorResult{r1, r2},
		Consensus: 0.8,
		Threshold: 0.66,
		Quorum:    2,
		QuorumMet: true,
		Passed:    true,
		Timestamp: "2024-01-01T00:00:00Z",
	}
	b := &Verification{
		ClaimHash: a.ClaimHash,
		Results:   []ValidatorResult{r2, r1},
		Consensus: 0.8,
		Threshold: 0.66,
		Quorum:    2,
		QuorumMet: true,
		Passed:    true,
		Timestamp: "2024-01-01T00:00:00Z",
	}

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	hb, _ := b.Hash()
	if ha != hb {
		t.Error("result arrival order must not change the address")
	}

	// normalized must not mutate the original
	if a.Results[0].Validator != "GPT" {
		t.Error("hashing mutated the receiver's result order")
	}
}

func TestVerificationHash_OutcomeChangesAddress(t *testing.T) {
	base := Verification{
		ClaimHash: strings.Repeat("b", 64),
		Results:   []ValidatorResult{{Validator: "GPT", Confidence: 0.9, Status: StatusOK}},
		Consensus: 0.9,
		Threshold: 0.66,
		Quorum:    1,
		QuorumMet: true,
		Passed:    true,
		Timestamp: "2024-01-01T00:00:00Z",
	}
	flipped := base
	flipped.Passed = false

	ha, _ := base.Hash()
	hb, _ := flipped.Hash()
	if ha == hb {
		t.Error("verification identity must cover the outcome")
	}
}

func TestConfidenceJSON(t *testing.T) {
	cases := []struct {
		in   Confidence
		want string
	}{
		{0.8, `"0.8000"`},
		{0.66, `"0.6600"`},
		{1, `"1.0000"`},
		{0, `"0.0000"`},
		{0.1234, `"0.1234"`},
		{0.25, `"0.2500"`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.in)
		if err != nil {
			t.Fatalf("marshal %v: %v", float64(tc.in), err)
		}
		if string(data) != tc.want {
			t.Errorf("marshal %v: got %s, want %s", float64(tc.in), data, tc.want)
		}
	}
}

func TestConfidenceUnmarshal_StringAndNumber(t *testing.T) {
	var fromString Confidence
	if err := json.Unmarshal([]byte(`"0.8000"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	var fromNumber Confidence
	if err := json.Unmarshal([]byte(`0.8`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if fromString != fromNumber {
		t.Errorf("string and number forms disagree: %v vs %v", fromString, fromNumber)
	}

	var bad Confidence
	if err := json.Unmarshal([]byte(`"not-a-number"`), &bad); err == nil {
		t.Error("expected error for non-numeric string")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	claim := &Claim{
		Content:            "Go maps are not safe for concurrent writes",
		Domain:             "software",
		DeclaredConfidence: 0.95,
		CreatedAt:          Now(),
	}
	data, err := Encode(claim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(TypeClaim, data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(*Claim)
	if got.Content != claim.Content || got.Domain != claim.Domain {
		t.Errorf("round trip lost fields: %+v", got)
	}

	h1, _ := claim.Hash()
	h2, _ := got.Hash()
	if h1 != h2 {
		t.Error("round trip changed the address")
	}
}

func TestEncodeIsCanonical(t *testing.T) {
	claim := &Claim{Content: "c", Domain: "d", DeclaredConfidence: 0.5, CreatedAt: "2024-01-01T00:00:00Z"}
	a, err := Encode(claim)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, _ := Encode(claim)
	if string(a) != string(b) {
		t.Error("encoding is not deterministic")
	}
	// JCS output carries no insignificant whitespace
	if strings.Contains(string(a), ": ") {
		t.Errorf("expected canonical JSON, got %s", a)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode(Type("blob"), []byte(`{}`)); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestContextHash_IgnoresLabel(t *testing.T) {
	a := &Context{Members: []string{"m1", "m2"}, Label: "one"}
	b := &Context{Members: []string{"m1", "m2"}, Label: "two"}
	c := &Context{Members: []string{"m2", "m1"}, Label: "one"}

	ha, _ := a.Hash()
	hb, _ := b.Hash()
	hc, _ := c.Hash()
	if ha != hb {
		t.Error("label is metadata, must not change the address")
	}
	if ha == hc {
		t.Error("member order is identity, must change the address")
	}
}

func TestClamp(t *testing.T) {
	if Clamp(1.5) != 1.0 {
		t.Error("expected clamp to 1.0")
	}
	if Clamp(-0.5) != 0.0 {
		t.Error("expected clamp to 0.0")
	}
	nan := Clamp(nanValue())
	if nan == nan {
		t.Error("NaN must pass through, not become a score")
	}
}

func TestQuantize(t *testing.T) {
	if got := Quantize(0.65996); got != 0.66 {
		t.Errorf("expected 0.66, got %v", got)
	}
	if got := Quantize(0.65992); got != 0.6599 {
		t.Errorf("expected 0.6599, got %v", got)
	}
	if got := Quantize(0.25); got != 0.25 {
		t.Errorf("exact values must be unchanged, got %v", got)
	}
	nan := Quantize(nanValue())
	if nan == nan {
		t.Error("NaN must pass through, not become a score")
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}
