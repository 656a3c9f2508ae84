package proof

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

func testPair(t *testing.T) (*object.Claim, *object.Verification) {
	t.Helper()
	claim := &object.Claim{
		Content:            "The Moon has no permanent atmosphere",
		Domain:             "astronomy",
		DeclaredConfidence: 0.9,
		CreatedAt:          "2024-01-01T00:00:00Z",
	}
	hash, err := claim.Hash()
	if err != nil {
		t.Fatalf("claim hash: %v", err)
	}
	verification := &object.Verification{
		ClaimHash: hash,
		Results: []object.ValidatorResult{
			{Validator: "CLAUDE", Confidence: 0.95, Rationale: "established fact", Status: object.StatusOK},
			{Validator: "GPT", Confidence: 0.92, Rationale: "well documented", Status: object.StatusOK},
		},
		Consensus: 0.935,
		Threshold: 0.66,
		Quorum:    2,
		QuorumMet: true,
		Passed:    true,
		Timestamp: "2024-01-01T00:01:00Z",
	}
	return claim, verification
}

func testKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return kp.Private
}

func TestIssueAndVerify(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	res := Verify(cert)
	if !res.Valid {
		t.Fatalf("expected valid, got %s", res.Reason)
	}
	if res.Reason != ReasonValid {
		t.Errorf("expected reason VALID, got %s", res.Reason)
	}
}

func TestIssue_RejectsUnrelatedVerification(t *testing.T) {
	claim, verification := testPair(t)
	verification.ClaimHash = "deadbeef" + verification.ClaimHash[8:]

	if _, err := Issue(claim, verification, testKey(t)); err == nil {
		t.Error("expected refusal to certify a verification of a different claim")
	}
}

func TestVerify_TamperedClaim(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cert.Claim.Content = "The Moon has a thick atmosphere"
	res := Verify(cert)
	if res.Valid {
		t.Fatal("tampered claim must not verify")
	}
	if res.Reason != ReasonHashMismatch {
		t.Errorf("expected HASH_MISMATCH, got %s", res.Reason)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sig, _ := base64.StdEncoding.DecodeString(cert.Signature)
	sig[0] ^= 0xff
	cert.Signature = base64.StdEncoding.EncodeToString(sig)

	res := Verify(cert)
	if res.Valid {
		t.Fatal("flipped signature must not verify")
	}
	if res.Reason != ReasonBadSignature {
		t.Errorf("expected BAD_SIGNATURE, got %s", res.Reason)
	}
}

func TestVerify_WrongSigner(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Swap in another party's public key; the signature no longer matches.
	other, _ := GenerateKeyPair()
	cert.PublicKey = base64.StdEncoding.EncodeToString(other.Public)

	res := Verify(cert)
	if res.Valid {
		t.Fatal("foreign public key must not verify")
	}
	if res.Reason != ReasonBadSignature {
		t.Errorf("expected BAD_SIGNATURE, got %s", res.Reason)
	}
}

func TestVerify_TamperedOutcome(t *testing.T) {
	claim, verification := testPair(t)
	verification.Passed = false
	verification.Consensus = 0.3
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Upgrade the outcome after signing; the signature covers it.
	cert.Verification.Passed = true
	cert.Verification.Consensus = 0.95

	res := Verify(cert)
	if res.Valid {
		t.Fatal("rewritten outcome must not verify")
	}
	if res.Reason != ReasonBadSignature {
		t.Errorf("expected BAD_SIGNATURE, got %s", res.Reason)
	}
}

func TestVerify_MalformedAlgorithm(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	cert.Algorithm = "rsa"

	res := Verify(cert)
	if res.Valid || res.Reason != ReasonMalformed {
		t.Errorf("expected MALFORMED, got %+v", res)
	}
}

func TestCompactAndStructuredAgree(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	structured, err := cert.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	compact, err := cert.Compact()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}

	resStructured := VerifyToken(structured)
	resCompact := VerifyToken([]byte(compact))
	if resStructured != resCompact {
		t.Errorf("encodings disagree: %+v vs %+v", resStructured, resCompact)
	}
	if !resStructured.Valid {
		t.Errorf("expected both valid, got %s", resStructured.Reason)
	}
}

func TestParse_AcceptsStdBase64Token(t *testing.T) {
	claim, verification := testPair(t)
	cert, err := Issue(claim, verification, testKey(t))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	data, _ := cert.Encode()
	token := base64.StdEncoding.EncodeToString(data)

	res := VerifyToken([]byte(token))
	if !res.Valid {
		t.Errorf("std-base64 token should verify, got %s", res.Reason)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("   "),
		[]byte("!!!not-base64!!!"),
		[]byte(`{"claim": 42}`),
	}
	for _, input := range cases {
		res := VerifyToken(input)
		if res.Valid {
			t.Errorf("garbage %q must not verify", input)
		}
		if res.Reason != ReasonMalformed {
			t.Errorf("garbage %q: expected MALFORMED, got %s", input, res.Reason)
		}
	}
}

func TestKeyPairRoundTrip(t *testing.T) {
	dir := t.TempDir()

	if KeysExist(dir) {
		t.Fatal("fresh dir should have no keys")
	}
	kp, err := LoadOrCreateKeyPair(dir)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !KeysExist(dir) {
		t.Fatal("keys should exist after create")
	}

	loaded, err := LoadKeyPair(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !kp.Private.Equal(loaded.Private) {
		t.Error("loaded private key differs")
	}
	if !kp.Public.Equal(loaded.Public) {
		t.Error("loaded public key differs")
	}

	// second call must load, not regenerate
	again, err := LoadOrCreateKeyPair(dir)
	if err != nil {
		t.Fatalf("load-or-create: %v", err)
	}
	if !kp.Private.Equal(again.Private) {
		t.Error("load-or-create regenerated an existing keypair")
	}
}
