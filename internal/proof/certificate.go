// Package proof issues and verifies signed certificates binding a claim to
// a verification outcome. A certificate is self-contained: it verifies
// offline, with no repository access.
package proof

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gowebpki/jcs"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// Algorithm identifies the only signature scheme certificates use.
const Algorithm = "ed25519"

// Verification failure reasons. HashMismatch means the embedded content was
// tampered with; BadSignature means the signer cannot be trusted. Callers
// get to tell the two apart.
const (
	ReasonValid        = "VALID"
	ReasonHashMismatch = "HASH_MISMATCH"
	ReasonBadSignature = "BAD_SIGNATURE"
	ReasonMalformed    = "MALFORMED"
)

// Certificate packages a claim, its verification, and a signature over the
// canonical digest of both. It is a derived artifact, never written to the
// object store.
type Certificate struct {
	Claim        object.Claim        `json:"claim"`
	Verification object.Verification `json:"verification"`
	Signature    string              `json:"signature"`
	PublicKey    string              `json:"public_key"`
	Algorithm    string              `json:"algorithm"`
	IssuedAt     string              `json:"issued_at"`
}

// Result reports a verification outcome with a machine-readable reason.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

// Issue signs the (claim, verification) payload with the private key and
// packages the signature alongside the corresponding public key. It refuses
// to certify a verification that does not reference the given claim.
func Issue(claim *object.Claim, verification *object.Verification, priv ed25519.PrivateKey) (*Certificate, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid signing key length: %d", len(priv))
	}
	claimHash, err := claim.Hash()
	if err != nil {
		return nil, err
	}
	if verification.ClaimHash != claimHash {
		return nil, fmt.Errorf("verification references claim %s, not %s", verification.ClaimHash, claimHash)
	}

	digest, err := payloadDigest(claim, verification)
	if err != nil {
		return nil, err
	}

	pub := priv.Public().(ed25519.PublicKey)
	return &Certificate{
		Claim:        *claim,
		Verification: *verification,
		Signature:    base64.StdEncoding.EncodeToString(ed25519.Sign(priv, digest)),
		PublicKey:    base64.StdEncoding.EncodeToString(pub),
		Algorithm:    Algorithm,
		IssuedAt:     object.Now(),
	}, nil
}

// Verify checks the certificate's hash linkage and signature. Both must
// hold for the certificate to be valid; each failure mode has its own
// reason so "tampered content" and "untrusted signer" stay distinguishable.
func Verify(cert *Certificate) Result {
	if cert.Algorithm != Algorithm {
		return Result{Reason: ReasonMalformed}
	}

	// Hash linkage: the embedded claim must still hash to the address the
	// verification points at.
	claimHash, err := cert.Claim.Hash()
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}
	if cert.Verification.ClaimHash != claimHash {
		return Result{Reason: ReasonHashMismatch}
	}

	pub, err := base64.StdEncoding.DecodeString(cert.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return Result{Reason: ReasonMalformed}
	}
	sig, err := base64.StdEncoding.DecodeString(cert.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return Result{Reason: ReasonMalformed}
	}

	digest, err := payloadDigest(&cert.Claim, &cert.Verification)
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
		return Result{Reason: ReasonBadSignature}
	}
	return Result{Valid: true, Reason: ReasonValid}
}

// Encode renders the certificate as canonical JSON.
func (c *Certificate) Encode() ([]byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal certificate: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize certificate: %w", err)
	}
	return canonical, nil
}

// Compact renders the certificate as a single opaque token: URL-safe base64
// of the canonical JSON document.
func (c *Certificate) Compact() (string, error) {
	data, err := c.Encode()
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Parse accepts either the structured JSON form or the compact token and
// returns the same certificate for both, so downstream verification cannot
// diverge between encodings.
func Parse(input []byte) (*Certificate, error) {
	trimmed := strings.TrimSpace(string(input))
	if trimmed == "" {
		return nil, fmt.Errorf("empty certificate")
	}
	data := []byte(trimmed)
	if trimmed[0] != '{' {
		decoded, err := base64.URLEncoding.DecodeString(trimmed)
		if err != nil {
			// Tokens copied out of JSON transports sometimes arrive
			// standard-base64 encoded.
			decoded, err = base64.StdEncoding.DecodeString(trimmed)
			if err != nil {
				return nil, fmt.Errorf("decode compact certificate: %w", err)
			}
		}
		data = decoded
	}
	var cert Certificate
	if err := json.Unmarshal(data, &cert); err != nil {
		return nil, fmt.Errorf("decode certificate: %w", err)
	}
	return &cert, nil
}

// VerifyToken parses either certificate encoding and verifies it.
// Undecodable input is reported as MALFORMED rather than an error so the
// caller always gets a Result.
func VerifyToken(input []byte) Result {
	cert, err := Parse(input)
	if err != nil {
		return Result{Reason: ReasonMalformed}
	}
	return Verify(cert)
}

// payloadDigest computes the SHA-256 of the canonical (claim, verification)
// document. Signature, public key, and issuance time stay outside the
// signed payload.
func payloadDigest(claim *object.Claim, verification *object.Verification) ([]byte, error) {
	raw, err := json.Marshal(struct {
		Claim        *object.Claim        `json:"claim"`
		Verification *object.Verification `json:"verification"`
	}{claim, verification})
	if err != nil {
		return nil, fmt.Errorf("marshal proof payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize proof payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return sum[:], nil
}
