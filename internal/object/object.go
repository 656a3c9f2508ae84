// Package object defines the content-addressed types stored in a truth
// repository and their canonical encoding.
//
// Every object is immutable and identified by the SHA-256 digest of the
// RFC 8785 (JCS) canonical JSON of its identity payload. Identity payloads
// deliberately exclude metadata: two claims with the same content and domain
// are the same claim, whatever their declared confidence or creation time.
package object

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/gowebpki/jcs"
)

// Type tags a stored object kind. The tag is part of the identity payload,
// so a claim and an axiom with identical content hash differently.
type Type string

const (
	TypeClaim        Type = "claim"
	TypeAxiom        Type = "axiom"
	TypeContext      Type = "context"
	TypeVerification Type = "verification"
)

// Types returns all storable object types.
func Types() []Type {
	return []Type{TypeClaim, TypeAxiom, TypeContext, TypeVerification}
}

// Status reports how a single validator call ended.
type Status string

const (
	StatusOK       Status = "OK"
	StatusFailed   Status = "FAILED"
	StatusTimedOut Status = "TIMED_OUT"
)

// Confidence is a score in [0,1] that serializes as a fixed-precision
// decimal string ("0.8000"). JCS re-normalizes JSON numbers per ES6, so a
// bare float would not survive canonicalization with a stable encoding;
// strings do.
type Confidence float64

// MarshalJSON encodes the confidence with exactly four decimal places.
func (c Confidence) MarshalJSON() ([]byte, error) {
	f := float64(c)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("confidence is not a finite number")
	}
	return json.Marshal(strconv.FormatFloat(f, 'f', 4, 64))
}

// UnmarshalJSON accepts either the fixed-precision string form or a bare
// JSON number (for hand-written input).
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse confidence %q: %w", s, err)
		}
		*c = Confidence(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("confidence must be a number or numeric string")
	}
	*c = Confidence(f)
	return nil
}

// Clamp forces a confidence into [0,1]. NaN is returned unchanged so the
// caller can treat it as a failure instead of silently scoring zero.
func Clamp(f float64) float64 {
	if math.IsNaN(f) {
		return f
	}
	return math.Min(1.0, math.Max(0.0, f))
}

// Quantize rounds a score to the four-decimal precision Confidence
// serializes at. Every value that enters a comparison or a stored record
// must be quantized first, so a record reads back with the same value and
// verdict it was computed with. NaN passes through like Clamp.
func Quantize(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	return math.Round(f*1e4) / 1e4
}

// Now returns the timestamp format used in stored objects: RFC 3339, UTC.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Object is anything the store can persist.
type Object interface {
	// Type returns the object's type tag.
	Type() Type
	// Hash returns the hex SHA-256 of the object's canonical identity payload.
	Hash() (string, error)
}

// Claim is a factual assertion awaiting (or holding) verification.
type Claim struct {
	Content            string     `json:"content"`
	Domain             string     `json:"domain"`
	DeclaredConfidence Confidence `json:"declared_confidence"`
	CreatedAt          string     `json:"created_at"`
}

func (c *Claim) Type() Type { return TypeClaim }

// Hash covers (type, content, domain) only. Declared confidence and
// timestamp are metadata outside identity, so re-stating a claim with a
// different confidence yields a new object at the same address.
func (c *Claim) Hash() (string, error) {
	return digest(identity{Type: TypeClaim, Content: c.Content, Domain: c.Domain})
}

// Axiom has the shape of a claim but is flagged non-verifiable: it never
// enters consensus and acts as a trusted leaf in derivations.
type Axiom struct {
	Content            string     `json:"content"`
	Domain             string     `json:"domain"`
	DeclaredConfidence Confidence `json:"declared_confidence"`
	CreatedAt          string     `json:"created_at"`
}

func (a *Axiom) Type() Type { return TypeAxiom }

func (a *Axiom) Hash() (string, error) {
	return digest(identity{Type: TypeAxiom, Content: a.Content, Domain: a.Domain})
}

// Context groups claims and axioms under a label. Identity is the ordered
// member list; the label is metadata.
type Context struct {
	Members []string `json:"members"`
	Label   string   `json:"label"`
}

func (c *Context) Type() Type { return TypeContext }

func (c *Context) Hash() (string, error) {
	return digest(struct {
		Type    Type     `json:"type"`
		Members []string `json:"members"`
	}{TypeContext, c.Members})
}

// ValidatorResult is one validator's judgment of a claim. It is embedded in
// a Verification, never stored on its own.
type ValidatorResult struct {
	Validator  string     `json:"validator"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"rationale"`
	Status     Status     `json:"status"`
}

// Verification is an immutable record of one consensus round over a claim.
// Identity covers the full record, so any change to inputs or outcome
// changes the address.
type Verification struct {
	ClaimHash string            `json:"claim_hash"`
	Results   []ValidatorResult `json:"results"`
	Consensus Confidence        `json:"consensus"`
	Threshold Confidence        `json:"threshold"`
	Quorum    int               `json:"quorum"`
	QuorumMet bool              `json:"quorum_met"`
	Passed    bool              `json:"passed"`
	Timestamp string            `json:"timestamp"`
}

func (v *Verification) Type() Type { return TypeVerification }

func (v *Verification) Hash() (string, error) {
	return digest(struct {
		Type Type `json:"type"`
		Verification
	}{TypeVerification, *v.normalized()})
}

// normalized returns a copy with results sorted by validator name, so hash
// and encoding are independent of arrival order.
func (v *Verification) normalized() *Verification {
	cp := *v
	cp.Results = append([]ValidatorResult(nil), v.Results...)
	sort.Slice(cp.Results, func(i, j int) bool {
		return cp.Results[i].Validator < cp.Results[j].Validator
	})
	return &cp
}

type identity struct {
	Type    Type   `json:"type"`
	Content string `json:"content"`
	Domain  string `json:"domain"`
}

// Encode returns the canonical (JCS) JSON of the full object, which is what
// the store persists.
func Encode(obj Object) ([]byte, error) {
	v := obj
	if ver, ok := obj.(*Verification); ok {
		v = ver.normalized()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", obj.Type(), err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", obj.Type(), err)
	}
	return canonical, nil
}

// Decode parses stored bytes back into a typed object.
func Decode(t Type, data []byte) (Object, error) {
	var obj Object
	switch t {
	case TypeClaim:
		obj = &Claim{}
	case TypeAxiom:
		obj = &Axiom{}
	case TypeContext:
		obj = &Context{}
	case TypeVerification:
		obj = &Verification{}
	default:
		return nil, fmt.Errorf("unknown object type %q", t)
	}
	if err := json.Unmarshal(data, obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return obj, nil
}

// digest canonicalizes the payload and returns its hex SHA-256.
func digest(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal identity payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize identity payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
