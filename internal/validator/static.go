package validator

import "context"

// StaticValidator returns a fixed judgment. It backs dry runs and tests,
// where deterministic results matter more than real inference.
type StaticValidator struct {
	name       string
	confidence float64
	rationale  string
}

// NewStatic creates a validator that always answers with the given
// confidence and rationale.
func NewStatic(name string, confidence float64, rationale string) *StaticValidator {
	if name == "" {
		name = "STATIC"
	}
	if rationale == "" {
		rationale = "static judgment"
	}
	return &StaticValidator{name: name, confidence: confidence, rationale: rationale}
}

func (v *StaticValidator) Name() string { return v.name }

func (v *StaticValidator) Available(ctx context.Context) bool { return true }

func (v *StaticValidator) Verify(ctx context.Context, content, domain string) (*Judgment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Judgment{Confidence: v.confidence, Rationale: v.rationale}, nil
}
