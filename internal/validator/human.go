package validator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// HumanValidator prompts a person for a judgment over the CLI. It reads
// confidence as a 0-100 percentage to keep manual entry simple.
type HumanValidator struct {
	name string
	in   *bufio.Reader
	out  io.Writer
}

// NewHuman creates an interactive validator reading from in and prompting
// on out.
func NewHuman(name string, in io.Reader, out io.Writer) *HumanValidator {
	if name == "" {
		name = "HUMAN"
	}
	return &HumanValidator{name: name, in: bufio.NewReader(in), out: out}
}

func (v *HumanValidator) Name() string { return v.name }

func (v *HumanValidator) Available(ctx context.Context) bool { return true }

func (v *HumanValidator) Verify(ctx context.Context, content, domain string) (*Judgment, error) {
	fmt.Fprintln(v.out, strings.Repeat("=", 60))
	fmt.Fprintln(v.out, "HUMAN VALIDATION REQUIRED")
	fmt.Fprintln(v.out, strings.Repeat("=", 60))
	fmt.Fprintf(v.out, "Claim: %s\n", content)
	fmt.Fprintf(v.out, "Domain: %s\n", domain)
	fmt.Fprintln(v.out, strings.Repeat("=", 60))

	fmt.Fprint(v.out, "Confidence (0-100): ")
	line, err := v.in.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read confidence: %w", err)
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
	if err != nil {
		return nil, fmt.Errorf("parse confidence: %w", err)
	}

	fmt.Fprint(v.out, "Reasoning: ")
	reasoning, err := v.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read reasoning: %w", err)
	}

	confidence := pct / 100.0
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return &Judgment{
		Confidence: confidence,
		Rationale:  strings.TrimSpace(reasoning),
	}, nil
}
