// Package repo orchestrates the object store, refs, consensus engine, and
// proof subsystem. It is the only surface the CLI and API layers touch.
package repo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lumensyntax-org/truthgit/internal/config"
	"github.com/lumensyntax-org/truthgit/internal/consensus"
	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/proof"
	"github.com/lumensyntax-org/truthgit/internal/refs"
	"github.com/lumensyntax-org/truthgit/internal/store"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

var (
	// ErrInvalidInput covers malformed caller input, e.g. a confidence
	// that is not a number.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotInitialized means the directory holds no truth repository.
	ErrNotInitialized = errors.New("not a truth repository")

	// ErrAlreadyInitialized means init was run on an existing repository
	// without force.
	ErrAlreadyInitialized = errors.New("repository already exists")

	// ErrNotVerified means a proof was requested for a claim with no
	// consensus verification yet.
	ErrNotVerified = errors.New("claim has no verification")

	// ErrAmbiguousPrefix means a hash prefix matched more than one stored
	// object.
	ErrAmbiguousPrefix = errors.New("ambiguous hash prefix")
)

// Claim lifecycle states. Terminal states are re-enterable: any new verify
// request moves the claim back through PENDING_VERIFICATION.
const (
	StateCreated            = "CREATED"
	StatePending            = "PENDING_VERIFICATION"
	StatePassed             = "VERIFIED_PASSED"
	StateFailed             = "VERIFIED_FAILED"
	StateInsufficientQuorum = "INSUFFICIENT_QUORUM"
)

// Repository is a truth repository rooted at a directory.
type Repository struct {
	root  string
	store store.Store
	refs  refs.Manager
	cfg   config.Config
	log   *logrus.Entry

	// locks serializes ref updates per claim during verification. Unrelated
	// claims never contend.
	locks sync.Map
}

// IsInitialized reports whether root already holds a repository.
func IsInitialized(root string) bool {
	info, err := os.Stat(filepath.Join(root, "objects"))
	return err == nil && info.IsDir()
}

// Init lays out a new repository at root. With force set, an existing
// repository is wiped first.
func Init(root string, force bool) error {
	if IsInitialized(root) {
		if !force {
			return fmt.Errorf("%s: %w", root, ErrAlreadyInitialized)
		}
		if err := os.RemoveAll(root); err != nil {
			return fmt.Errorf("reinitialize %s: %w", root, err)
		}
	}
	for _, dir := range []string{"objects", "refs", "keys"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("initialize %s: %w", root, err)
		}
	}
	return nil
}

// Open opens an initialized repository with the given configuration.
func Open(root string, cfg config.Config, log *logrus.Logger) (*Repository, error) {
	if !IsInitialized(root) {
		return nil, fmt.Errorf("%s: %w", root, ErrNotInitialized)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetOutput(os.Stderr)
	}

	r := &Repository{
		root: root,
		cfg:  cfg,
		log:  log.WithField("component", "repository"),
	}
	switch cfg.Backend {
	case config.BackendBadger:
		bs, err := store.NewBadgerStore(filepath.Join(root, "badger"))
		if err != nil {
			return nil, err
		}
		r.store, r.refs = bs, bs
	default:
		fs, err := store.NewFileStore(root)
		if err != nil {
			return nil, err
		}
		rm, err := refs.NewFileManager(filepath.Join(root, "refs"))
		if err != nil {
			return nil, err
		}
		r.store, r.refs = fs, rm
	}
	return r, nil
}

// Close releases store resources.
func (r *Repository) Close() error {
	return r.store.Close()
}

// Store exposes the underlying object store for read-only callers.
func (r *Repository) Store() store.Store { return r.store }

// Refs exposes the ref manager for read-only callers.
func (r *Repository) Refs() refs.Manager { return r.refs }

// CreateClaim stores a new claim and stages it for verification. Content
// addressing makes the call idempotent: restating an existing claim returns
// its existing hash.
func (r *Repository) CreateClaim(content, domain string, declared float64) (*object.Claim, string, error) {
	if err := checkStatement(content, declared); err != nil {
		return nil, "", err
	}
	claim := &object.Claim{
		Content:            content,
		Domain:             normalizeDomain(domain),
		DeclaredConfidence: object.Confidence(object.Clamp(declared)),
		CreatedAt:          object.Now(),
	}
	hash, err := r.store.Put(claim)
	if err != nil {
		return nil, "", err
	}
	if err := r.refs.SetRef(refs.Stage(hash), hash); err != nil {
		return nil, "", err
	}
	r.log.WithFields(logrus.Fields{"claim": short(hash), "domain": claim.Domain}).Debug("claim created")
	return claim, hash, nil
}

// AddAxiom stores a non-verifiable axiom. Axioms are never staged: they do
// not enter consensus.
func (r *Repository) AddAxiom(content, domain string, declared float64) (*object.Axiom, string, error) {
	if err := checkStatement(content, declared); err != nil {
		return nil, "", err
	}
	axiom := &object.Axiom{
		Content:            content,
		Domain:             normalizeDomain(domain),
		DeclaredConfidence: object.Confidence(object.Clamp(declared)),
		CreatedAt:          object.Now(),
	}
	hash, err := r.store.Put(axiom)
	if err != nil {
		return nil, "", err
	}
	return axiom, hash, nil
}

// CreateContext groups existing claims and axioms under a label. Every
// member must already be stored; order is identity-significant.
func (r *Repository) CreateContext(members []string, label string) (*object.Context, string, error) {
	if len(members) == 0 {
		return nil, "", fmt.Errorf("context needs at least one member: %w", ErrInvalidInput)
	}
	for _, m := range members {
		found := false
		for _, t := range []object.Type{object.TypeClaim, object.TypeAxiom} {
			ok, err := r.store.Exists(t, m)
			if err != nil {
				return nil, "", err
			}
			if ok {
				found = true
				break
			}
		}
		if !found {
			return nil, "", fmt.Errorf("context member %s: %w", m, store.ErrNotFound)
		}
	}
	cx := &object.Context{Members: members, Label: label}
	hash, err := r.store.Put(cx)
	if err != nil {
		return nil, "", err
	}
	return cx, hash, nil
}

// VerifyOptions tunes one verification round. Zero values fall back to the
// repository configuration.
type VerifyOptions struct {
	Threshold float64
	Quorum    int
	Timeout   time.Duration
}

func (r *Repository) verifyOptions(opts VerifyOptions) VerifyOptions {
	if opts.Threshold == 0 {
		opts.Threshold = r.cfg.Threshold
	}
	if opts.Quorum == 0 {
		opts.Quorum = r.cfg.Quorum
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Duration(r.cfg.ValidatorTimeout) * time.Second
	}
	return opts
}

// RequestVerification fans the claim out to the supplied validators, feeds
// the settled results to the consensus engine, stores the verification, and
// updates the consensus, perspective, and HEAD refs. Individual validator
// failures are absorbed into the result set; only storage failures abort.
func (r *Repository) RequestVerification(ctx context.Context, claimHash string, validators []validator.Validator, opts VerifyOptions) (*object.Verification, string, error) {
	if len(validators) == 0 {
		return nil, "", fmt.Errorf("no validators supplied: %w", ErrInvalidInput)
	}
	opts = r.verifyOptions(opts)

	obj, err := r.store.Get(object.TypeClaim, claimHash)
	if err != nil {
		return nil, "", err
	}
	claim := obj.(*object.Claim)

	mu := r.claimLock(claimHash)
	mu.Lock()
	defer mu.Unlock()

	runner := validator.NewRunner(r.cfg.MaxParallel, opts.Timeout, r.cfg.RateLimit, r.cfg.RateBurst)
	results := runner.RunAll(ctx, claim.Content, claim.Domain, validators)

	engine := consensus.New(opts.Threshold, opts.Quorum)
	outcome := engine.Evaluate(results)

	verification := &object.Verification{
		ClaimHash: claimHash,
		Results:   results,
		Consensus: object.Confidence(outcome.Value),
		Threshold: object.Confidence(engine.Threshold),
		Quorum:    engine.Quorum,
		QuorumMet: outcome.QuorumMet,
		Passed:    outcome.Passed,
		Timestamp: object.Now(),
	}
	vHash, err := r.store.Put(verification)
	if err != nil {
		return nil, "", err
	}

	if err := r.refs.SetRef(refs.Consensus(claimHash), vHash); err != nil {
		return nil, "", err
	}
	if err := r.updatePerspectives(claimHash, verification, results); err != nil {
		return nil, "", err
	}
	if err := r.refs.SetRef(refs.Head, vHash); err != nil {
		return nil, "", err
	}
	if err := r.refs.DeleteRef(refs.Stage(claimHash)); err != nil {
		return nil, "", err
	}

	r.log.WithFields(logrus.Fields{
		"claim":        short(claimHash),
		"verification": short(vHash),
		"consensus":    outcome.Value,
		"passed":       outcome.Passed,
		"quorum_met":   outcome.QuorumMet,
		"usable":       outcome.Usable,
		"excluded":     outcome.Excluded,
	}).Info("verification recorded")

	return verification, vHash, nil
}

// updatePerspectives stores, per validator, a single-result verification
// answering "what did validator X last say about claim Y" without a full
// history scan. Each goes through the same consensus path with quorum 1.
func (r *Repository) updatePerspectives(claimHash string, parent *object.Verification, results []object.ValidatorResult) error {
	single := consensus.New(float64(parent.Threshold), 1)
	for _, res := range results {
		outcome := single.Evaluate([]object.ValidatorResult{res})
		pv := &object.Verification{
			ClaimHash: claimHash,
			Results:   []object.ValidatorResult{res},
			Consensus: object.Confidence(outcome.Value),
			Threshold: parent.Threshold,
			Quorum:    1,
			QuorumMet: outcome.QuorumMet,
			Passed:    outcome.Passed,
			Timestamp: parent.Timestamp,
		}
		hash, err := r.store.Put(pv)
		if err != nil {
			return err
		}
		if err := r.refs.SetRef(refs.Perspective(res.Validator, claimHash), hash); err != nil {
			return err
		}
	}
	return nil
}

// IssueProof certifies the claim's current consensus verification, loading
// the repository signing key and generating one on first use.
func (r *Repository) IssueProof(claimHash string) (*proof.Certificate, error) {
	target, err := r.refs.GetRef(refs.Consensus(claimHash))
	if err != nil {
		if errors.Is(err, refs.ErrRefNotFound) {
			return nil, fmt.Errorf("claim %s: %w", short(claimHash), ErrNotVerified)
		}
		return nil, err
	}
	vObj, err := r.store.Get(object.TypeVerification, target)
	if err != nil {
		return nil, err
	}
	cObj, err := r.store.Get(object.TypeClaim, claimHash)
	if err != nil {
		return nil, err
	}

	kp, err := proof.LoadOrCreateKeyPair(filepath.Join(r.root, "keys"))
	if err != nil {
		return nil, err
	}
	cert, err := proof.Issue(cObj.(*object.Claim), vObj.(*object.Verification), kp.Private)
	if err != nil {
		return nil, err
	}
	r.log.WithField("claim", short(claimHash)).Info("certificate issued")
	return cert, nil
}

// VerifyProof checks a certificate in either encoding. It needs no
// repository state: certificates are self-contained.
func (r *Repository) VerifyProof(token []byte) proof.Result {
	return proof.VerifyToken(token)
}

// ClaimState derives a claim's lifecycle state from refs.
func (r *Repository) ClaimState(claimHash string) (string, error) {
	if ok, err := r.store.Exists(object.TypeClaim, claimHash); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("claim %s: %w", short(claimHash), store.ErrNotFound)
	}

	if _, err := r.refs.GetRef(refs.Stage(claimHash)); err == nil {
		return StatePending, nil
	}
	target, err := r.refs.GetRef(refs.Consensus(claimHash))
	if err != nil {
		if errors.Is(err, refs.ErrRefNotFound) {
			return StateCreated, nil
		}
		return "", err
	}
	obj, err := r.store.Get(object.TypeVerification, target)
	if err != nil {
		return "", err
	}
	v := obj.(*object.Verification)
	switch {
	case !v.QuorumMet:
		return StateInsufficientQuorum, nil
	case v.Passed:
		return StatePassed, nil
	default:
		return StateFailed, nil
	}
}

func (r *Repository) claimLock(claimHash string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(claimHash, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func checkStatement(content string, declared float64) error {
	if content == "" {
		return fmt.Errorf("empty content: %w", ErrInvalidInput)
	}
	if math.IsNaN(declared) || math.IsInf(declared, 0) {
		return fmt.Errorf("confidence is not a finite number: %w", ErrInvalidInput)
	}
	return nil
}

func normalizeDomain(domain string) string {
	if domain == "" {
		return "general"
	}
	return domain
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
