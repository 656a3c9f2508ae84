package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/refs"
	"github.com/lumensyntax-org/truthgit/internal/store"
)

// StagedClaim is a claim awaiting verification.
type StagedClaim struct {
	Hash  string
	Claim *object.Claim
}

// Staged lists claims currently staged for verification.
func (r *Repository) Staged() ([]StagedClaim, error) {
	entries, err := r.refs.ListRefs("stage/")
	if err != nil {
		return nil, err
	}
	out := make([]StagedClaim, 0, len(entries))
	for _, e := range entries {
		obj, err := r.store.Get(object.TypeClaim, e.Target)
		if err != nil {
			// A staged ref whose claim vanished is stale; skip it.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, StagedClaim{Hash: e.Target, Claim: obj.(*object.Claim)})
	}
	return out, nil
}

// LogEntry pairs a verification with its hash for history views.
type LogEntry struct {
	Hash         string
	Verification *object.Verification
}

// History returns consensus verifications newest-first, up to limit
// (limit <= 0 means all). Verifications carry no parent links, so history
// is an enumeration of the consensus refs ordered by timestamp.
func (r *Repository) History(limit int) ([]LogEntry, error) {
	entries, err := r.refs.ListRefs("consensus/")
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		obj, err := r.store.Get(object.TypeVerification, e.Target)
		if err != nil {
			return nil, err
		}
		out = append(out, LogEntry{Hash: e.Target, Verification: obj.(*object.Verification)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Verification.Timestamp != out[j].Verification.Timestamp {
			return out[i].Verification.Timestamp > out[j].Verification.Timestamp
		}
		return out[i].Hash < out[j].Hash
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Status summarizes the repository for status views.
type Status struct {
	Staged       []StagedClaim
	Head         string
	ObjectCounts map[object.Type]int
	Perspectives []refs.Ref
}

// Status gathers staged claims, HEAD, per-type object counts, and the
// perspective refs.
func (r *Repository) Status() (*Status, error) {
	staged, err := r.Staged()
	if err != nil {
		return nil, err
	}
	head, err := r.refs.GetRef(refs.Head)
	if err != nil && !errors.Is(err, refs.ErrRefNotFound) {
		return nil, err
	}
	counts, err := r.CountObjects()
	if err != nil {
		return nil, err
	}
	perspectives, err := r.refs.ListRefs("perspectives/")
	if err != nil {
		return nil, err
	}
	return &Status{
		Staged:       staged,
		Head:         head,
		ObjectCounts: counts,
		Perspectives: perspectives,
	}, nil
}

// CountObjects tallies stored objects per type.
func (r *Repository) CountObjects() (map[object.Type]int, error) {
	counts := make(map[object.Type]int, len(object.Types()))
	for _, t := range object.Types() {
		n := 0
		err := r.store.Walk(t, func(string) error {
			n++
			return nil
		})
		if err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, nil
}

// SearchResult is a claim matched by Search, with its consensus state when
// one exists.
type SearchResult struct {
	Hash      string
	Claim     *object.Claim
	Consensus float64
	State     string
}

// Search finds claims whose content contains the query, case-insensitive,
// optionally restricted to a domain.
func (r *Repository) Search(query, domain string, limit int) ([]SearchResult, error) {
	needle := strings.ToLower(query)
	var out []SearchResult
	err := r.store.Walk(object.TypeClaim, func(hash string) error {
		if limit > 0 && len(out) >= limit {
			return nil
		}
		obj, err := r.store.Get(object.TypeClaim, hash)
		if err != nil {
			return err
		}
		claim := obj.(*object.Claim)
		if domain != "" && claim.Domain != domain {
			return nil
		}
		if needle != "" && !strings.Contains(strings.ToLower(claim.Content), needle) {
			return nil
		}
		res := SearchResult{Hash: hash, Claim: claim}
		if state, err := r.ClaimState(hash); err == nil {
			res.State = state
		}
		if target, err := r.refs.GetRef(refs.Consensus(hash)); err == nil {
			if v, err := r.store.Get(object.TypeVerification, target); err == nil {
				res.Consensus = float64(v.(*object.Verification).Consensus)
			}
		}
		out = append(out, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindByPrefix locates a stored object by hash prefix across all types.
// Unknown prefixes fail with ErrNotFound, ambiguous ones with
// ErrAmbiguousPrefix.
func (r *Repository) FindByPrefix(prefix string) (object.Object, object.Type, string, error) {
	var (
		foundObj  object.Object
		foundType object.Type
		foundHash string
		matches   int
	)
	for _, t := range object.Types() {
		err := r.store.Walk(t, func(hash string) error {
			if !strings.HasPrefix(hash, prefix) {
				return nil
			}
			matches++
			if matches > 1 {
				return nil
			}
			obj, err := r.store.Get(t, hash)
			if err != nil {
				return err
			}
			foundObj, foundType, foundHash = obj, t, hash
			return nil
		})
		if err != nil {
			return nil, "", "", err
		}
	}
	switch matches {
	case 0:
		return nil, "", "", store.ErrNotFound
	case 1:
		return foundObj, foundType, foundHash, nil
	default:
		return nil, "", "", fmt.Errorf("prefix %q: %w", prefix, ErrAmbiguousPrefix)
	}
}
