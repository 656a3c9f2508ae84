package store

import (
	"errors"
	"testing"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/refs"
)

func testBadger(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBadgerStore_PutGetRoundTrip(t *testing.T) {
	s := testBadger(t)

	claim := testClaim("badger round trip")
	hash, err := s.Put(claim)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(object.TypeClaim, hash)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.(*object.Claim).Content != claim.Content {
		t.Errorf("content lost: %+v", got)
	}

	// idempotent re-put
	h2, err := s.Put(testClaim("badger round trip"))
	if err != nil || h2 != hash {
		t.Errorf("re-put: got %s, %v", h2, err)
	}
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := testBadger(t)

	missing := "0000000000000000000000000000000000000000000000000000000000000000"
	if _, err := s.Get(object.TypeClaim, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	ok, err := s.Exists(object.TypeClaim, missing)
	if err != nil || ok {
		t.Errorf("expected not exists, got %v, %v", ok, err)
	}
}

func TestBadgerStore_Walk(t *testing.T) {
	s := testBadger(t)

	want := map[string]bool{}
	for _, content := range []string{"w1", "w2", "w3"} {
		h, err := s.Put(testClaim(content))
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		want[h] = false
	}
	if _, err := s.Put(&object.Axiom{Content: "ax", Domain: "test"}); err != nil {
		t.Fatalf("put axiom: %v", err)
	}

	err := s.Walk(object.TypeClaim, func(hash string) error {
		if _, ok := want[hash]; !ok {
			t.Errorf("unknown hash %s", hash)
		}
		want[hash] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	for h, seen := range want {
		if !seen {
			t.Errorf("walk missed %s", h)
		}
	}
}

func TestBadgerStore_RefManager(t *testing.T) {
	s := testBadger(t)

	target := "abc123"
	if err := s.SetRef("consensus/c1", target); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.GetRef("consensus/c1")
	if err != nil || got != target {
		t.Errorf("get: got %q, %v", got, err)
	}

	if _, err := s.GetRef("consensus/absent"); !errors.Is(err, refs.ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}

	if err := s.SetRef("stage/c2", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	listed, err := s.ListRefs("consensus/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].Name != "consensus/c1" {
		t.Errorf("unexpected listing: %v", listed)
	}

	if err := s.DeleteRef("consensus/c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetRef("consensus/c1"); !errors.Is(err, refs.ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound after delete, got %v", err)
	}
	// deleting again is a no-op
	if err := s.DeleteRef("consensus/c1"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}

	if err := s.SetRef("../escape", "x"); err == nil {
		t.Error("expected rejection of escaping ref name")
	}
}
