package refs

import (
	"errors"
	"strings"
	"testing"
)

func TestFileManager_SetGetRoundTrip(t *testing.T) {
	m, err := NewFileManager(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	target := strings.Repeat("a", 64)
	if err := m.SetRef("consensus/abc123", target); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := m.GetRef("consensus/abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != target {
		t.Errorf("got %q, want %q", got, target)
	}
}

func TestFileManager_LastWriteWins(t *testing.T) {
	m, _ := NewFileManager(t.TempDir())

	if err := m.SetRef("HEAD", strings.Repeat("1", 64)); err != nil {
		t.Fatalf("first set: %v", err)
	}
	second := strings.Repeat("2", 64)
	if err := m.SetRef("HEAD", second); err != nil {
		t.Fatalf("second set: %v", err)
	}
	got, _ := m.GetRef("HEAD")
	if got != second {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestFileManager_GetMissing(t *testing.T) {
	m, _ := NewFileManager(t.TempDir())

	_, err := m.GetRef("consensus/missing")
	if !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound, got %v", err)
	}
}

func TestFileManager_Delete(t *testing.T) {
	m, _ := NewFileManager(t.TempDir())

	if err := m.SetRef("stage/abc", strings.Repeat("c", 64)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.DeleteRef("stage/abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.GetRef("stage/abc"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("expected ErrRefNotFound after delete, got %v", err)
	}
	// deleting again is not an error
	if err := m.DeleteRef("stage/abc"); err != nil {
		t.Errorf("delete of absent ref should be a no-op, got %v", err)
	}
}

func TestFileManager_ListRefsByPrefix(t *testing.T) {
	m, _ := NewFileManager(t.TempDir())

	target := strings.Repeat("d", 64)
	names := []string{
		"consensus/claim1",
		"consensus/claim2",
		"perspectives/GPT/claim1",
		"stage/claim3",
		"HEAD",
	}
	for _, n := range names {
		if err := m.SetRef(n, target); err != nil {
			t.Fatalf("set %s: %v", n, err)
		}
	}

	consensus, err := m.ListRefs("consensus/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(consensus) != 2 {
		t.Fatalf("expected 2 consensus refs, got %d", len(consensus))
	}
	// sorted by name
	if consensus[0].Name != "consensus/claim1" || consensus[1].Name != "consensus/claim2" {
		t.Errorf("unexpected order: %v", consensus)
	}

	all, err := m.ListRefs("")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != len(names) {
		t.Errorf("expected %d refs, got %d", len(names), len(all))
	}
}

func TestFileManager_RejectsEscapingNames(t *testing.T) {
	m, _ := NewFileManager(t.TempDir())

	bad := []string{"", "/abs", "trail/", "a//b", "../escape", "a/../b", "a/./b"}
	for _, name := range bad {
		if err := m.SetRef(name, strings.Repeat("e", 64)); err == nil {
			t.Errorf("expected rejection for name %q", name)
		}
	}
}

func TestRefNameHelpers(t *testing.T) {
	if got := Consensus("abc"); got != "consensus/abc" {
		t.Errorf("Consensus: got %q", got)
	}
	if got := Perspective("GPT", "abc"); got != "perspectives/GPT/abc" {
		t.Errorf("Perspective: got %q", got)
	}
	if got := Stage("abc"); got != "stage/abc" {
		t.Errorf("Stage: got %q", got)
	}
}
