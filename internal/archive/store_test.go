package archive

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/coherence"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/facet"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/profile"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/reading"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeReading builds an encodable reading created minutes after base.
func makeReading(id, subject string, minutes, score int) reading.Reading {
	r := reading.Reading{
		ID:        id,
		Subject:   subject,
		CreatedAt: base.Add(time.Duration(minutes) * time.Minute),
		Version:   reading.SchemaVersion,
		Role:      connectivity.RoleGenerator,
		Coherence: coherence.Result{Score: score, Amplifier: float64(score) / 100},
		Pattern:   interference.Pattern{Type: interference.PatternHarmonic},
		Trajectory: projection.Trajectory{
			Current: score,
			Trend:   projection.TrendStable,
		},
	}
	for i, def := range profile.DefaultSlots() {
		code := facet.CompositeCode{Archetype: i + 1, Facet: facet.FacetB}
		r.Profile.Slots[i] = profile.Slot{SlotDef: def, Archetype: i + 1, Facet: facet.FacetB, Code: code}
	}
	r.Profile.Dominant = 1
	return r
}

func TestSaveAndGet(t *testing.T) {
	s := tempDB(t)
	r := makeReading("r-1", "alice", 0, 64)

	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get("r-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "r-1" || got.Subject != "alice" || got.Coherence.Score != 64 {
		t.Fatalf("unexpected reading: %+v", got)
	}
	if !got.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("created_at = %s, want %s", got.CreatedAt, r.CreatedAt)
	}
	if got.Profile.Slots[4].Code.String() != "05B" {
		t.Fatalf("slot 5 code = %s", got.Profile.Slots[4].Code)
	}
}

func TestSaveRejectsDuplicateAndEmptyID(t *testing.T) {
	s := tempDB(t)
	r := makeReading("r-1", "alice", 0, 64)
	if err := s.Save(r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(r); err == nil {
		t.Fatal("expected error saving the same id twice")
	}
	if err := s.Save(makeReading("", "alice", 1, 50)); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestGetNotFound(t *testing.T) {
	s := tempDB(t)
	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = s.Latest("nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLatestAndPreviousScore(t *testing.T) {
	s := tempDB(t)
	for _, r := range []reading.Reading{
		makeReading("a-1", "alice", 0, 40),
		makeReading("b-1", "bob", 5, 90),
		makeReading("a-2", "alice", 10, 72),
		makeReading("a-0", "alice", -30, 10),
	} {
		if err := s.Save(r); err != nil {
			t.Fatalf("Save %s: %v", r.ID, err)
		}
	}

	latest, err := s.Latest("alice")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest.ID != "a-2" {
		t.Fatalf("latest = %s, want a-2", latest.ID)
	}

	prev, err := s.PreviousScore("alice")
	if err != nil {
		t.Fatalf("PreviousScore: %v", err)
	}
	if prev == nil || *prev != 72 {
		t.Fatalf("previous score = %v, want 72", prev)
	}
	prev, err = s.PreviousScore("carol")
	if err != nil || prev != nil {
		t.Fatalf("unknown subject: got %v, %v", prev, err)
	}
}

func TestList(t *testing.T) {
	s := tempDB(t)
	for i := 0; i < 5; i++ {
		if err := s.Save(makeReading(string(rune('a'+i)), "alice", i, 50+i)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if err := s.Save(makeReading("z", "bob", 100, 30)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := s.List("alice", 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "e" || entries[2].ID != "c" {
		t.Fatalf("expected newest first, got %s..%s", entries[0].ID, entries[2].ID)
	}
	if entries[0].Coherence != 54 || entries[0].Pattern != interference.PatternHarmonic || entries[0].Role != connectivity.RoleGenerator {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}

	all, err := s.List("", 0)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 6 || all[0].ID != "z" {
		t.Fatalf("expected 6 entries led by z, got %d", len(all))
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	if err := s.Save(makeReading("m-1", "alice", 0, 80)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Get("m-1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	if err == nil {
		t.Fatal("expected error for unopenable path")
	}
}

func TestOperationsOnClosedDB(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "closed.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	s.Close()

	if err := s.Save(makeReading("r", "alice", 0, 1)); err == nil {
		t.Error("Save on closed db should fail")
	}
	if _, err := s.Get("r"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get on closed db should fail with a db error, got %v", err)
	}
	if _, err := s.List("", 0); err == nil {
		t.Error("List on closed db should fail")
	}
	if _, err := s.PreviousScore("alice"); err == nil {
		t.Error("PreviousScore on closed db should fail")
	}
}
