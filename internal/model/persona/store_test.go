package persona

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	got, ok := store.FindByID("twin")
	if !ok {
		t.Fatal("expected seeded twin persona")
	}
	if got.Name == "" || len(got.Rules) == 0 {
		t.Fatalf("seeded persona incomplete: %+v", got)
	}

	if _, ok := store.FindByID("missing"); ok {
		t.Fatal("expected missing persona lookup to fail")
	}
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())
	list := store.List()
	list[0].Name = "mutated"

	if got, _ := store.FindByID("twin"); got.Name == "mutated" {
		t.Fatal("List should not expose internal slice")
	}
}

func TestResolveFromSingleObjectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persona.json")
	body := `{"id":"ada","name":"Ada","fullName":"Ada Lovelace","title":"Analyst"}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}

	got, err := Resolve(path, "ada")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if got.DisplayName() != "Ada Lovelace" {
		t.Fatalf("unexpected persona %+v", got)
	}
}

func TestResolveFallsBackToFirstEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.json")
	body := `[{"id":"a","name":"A"},{"id":"b","name":"B"}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}

	got, err := Resolve(path, "unknown")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if got.ID != "a" {
		t.Fatalf("expected first persona, got %s", got.ID)
	}

	got, err = Resolve(path, "b")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if got.DisplayName() != "B" {
		t.Fatalf("expected persona b, got %+v", got)
	}
}

func TestResolveErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Resolve(filepath.Join(dir, "missing.json"), "twin"); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{oops"), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}
	if _, err := Resolve(bad, "twin"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte("[]"), 0o644); err != nil {
		t.Fatalf("prep: %v", err)
	}
	if _, err := Resolve(empty, "twin"); err == nil {
		t.Fatal("expected error for empty persona list")
	}
}

func TestResolveDefaultsToSeed(t *testing.T) {
	got, err := Resolve("", "twin")
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if got.ID != "twin" {
		t.Fatalf("unexpected persona %s", got.ID)
	}
}
