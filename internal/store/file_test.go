package store_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/example/go-nmt-prep/internal/store"
	"github.com/example/go-nmt-prep/internal/vectorizer"
)

func testSnapshot(t *testing.T) vectorizer.Snapshot {
	t.Helper()

	v, err := vectorizer.FromPairs([]vectorizer.Pair{
		{Source: "the cat sat", Target: "le chat assis"},
	}, 5)
	if err != nil {
		t.Fatalf("FromPairs: %v", err)
	}

	return v.Snapshot()
}

func TestSaveLoadFileRoundTrip(t *testing.T) {
	snap := testSnapshot(t)
	path := filepath.Join(t.TempDir(), "vectorizer.json")

	if err := store.SaveFile(path, snap); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	got, err := store.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !reflect.DeepEqual(got, snap) {
		t.Errorf("loaded snapshot = %+v, want %+v", got, snap)
	}
}

func TestSaveFileWritesArtifactKeys(t *testing.T) {
	snap := testSnapshot(t)
	path := filepath.Join(t.TempDir(), "vectorizer.json")

	if err := store.SaveFile(path, snap); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	for _, key := range []string{"source_tokens", "target_tokens", "max_words"} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("artifact missing key %q", key)
		}
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := store.LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := store.LoadFile(path)
	if err == nil {
		t.Fatal("expected error for malformed artifact")
	}
}
