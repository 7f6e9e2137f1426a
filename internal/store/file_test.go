package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gravitas-games/signshop/internal/shop"
	"github.com/gravitas-games/signshop/internal/world"
)

func sampleShops() []shop.Snapshot {
	return []shop.Snapshot{
		{Pos: world.BlockPos{X: 1, Y: 64, Z: -3}, Owner: "9b2f1c1e-8f44-4c84-a0d1-111111111111", Fixture: "5f0c3f5e-0c7c-4d4c-9b1c-1e6c1c3c9a01", Stock: 4},
		{Pos: world.BlockPos{X: 2, Y: 64, Z: 0}, Fixture: "5f0c3f5e-0c7c-4d4c-9b1c-1e6c1c3c9a02", UseContainer: true},
	}
}

func TestFileSaveLoadYAMLAndJSON(t *testing.T) {
	for _, name := range []string{"shops.yaml", "shops.json"} {
		path := filepath.Join(t.TempDir(), "data", name)
		f := NewFile(path)
		if err := f.Save(context.Background(), sampleShops()); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := f.Load(context.Background())
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if len(got) != 2 || got[0].Stock != 4 || got[0].Pos.Z != -3 || !got[1].UseContainer {
			t.Fatalf("%s: unexpected shops %+v", name, got)
		}
	}
}

func TestFileMissingIsEmpty(t *testing.T) {
	got, err := NewFile(filepath.Join(t.TempDir(), "none.yaml")).Load(context.Background())
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty load, got %v (%v)", got, err)
	}
}

func TestFileCorruptIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shops.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFile(path).Load(context.Background()); err == nil {
		t.Fatalf("expected parse error")
	}
}
