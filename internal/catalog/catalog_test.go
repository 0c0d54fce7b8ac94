// internal/catalog/catalog_test.go
package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStimulusTree(t *testing.T, base string, trait string, high, low []string) {
	t.Helper()
	for _, v := range high {
		path := VideoPath(base, trait, "high", v)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, v := range low {
		path := VideoPath(base, trait, "low", v)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFolderName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		trait string
		want  string
	}{
		{trait: "Openness", want: "openness"},
		{trait: "Emotional Stability", want: "emotional_stability"},
	}
	for _, tt := range tests {
		if got := FolderName(tt.trait); got != tt.want {
			t.Fatalf("FolderName(%q)=%q want %q", tt.trait, got, tt.want)
		}
	}
}

func TestScanDir(t *testing.T) {
	base := t.TempDir()
	writeStimulusTree(t, base, "Openness", []string{"o_high_02.mp4", "o_high_01.mp4"}, []string{"o_low_01.mp4"})
	writeStimulusTree(t, base, "Extraversion", []string{"e_high_01.mp4"}, nil)

	cat, err := ScanDir(base, []string{"Openness", "Extraversion", "Agreeableness"})
	if err != nil {
		t.Fatalf("ScanDir error: %v", err)
	}

	pool, ok := cat["Openness"]
	if !ok {
		t.Fatal("expected Openness in catalog")
	}
	if len(pool.High) != 2 || pool.High[0] != "o_high_01.mp4" {
		t.Fatalf("expected sorted high pool, got %v", pool.High)
	}
	if len(pool.Low) != 1 {
		t.Fatalf("expected 1 low video, got %v", pool.Low)
	}

	// Extraversion has no low videos; Agreeableness has nothing. Both skipped.
	if _, ok := cat["Extraversion"]; ok {
		t.Fatal("trait with empty low pool should be skipped")
	}
	if _, ok := cat["Agreeableness"]; ok {
		t.Fatal("trait with no videos should be skipped")
	}

	if !cat.Usable("Openness") {
		t.Fatal("Openness should be usable")
	}
	if cat.Usable("Extraversion") {
		t.Fatal("Extraversion should not be usable")
	}
}

func TestScanDirMissingBase(t *testing.T) {
	t.Parallel()

	if _, err := ScanDir(filepath.Join(t.TempDir(), "nope"), []string{"Openness"}); err == nil {
		t.Fatal("expected error for missing base directory")
	}
}

func TestLoadFileYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
Openness:
  high: [h1.mp4, h2.mp4]
  low: [l1.mp4]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if len(cat["Openness"].High) != 2 || len(cat["Openness"].Low) != 1 {
		t.Fatalf("unexpected pools: %+v", cat["Openness"])
	}
}

func TestLoadFileJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	good := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(good, []byte(`{"Openness": {"high": ["h1.mp4"], "low": ["l1.mp4"]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !cat.Usable("Openness") {
		t.Fatal("expected usable Openness pool")
	}

	// Missing the required "low" key must fail schema validation.
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"Openness": {"high": ["h1.mp4"]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Fatal("expected schema validation error")
	}

	unknown := filepath.Join(dir, "catalog.txt")
	if err := os.WriteFile(unknown, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(unknown); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestValidate(t *testing.T) {
	base := t.TempDir()
	writeStimulusTree(t, base, "Openness", []string{"h1.mp4"}, []string{"l1.mp4"})

	cat := Catalog{
		"Openness": {High: []string{"h1.mp4"}, Low: []string{"l1.mp4", "l_missing.mp4"}},
	}

	ok, missing := Validate(cat, base)
	if ok {
		t.Fatal("expected validation failure")
	}
	if len(missing) != 1 || filepath.Base(missing[0]) != "l_missing.mp4" {
		t.Fatalf("unexpected missing list: %v", missing)
	}

	cat["Openness"] = Pool{High: []string{"h1.mp4"}, Low: []string{"l1.mp4"}}
	if ok, missing := Validate(cat, base); !ok || len(missing) != 0 {
		t.Fatalf("expected clean validation, got %v", missing)
	}
}
