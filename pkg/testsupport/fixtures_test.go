package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	path := writeTempFixture(t, "data.txt", "hello fixtures")

	data := LoadFixture(t, path)
	if string(data) != "hello fixtures" {
		t.Errorf("LoadFixture() = %q, want %q", data, "hello fixtures")
	}
}

func TestLoadFixtureJSON(t *testing.T) {
	path := writeTempFixture(t, "data.json", `{"name":"widget","qty":3}`)

	var dest struct {
		Name string `json:"name"`
		Qty  int    `json:"qty"`
	}
	LoadFixtureJSON(t, path, &dest)

	if dest.Name != "widget" || dest.Qty != 3 {
		t.Errorf("LoadFixtureJSON() = %+v", dest)
	}
}

func TestFixturePath(t *testing.T) {
	got := FixturePath("products.json")
	want := filepath.Join("testdata", "products.json")
	if got != want {
		t.Errorf("FixturePath() = %q, want %q", got, want)
	}
}
