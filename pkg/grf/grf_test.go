package grf_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Faultbox/heightmap2brs/pkg/grf"
	"github.com/Faultbox/heightmap2brs/pkg/grf/grftest"
)

func testArchive(t *testing.T) string {
	return grftest.Build(t, []grftest.File{
		{Name: "data/test.txt", Content: []byte("Hello, GRF!")},
		{Name: "data/Prontera.gat", Content: []byte("GRAT fake altitude table")},
		{Name: "data/subfolder/nested/file.txt", Content: []byte("Nested file content"), Stored: true},
		{Name: "data/프론테라.gat", Content: []byte("korean name")},
	})
}

func TestOpen(t *testing.T) {
	archive, err := grf.Open(testArchive(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	files := archive.List()
	sort.Strings(files)

	expected := []string{
		"data/prontera.gat",
		"data/subfolder/nested/file.txt",
		"data/test.txt",
		"data/프론테라.gat",
	}
	if len(files) != len(expected) {
		t.Fatalf("expected %d files, got %d: %v", len(expected), len(files), files)
	}
	for i := range expected {
		if files[i] != expected[i] {
			t.Errorf("file %d: expected %q, got %q", i, expected[i], files[i])
		}
	}
}

func TestContains(t *testing.T) {
	archive, err := grf.Open(testArchive(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	tests := []struct {
		path string
		want bool
	}{
		{"data/test.txt", true},
		{"DATA\\TEST.TXT", true},
		{"data/prontera.gat", true},
		{"nonexistent/file/path.txt", false},
	}
	for _, tt := range tests {
		if got := archive.Contains(tt.path); got != tt.want {
			t.Errorf("Contains(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestRead(t *testing.T) {
	archive, err := grf.Open(testArchive(t))
	if err != nil {
		t.Fatalf("failed to open GRF: %v", err)
	}
	defer archive.Close()

	tests := []struct {
		path string
		want string
	}{
		{"data/test.txt", "Hello, GRF!"},
		{"data/subfolder/nested/file.txt", "Nested file content"},
		{"data/프론테라.gat", "korean name"},
	}
	for _, tt := range tests {
		data, err := archive.Read(tt.path)
		if err != nil {
			t.Fatalf("Read(%q): %v", tt.path, err)
		}
		if string(data) != tt.want {
			t.Errorf("Read(%q) = %q, want %q", tt.path, data, tt.want)
		}
	}

	_, err = archive.Read("missing.gat")
	if !errors.Is(err, grf.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.grf")
	if err := os.WriteFile(path, make([]byte, 64), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := grf.Open(path)
	if !errors.Is(err, grf.ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}

	if _, err := grf.Open(filepath.Join(t.TempDir(), "missing.grf")); err == nil {
		t.Error("expected error opening missing archive")
	}
}
