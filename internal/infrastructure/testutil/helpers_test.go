package testutil

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	content := "test content"
	name := "test.txt"

	path := WriteFile(t, dir, name, content)

	expectedPath := filepath.Join(dir, name)
	if path != expectedPath {
		t.Fatalf("WriteFile returned wrong path: got %s, want %s", path, expectedPath)
	}
	if got := ReadFile(t, path); got != content {
		t.Fatalf("file content mismatch: got %q, want %q", got, content)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	paths := WriteFiles(t, dir, []string{"b.txt", "a.txt"}, map[string]string{
		"a.txt": "alpha",
		"b.txt": "beta",
	})

	if len(paths) != 2 || filepath.Base(paths[0]) != "b.txt" {
		t.Fatalf("paths = %v, want b.txt first", paths)
	}
	if got := ReadFile(t, paths[1]); got != "alpha" {
		t.Errorf("a.txt = %q", got)
	}
}

func TestAssertions(t *testing.T) {
	AssertNoError(t, nil)
	AssertError(t, errors.New("boom"))
	AssertEqual(t, 2, 2)
	AssertEqual(t, "a", "a")
	AssertContains(t, "Total tokens: 2", "Total", "2")
}

func TestCounters(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		count   func() (int, error)
		want    int
		wantErr bool
	}{
		{"static", "anything", func() (int, error) { return StaticCounter(4).CountTokens("anything") }, 4, false},
		{"static empty", "", func() (int, error) { return StaticCounter(4).CountTokens("") }, 0, false},
		{"words", SampleMixedSpace, func() (int, error) { return WordCounter().CountTokens(SampleMixedSpace) }, 3, false},
		{"failing", "x", func() (int, error) { return FailingCounter().CountTokens("x") }, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.count()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
