package container

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateBuildContext(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"Dockerfile":     "FROM alpine:3.20\n",
		"scripts/run.sh": "#!/bin/sh\necho ok\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	archive, err := createBuildContext(dir)
	if err != nil {
		t.Fatalf("createBuildContext failed: %v", err)
	}

	seen := map[string]string{}
	reader := tar.NewReader(archive)
	for {
		header, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading archive: %v", err)
		}
		content, err := io.ReadAll(reader)
		if err != nil {
			t.Fatalf("reading entry %s: %v", header.Name, err)
		}
		seen[header.Name] = string(content)
	}

	for name, want := range files {
		if seen[name] != want {
			t.Errorf("entry %s = %q, want %q", name, seen[name], want)
		}
	}
	if len(seen) != len(files) {
		t.Errorf("archive holds %d entries, want %d: %v", len(seen), len(files), seen)
	}
}
