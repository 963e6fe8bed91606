package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveViaFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline_uri")
	if err := os.WriteFile(path, []byte("10.0.0.5:7777\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	uri, err := ResolveServerURI(context.Background(), Config{URIFile: path})
	if err != nil {
		t.Fatalf("ResolveServerURI: %v", err)
	}
	if uri != "10.0.0.5:7777" {
		t.Errorf("ResolveServerURI() = %q, want 10.0.0.5:7777", uri)
	}
}

func TestResolveViaFileEmptyReturnsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline_uri")
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := ResolveServerURI(context.Background(), Config{URIFile: path}); err == nil {
		t.Error("ResolveServerURI: expected error for empty URI file")
	}
}

func TestResolveViaFileMissingReturnsError(t *testing.T) {
	if _, err := ResolveServerURI(context.Background(), Config{URIFile: "/nonexistent/path/pipeline_uri"}); err == nil {
		t.Error("ResolveServerURI: expected error for missing URI file")
	}
}
