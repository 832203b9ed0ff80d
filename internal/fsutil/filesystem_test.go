package fsutil

import (
	"path/filepath"
	"testing"
)

func TestOSFileSystem_Create(t *testing.T) {
	fs := OSFileSystem{}
	testFile := filepath.Join(t.TempDir(), "chart.html")

	w, err := fs.Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("<html></html>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestMemoryFileSystem_CreateAndContents(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w, err := mfs.Create("chart.html")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := w.Write([]byte("<html>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := w.Write([]byte("</html>")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, ok := mfs.Contents("chart.html"); ok {
		t.Error("expected Contents to be unpopulated before Close")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, ok := mfs.Contents("chart.html")
	if !ok {
		t.Fatal("expected chart.html to exist after Close")
	}
	if string(data) != "<html></html>" {
		t.Errorf("expected %q, got %q", "<html></html>", data)
	}
}

func TestMemoryFileSystem_ContentsMissing(t *testing.T) {
	mfs := NewMemoryFileSystem()
	if _, ok := mfs.Contents("nonexistent.html"); ok {
		t.Error("expected no contents for a name that was never created")
	}
}

func TestMemoryFileSystem_OverwriteOnRecreate(t *testing.T) {
	mfs := NewMemoryFileSystem()

	w1, _ := mfs.Create("chart.html")
	w1.Write([]byte("first"))
	w1.Close()

	w2, _ := mfs.Create("chart.html")
	w2.Write([]byte("second"))
	w2.Close()

	data, ok := mfs.Contents("chart.html")
	if !ok || string(data) != "second" {
		t.Errorf("expected recreate to overwrite contents with %q, got %q (ok=%v)", "second", data, ok)
	}
}
