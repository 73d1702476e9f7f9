package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCappedWriterAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedWriter error = %v", err)
	}
	defer w.Close()

	if _, err := w.Write([]byte("one\n")); err != nil {
		t.Fatalf("write error = %v", err)
	}
	if _, err := w.Write([]byte("two\n")); err != nil {
		t.Fatalf("write error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !bytes.Equal(data, []byte("one\ntwo\n")) {
		t.Fatalf("file = %q", data)
	}
}

func TestCappedWriterTruncatesAtCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedWriter error = %v", err)
	}
	defer w.Close()
	w.maxBytes = 8

	if _, err := w.Write([]byte("12345\n")); err != nil {
		t.Fatalf("write error = %v", err)
	}
	if _, err := w.Write([]byte("67890\n")); err != nil {
		t.Fatalf("write error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	if !bytes.Equal(data, []byte("67890\n")) {
		t.Fatalf("file = %q, want only the post-truncate write", data)
	}
}

func TestCappedWriterReopensAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	w, err := newCappedWriter(path, 1)
	if err != nil {
		t.Fatalf("newCappedWriter error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close error = %v", err)
	}
	if _, err := w.Write([]byte("back\n")); err != nil {
		t.Fatalf("write after close error = %v", err)
	}
	w.Close()
}
