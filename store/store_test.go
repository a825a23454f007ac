package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/osymandias-go/slippymap/tile"
)

func writeTile(t *testing.T, root string, addr tile.Address, data []byte) {
	t.Helper()
	p := DefaultPathFunc(root, addr)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStoreOpenReturnsBytes(t *testing.T) {
	root := t.TempDir()
	addr := tile.Address{Z: 3, X: 1, Y: 2}
	writeTile(t, root, addr, []byte("fake png bytes"))

	s := NewFileStore(root, nil)
	rc, err := s.Open(addr)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fake png bytes" {
		t.Fatalf("got %q", data)
	}
}

func TestFileStoreOpenMissingIsNotFound(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	_, err := s.Open(tile.Address{Z: 3, X: 1, Y: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFileStoreOpenOutOfRangeIsNotFound(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	_, err := s.Open(tile.Address{Z: 2, X: 9, Y: 0})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCustomPathFunc(t *testing.T) {
	root := t.TempDir()
	addr := tile.Address{Z: 4, X: 5, Y: 6}

	custom := func(root string, a tile.Address) string {
		return filepath.Join(root, "flat-"+a.String()+".png")
	}
	p := custom(root, addr)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(root, custom)
	rc, err := s.Open(addr)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	rc.Close()
}
