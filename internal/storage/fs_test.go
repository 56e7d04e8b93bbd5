package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("---\nid: 1\ntitle: A\n---\nx\n")
	if err := s.Write("1.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("1.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("2.md", []byte("bye"))
	if err := s.Delete("2.md"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err := s.Read("2.md")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("read after delete err = %v, want ErrNotExist", err)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("1.md", []byte("a"))
	_ = s.Write("2.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not a note"))
	_ = os.Mkdir(filepath.Join(s.Root(), "sub.md"), 0o755)

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Checksum == "" || items[0].Checksum == items[1].Checksum {
		t.Errorf("unexpected checksums: %+v", items)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"sub/1.md",
		"..",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("3.md", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("3.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("3.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.root, ".notes-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "notes-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestNoteIDAndPath(t *testing.T) {
	if got := NotePath(12); got != "12.md" {
		t.Errorf("NotePath(12) = %q", got)
	}
	if id, ok := NoteID("12.md"); !ok || id != 12 {
		t.Errorf("NoteID(12.md) = %d, %v", id, ok)
	}
	for _, bad := range []string{"012.md", "0.md", "-1.md", "abc.md", "12.txt", "12"} {
		if _, ok := NoteID(bad); ok {
			t.Errorf("NoteID(%q) should fail", bad)
		}
	}
}
