package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/fileutil"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCopyFileVerified(t *testing.T) {
	src := writeTemp(t, "src.mp4", "final video payload")
	dst := filepath.Join(t.TempDir(), "dst.mp4")

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		t.Fatalf("CopyFileVerified: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "final video payload" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestCopyFileVerifiedMissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "dst.mp4")
	if err := fileutil.CopyFileVerified(filepath.Join(t.TempDir(), "missing"), dst); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMoveFileRemovesSource(t *testing.T) {
	src := writeTemp(t, "src.mp4", "payload")
	dst := filepath.Join(filepath.Dir(src), "dst.mp4")

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source to be gone after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected destination to exist: %v", err)
	}
}

func TestCopyFileModeSetsPermissions(t *testing.T) {
	src := writeTemp(t, "src", "data")
	dst := filepath.Join(t.TempDir(), "dst")

	if err := fileutil.CopyFileMode(src, dst, 0o600); err != nil {
		t.Fatalf("CopyFileMode: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %v", info.Mode().Perm())
	}
}
