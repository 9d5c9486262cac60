package dirstat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSizeSumsLeafFiles(t *testing.T) {
	dir := t.TempDir()
	mkTree(t, dir, nil, map[string]int{"a": 10, "b": 20, "c": 0, "d": 4096})

	size, failures, err := DirSize(context.Background(), dir, PolicyFatal)
	if err != nil {
		t.Fatalf("DirSize: %v", err)
	}

	if size != 4126 {
		t.Errorf("size = %d, want 4126", size)
	}

	if failures != 0 {
		t.Errorf("failures = %d, want 0", failures)
	}
}

func TestDirSizeCoversWholeSubtree(t *testing.T) {
	dir := t.TempDir()
	mkTree(t, dir, []string{"empty"}, map[string]int{
		"top":           100,
		"one/f":         200,
		"one/two/f":     300,
		"one/two/3/4/f": 400,
	})

	size, _, err := DirSize(context.Background(), dir, PolicyFatal)
	if err != nil {
		t.Fatalf("DirSize: %v", err)
	}

	if size != 1000 {
		t.Errorf("size = %d, want 1000", size)
	}
}

func TestDirSizeDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	mkTree(t, dir, nil, map[string]int{"own": 7})
	mkTree(t, other, nil, map[string]int{"big": 1 << 20})

	if err := os.Symlink(filepath.Join(other, "big"), filepath.Join(dir, "file-link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if err := os.Symlink(other, filepath.Join(dir, "dir-link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	size, _, err := DirSize(context.Background(), dir, PolicyFatal)
	if err != nil {
		t.Fatalf("DirSize: %v", err)
	}

	if size != 7 {
		t.Errorf("size = %d, want 7", size)
	}
}

func TestDirSizeUnreadableSubtree(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	dir := t.TempDir()
	mkTree(t, dir, nil, map[string]int{"ok": 50, "locked/hidden": 1000})

	locked := filepath.Join(dir, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	if _, _, err := DirSize(context.Background(), dir, PolicyFatal); err == nil {
		t.Fatal("expected an error under the fatal policy")
	}

	size, failures, err := DirSize(context.Background(), dir, PolicySkip)
	if err != nil {
		t.Fatalf("DirSize with skip policy: %v", err)
	}

	if size != 50 {
		t.Errorf("size = %d, want 50", size)
	}

	if failures < 1 {
		t.Errorf("failures = %d, want at least 1", failures)
	}
}

func TestDirSizeCanceled(t *testing.T) {
	dir := t.TempDir()
	mkTree(t, dir, nil, map[string]int{"a/f": 1, "b/f": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := DirSize(ctx, dir, PolicySkip); err == nil {
		t.Fatal("expected an error for a canceled context")
	}
}
