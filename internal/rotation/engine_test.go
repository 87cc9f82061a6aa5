package rotation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/fs"
	"github.com/raoulx24/irotate/internal/logging"
)

func newEngine(t *testing.T, limit int) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	addr, err := address.Derive(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return New(addr, limit, logging.Nop(), nil), dir
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func existsWithContent(t *testing.T, path, want string) {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(b) != want {
		t.Fatalf("%s = %q, want %q", filepath.Base(path), b, want)
	}
}

func fileCount(t *testing.T, dir string, want int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != want {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("dir has %d files %v, want %d", len(entries), names, want)
	}
}

func TestHighestBackupIndex(t *testing.T) {
	e, dir := newEngine(t, 0)
	write(t, e.Address().Path(), "")

	got, err := e.HighestBackupIndex()
	if err != nil || got != 0 {
		t.Fatalf("no backups: got %d, %v", got, err)
	}

	for k := 1; k <= 3; k++ {
		write(t, e.Address().BackupPath(k), "")
		got, err := e.HighestBackupIndex()
		if err != nil || got != k {
			t.Fatalf("backups 1..%d: got %d, %v", k, got, err)
		}
	}

	// a gap stops the probe
	write(t, filepath.Join(dir, "a.5.txt"), "")
	got, err = e.HighestBackupIndex()
	if err != nil || got != 3 {
		t.Fatalf("with gap at 4: got %d, %v", got, err)
	}
}

func TestHighestBackupIndexIgnoresHigherWithoutOne(t *testing.T) {
	e, _ := newEngine(t, 0)
	write(t, e.Address().BackupPath(2), "")

	got, err := e.HighestBackupIndex()
	if err != nil || got != 0 {
		t.Fatalf("got %d, %v; want 0", got, err)
	}
}

func TestHighestBackupIndexProbeLimit(t *testing.T) {
	e, _ := newEngine(t, 3)
	for k := 1; k <= 4; k++ {
		write(t, e.Address().BackupPath(k), "")
	}

	if _, err := e.HighestBackupIndex(); !errors.Is(err, ErrProbeLimit) {
		t.Fatalf("err = %v, want ErrProbeLimit", err)
	}
}

func TestRotateWithoutBackups(t *testing.T) {
	e, dir := newEngine(t, 0)
	write(t, e.Address().Path(), "original content")

	if err := e.Rotate(context.Background(), 0); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	existsWithContent(t, e.Address().BackupPath(1), "original content")
	existsWithContent(t, e.Address().Path(), "")
	fileCount(t, dir, 2)
}

func TestRotateCascade(t *testing.T) {
	for k := 1; k <= 4; k++ {
		t.Run(fmt.Sprintf("from=%d", k), func(t *testing.T) {
			e, dir := newEngine(t, 0)
			write(t, e.Address().Path(), "base")
			for n := 1; n <= k; n++ {
				write(t, e.Address().BackupPath(n), fmt.Sprintf("backup-%d", n))
			}

			if err := e.Rotate(context.Background(), k); err != nil {
				t.Fatalf("Rotate(%d): %v", k, err)
			}

			existsWithContent(t, e.Address().Path(), "")
			existsWithContent(t, e.Address().BackupPath(1), "base")
			for n := 1; n <= k; n++ {
				existsWithContent(t, e.Address().BackupPath(n+1), fmt.Sprintf("backup-%d", n))
			}
			fileCount(t, dir, k+2)

			got, err := e.HighestBackupIndex()
			if err != nil || got != k+1 {
				t.Fatalf("highest after rotate = %d, %v; want %d", got, err, k+1)
			}
		})
	}
}

func TestRotateAtLimitDropsOldest(t *testing.T) {
	e, dir := newEngine(t, 2)
	write(t, e.Address().Path(), "base")
	write(t, e.Address().BackupPath(1), "one")
	write(t, e.Address().BackupPath(2), "two")

	got, err := e.RotateNow(context.Background())
	if err != nil {
		t.Fatalf("RotateNow: %v", err)
	}
	if got != 2 {
		t.Fatalf("highest = %d, want 2", got)
	}

	existsWithContent(t, e.Address().Path(), "")
	existsWithContent(t, e.Address().BackupPath(1), "base")
	existsWithContent(t, e.Address().BackupPath(2), "one")
	fileCount(t, dir, 3)
}

func TestPlanOrder(t *testing.T) {
	e, _ := newEngine(t, 0)
	a := e.Address()

	steps, err := e.Plan(3)
	if err != nil {
		t.Fatal(err)
	}

	want := []Step{
		{Op: OpRename, From: a.BackupPath(3), To: a.BackupPath(4)},
		{Op: OpRename, From: a.BackupPath(2), To: a.BackupPath(3)},
		{Op: OpRename, From: a.BackupPath(1), To: a.BackupPath(2)},
		{Op: OpRename, From: a.Path(), To: a.BackupPath(1)},
		{Op: OpCreate, From: a.Path()},
	}
	if len(steps) != len(want) {
		t.Fatalf("got %d steps %v, want %d", len(steps), steps, len(want))
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d = %s, want %s", i, steps[i], want[i])
		}
	}
}

func TestPlanRejectsOutOfRange(t *testing.T) {
	e, _ := newEngine(t, 5)
	for _, from := range []int{-1, 6} {
		if _, err := e.Plan(from); err == nil {
			t.Fatalf("Plan(%d) should fail", from)
		}
	}
}

// failingFS fails the nth rename and records every call.
type failingFS struct {
	fs.FS
	failAt  int
	renames int
	calls   []string
}

func (f *failingFS) Rename(ctx context.Context, oldPath, newPath string) error {
	f.renames++
	f.calls = append(f.calls, "rename "+filepath.Base(oldPath))
	if f.renames == f.failAt {
		return os.ErrPermission
	}
	return f.FS.Rename(ctx, oldPath, newPath)
}

func (f *failingFS) Touch(path string) error {
	f.calls = append(f.calls, "touch "+filepath.Base(path))
	return f.FS.Touch(path)
}

func TestRotateStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	addr, _ := address.Derive(filepath.Join(dir, "a.txt"))
	ffs := &failingFS{FS: fs.New(), failAt: 2}
	e := New(addr, 0, logging.Nop(), ffs)

	write(t, addr.Path(), "base")
	write(t, addr.BackupPath(1), "one")
	write(t, addr.BackupPath(2), "two")

	err := e.Rotate(context.Background(), 2)
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", err)
	}

	if len(ffs.calls) != 2 {
		t.Fatalf("calls after failure = %v, want exactly two renames", ffs.calls)
	}
	// first step ran, nothing rolled back
	existsWithContent(t, addr.BackupPath(3), "two")
	existsWithContent(t, addr.BackupPath(1), "one")
	existsWithContent(t, addr.Path(), "base")
}

func TestSizeExceeds(t *testing.T) {
	e, dir := newEngine(t, 0)
	write(t, e.Address().Path(), "01234567890123456789")

	over, err := e.SizeExceeds(10)
	if err != nil || !over {
		t.Fatalf("SizeExceeds(10) = %v, %v", over, err)
	}
	over, err = e.SizeExceeds(20)
	if err != nil || !over {
		t.Fatalf("SizeExceeds(20) at exactly 20 bytes = %v, %v", over, err)
	}
	over, err = e.SizeExceeds(21)
	if err != nil || over {
		t.Fatalf("SizeExceeds(21) = %v, %v", over, err)
	}

	if _, err := e.RotateNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	existsWithContent(t, filepath.Join(dir, "a.1.txt"), "01234567890123456789")
	existsWithContent(t, filepath.Join(dir, "a.txt"), "")
}

func TestSizeExceedsMissingFile(t *testing.T) {
	e, _ := newEngine(t, 0)

	over, err := e.SizeExceeds(10)
	if over {
		t.Fatal("missing file must not report exceeded")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}
