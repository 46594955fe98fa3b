package firmware

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenBundle(t *testing.T) {
	boot := writeFile(t, "boot.bin", make([]byte, 16))
	apps := []string{
		writeFile(t, "app1.bin", make([]byte, 32)),
		writeFile(t, "app2.bin", nil),
		writeFile(t, "app3.bin", make([]byte, 8)),
	}

	b, err := OpenBundle(boot, apps)
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer b.Close()

	all := b.All()
	if len(all) != 4 {
		t.Fatalf("All() returned %d images, want 4", len(all))
	}
	if all[0].Name != boot || all[0].Role != RoleBoot {
		t.Errorf("first image = %s (%v), want boot %s", all[0].Name, all[0].Role, boot)
	}
	for i, app := range apps {
		img := all[i+1]
		if img.Name != app {
			t.Errorf("image %d = %s, want %s", i+1, img.Name, app)
		}
		if img.Role != RoleApplication {
			t.Errorf("image %d role = %v, want application", i+1, img.Role)
		}
	}

	if got := b.TotalSize(); got != 56 {
		t.Errorf("TotalSize() = %d, want 56", got)
	}
}

func TestOpenBundleBootOnly(t *testing.T) {
	b, err := OpenBundle(writeFile(t, "boot.bin", []byte{1, 2, 3}), nil)
	if err != nil {
		t.Fatalf("OpenBundle() error = %v", err)
	}
	defer b.Close()

	if len(b.Applications) != 0 {
		t.Errorf("Applications = %d, want 0", len(b.Applications))
	}
	if len(b.All()) != 1 {
		t.Errorf("All() = %d images, want 1", len(b.All()))
	}
}

func TestOpenBundleErrors(t *testing.T) {
	dir := t.TempDir()
	boot := writeFile(t, "boot.bin", []byte{1})

	tests := []struct {
		name     string
		boot     string
		apps     []string
		contains []string
	}{
		{
			name:     "empty boot path",
			boot:     "",
			contains: []string{"boot image path cannot be empty"},
		},
		{
			name:     "missing boot",
			boot:     filepath.Join(dir, "nope.bin"),
			contains: []string{"nope.bin"},
		},
		{
			name:     "two missing applications",
			boot:     boot,
			apps:     []string{filepath.Join(dir, "a.bin"), filepath.Join(dir, "b.bin")},
			contains: []string{"a.bin", "b.bin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := OpenBundle(tt.boot, tt.apps)
			if err == nil {
				b.Close()
				t.Fatal("OpenBundle() should fail")
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
			if tt.boot != "" && !errors.Is(err, ErrFile) {
				t.Errorf("error = %v, want ErrFile", err)
			}
		})
	}
}

func TestBundleCloseJoinsErrors(t *testing.T) {
	failing := errors.New("close failed")
	b := &Bundle{
		Boot: NewImage("boot", RoleBoot, &failingCloser{err: failing}, 0),
		Applications: []*Image{
			FromBytes("app", RoleApplication, nil),
			NewImage("app2", RoleApplication, &failingCloser{err: failing}, 0),
		},
	}

	err := b.Close()
	if !errors.Is(err, failing) {
		t.Fatalf("Close() error = %v, want wrapping %v", err, failing)
	}
	if strings.Count(err.Error(), "close failed") != 2 {
		t.Errorf("Close() error = %q, want both failures", err)
	}
}

type failingCloser struct {
	err error
}

func (f *failingCloser) Read(p []byte) (int, error) { return 0, nil }
func (f *failingCloser) Close() error               { return f.err }
