package safety_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pin-go/internal/safety"
	"pin-go/internal/testutil"
)

func TestBackupName(t *testing.T) {
	hash := "abc12345" + strings.Repeat("0", 56)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "keeps extension", path: "/pics/photo.jpg", want: "photo_abc12345.jpg"},
		{name: "no extension", path: "/docs/README", want: "README_abc12345.bak"},
		{name: "only last extension moves", path: "/a/archive.tar.gz", want: "archive.tar_abc12345.gz"},
		{name: "leading dot is not an extension", path: "/home/.bashrc", want: ".bashrc_abc12345.bak"},
		{name: "empty extension", path: "/x/name.", want: "name_abc12345.bak"},
		{name: "relative path", path: "photo.PNG", want: "photo_abc12345.PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safety.BackupName(tt.path, hash); got != tt.want {
				t.Errorf("BackupName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestHashFile(t *testing.T) {
	t.Run("matches known SHA-256", func(t *testing.T) {
		dir := t.TempDir()
		p := testutil.WriteFile(t, dir, "hello.txt", []byte("hello world"))

		got, err := safety.HashFile(p)
		if err != nil {
			t.Fatalf("HashFile() error = %v", err)
		}
		want := "b94d27b9934d3e08a52ee52d7da7dabfac484efe37a5380ee9088f7ace2efcde"
		if got != want {
			t.Errorf("HashFile() = %s, want %s", got, want)
		}
	})

	t.Run("is stable across calls", func(t *testing.T) {
		dir := t.TempDir()
		// Larger than one read chunk.
		content := []byte(strings.Repeat("0123456789abcdef", 2048))
		p := testutil.WriteFile(t, dir, "big.bin", content)

		first, err := safety.HashFile(p)
		if err != nil {
			t.Fatalf("HashFile() error = %v", err)
		}
		second, _ := safety.HashFile(p)
		if first != second {
			t.Errorf("HashFile() not deterministic: %s != %s", first, second)
		}
		if first != testutil.SHA256Hex(content) {
			t.Errorf("HashFile() = %s, want %s", first, testutil.SHA256Hex(content))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := safety.HashFile(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("HashFile() error = nil, want error")
		}
	})
}

func TestIndex(t *testing.T) {
	t.Run("missing index is empty", func(t *testing.T) {
		sidecar := filepath.Join(t.TempDir(), ".safety_net")

		entries, err := safety.ReadIndex(sidecar)
		if err != nil {
			t.Fatalf("ReadIndex() error = %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("ReadIndex() = %v, want empty", entries)
		}
		found, err := safety.IndexContains(sidecar, "abc")
		if err != nil || found {
			t.Errorf("IndexContains() = %v, %v, want false, nil", found, err)
		}
	})

	t.Run("append preserves order and tolerates repeats", func(t *testing.T) {
		sidecar := t.TempDir()
		for _, h := range []string{"aaa", "bbb", "aaa"} {
			if err := safety.AppendIndex(sidecar, h); err != nil {
				t.Fatalf("AppendIndex(%s) error = %v", h, err)
			}
		}

		entries, err := safety.ReadIndex(sidecar)
		if err != nil {
			t.Fatalf("ReadIndex() error = %v", err)
		}
		if strings.Join(entries, ",") != "aaa,bbb,aaa" {
			t.Errorf("ReadIndex() = %v", entries)
		}

		raw, _ := os.ReadFile(safety.IndexPath(sidecar))
		if string(raw) != "aaa\nbbb\naaa\n" {
			t.Errorf("index bytes = %q", raw)
		}
	})

	t.Run("membership is exact line match", func(t *testing.T) {
		sidecar := t.TempDir()
		safety.AppendIndex(sidecar, "abcdef")

		for hash, want := range map[string]bool{"abcdef": true, "abc": false, "abcdefg": false} {
			got, err := safety.IndexContains(sidecar, hash)
			if err != nil {
				t.Fatalf("IndexContains() error = %v", err)
			}
			if got != want {
				t.Errorf("IndexContains(%q) = %v, want %v", hash, got, want)
			}
		}
	})

	t.Run("oversized line does not break later lookups", func(t *testing.T) {
		sidecar := t.TempDir()
		junk := strings.Repeat("x", 256*1024)
		if err := os.WriteFile(safety.IndexPath(sidecar), []byte(junk+"\nabcdef"), 0644); err != nil {
			t.Fatalf("writing index: %v", err)
		}

		found, err := safety.IndexContains(sidecar, "abcdef")
		if err != nil {
			t.Fatalf("IndexContains() error = %v", err)
		}
		if !found {
			t.Error("IndexContains() = false, want true for line after oversized entry")
		}
		entries, err := safety.ReadIndex(sidecar)
		if err != nil {
			t.Fatalf("ReadIndex() error = %v", err)
		}
		if len(entries) != 2 || len(entries[0]) != len(junk) {
			t.Errorf("ReadIndex() returned %d entries", len(entries))
		}
	})
}

func TestIsSidecar(t *testing.T) {
	if !safety.IsSidecar(".safety_net") {
		t.Error("IsSidecar(.safety_net) = false")
	}
	for _, name := range []string{"safety_net", ".safety_net2", "photos"} {
		if safety.IsSidecar(name) {
			t.Errorf("IsSidecar(%q) = true", name)
		}
	}
	if got := safety.SidecarDir("/pics"); got != filepath.Join("/pics", ".safety_net") {
		t.Errorf("SidecarDir() = %q", got)
	}
}
