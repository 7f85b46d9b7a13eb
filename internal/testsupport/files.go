package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// StubVersionScript answers --version like mkvmerge and succeeds otherwise.
const StubVersionScript = `if [ "$1" = "--version" ]; then
  echo "mkvmerge v80.0 ('Roundabout') 64-bit"
fi
exit 0
`

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its absolute path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		t.Fatalf("abs %s: %v", target, err)
	}
	return abs
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// MediaPair creates a placeholder video and subtitle under dir and returns
// their paths.
func MediaPair(t testing.TB, dir, base string) (string, string) {
	t.Helper()
	video := filepath.Join(dir, base+".mp4")
	subtitle := filepath.Join(dir, base+".srt")
	WriteFile(t, video, 1024)
	WriteFile(t, subtitle, 64)
	return video, subtitle
}
