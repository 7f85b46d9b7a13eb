package merge

import (
	"reflect"
	"testing"

	"submerge/internal/registry"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		video  string
		suffix string
		ext    string
		want   string
	}{
		{"mp4", "/a/b.mp4", "merged", "mkv", "/a/b.merged.mkv"},
		{"mkv input", "/a/b.mkv", "merged", "mkv", "/a/b.merged.mkv"},
		{"multiple dots", "/media/show.s01e01.avi", "merged", "mkv", "/media/show.s01e01.merged.mkv"},
		{"no extension", "/a/movie", "merged", "mkv", "/a/movie.merged.mkv"},
		{"leading dot name", "/a/.hidden", "merged", "mkv", "/a/.hidden.merged.mkv"},
		{"dotted directory", "/a.b/movie", "merged", "mkv", "/a.b/movie.merged.mkv"},
		{"trailing dot", "/a/movie.", "merged", "mkv", "/a/movie.merged.mkv"},
		{"custom suffix and ext", "/a/b.mp4", ".subbed.", ".MKA", "/a/b.subbed.MKA"},
		{"empty suffix", "/a/b.mp4", "", "mkv", "/a/b.mkv"},
		{"empty ext defaults", "/a/b.mp4", "merged", "", "/a/b.merged.mkv"},
		{"spaces", "/home/u/My Movie.mov", "merged", "mkv", "/home/u/My Movie.merged.mkv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OutputPath(tt.video, tt.suffix, tt.ext)
			if got != tt.want {
				t.Fatalf("OutputPath(%q) = %q, want %q", tt.video, got, tt.want)
			}
			if again := OutputPath(tt.video, tt.suffix, tt.ext); again != got {
				t.Fatalf("OutputPath not deterministic: %q vs %q", got, again)
			}
		})
	}
}

func TestBuildArgs(t *testing.T) {
	req, err := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "fra")
	if err != nil {
		t.Fatalf("NewMergeRequest: %v", err)
	}
	got := BuildArgs(req, OutputPath(req.VideoPath(), "merged", "mkv"))
	want := []string{
		"-o", "/a/b.merged.mkv",
		"--language", "0:fra",
		"/a/b.mp4",
		"--language", "0:fra",
		"/a/b.srt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildArgs() = %q, want %q", got, want)
	}
}

func TestLastLine(t *testing.T) {
	tests := map[string]string{
		"":                                 "",
		"\n\n  \n":                         "",
		"one":                              "one",
		"Progress: 100%\r\nError: bad\r\n": "Error: bad",
		"first\nsecond\n\n":                "second",
	}
	for input, want := range tests {
		if got := lastLine([]byte(input)); got != want {
			t.Errorf("lastLine(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestOutcomeDisplay(t *testing.T) {
	ok := success("/a/b.merged.mkv", 0)
	if got := ok.Display(); got != "Merged: /a/b.merged.mkv" {
		t.Fatalf("success display = %q", got)
	}
	failed := failure(KindExit, ErrToolExit, "mkvmerge exited with code 2", 2, 0)
	if got := failed.Display(); got != "Merge failed: mkvmerge exited with code 2" {
		t.Fatalf("failure display = %q", got)
	}
}
