package registry_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"submerge/internal/registry"
)

func TestReadinessTruthTable(t *testing.T) {
	tests := []struct {
		name  string
		steps func(r *registry.Registry)
		ready bool
	}{
		{name: "empty", steps: func(*registry.Registry) {}, ready: false},
		{name: "video only", steps: func(r *registry.Registry) { r.SetVideo("/a/b.mp4") }, ready: false},
		{name: "subtitle only", steps: func(r *registry.Registry) { r.SetSubtitle("/a/b.srt") }, ready: false},
		{name: "both", steps: func(r *registry.Registry) {
			r.SetVideo("/a/b.mp4")
			r.SetSubtitle("/a/b.srt")
		}, ready: true},
		{name: "subtitle then video", steps: func(r *registry.Registry) {
			r.SetSubtitle("/a/b.srt")
			r.SetVideo("/a/b.mp4")
		}, ready: true},
		{name: "both then reset", steps: func(r *registry.Registry) {
			r.SetVideo("/a/b.mp4")
			r.SetSubtitle("/a/b.srt")
			r.Reset()
		}, ready: false},
		{name: "blank path clears slot", steps: func(r *registry.Registry) {
			r.SetVideo("/a/b.mp4")
			r.SetSubtitle("/a/b.srt")
			r.SetVideo("   ")
		}, ready: false},
		{name: "reset then refill", steps: func(r *registry.Registry) {
			r.SetVideo("/a/b.mp4")
			r.Reset()
			r.SetVideo("/c/d.mkv")
			r.SetSubtitle("/c/d.ass")
		}, ready: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := registry.New("eng")
			tt.steps(r)
			if got := r.IsReady(); got != tt.ready {
				t.Fatalf("IsReady() = %v, want %v", got, tt.ready)
			}
			if snap := r.Snapshot(); snap.Ready != tt.ready {
				t.Fatalf("Snapshot().Ready = %v, want %v", snap.Ready, tt.ready)
			}
		})
	}
}

func TestSetOverwritesPreviousPath(t *testing.T) {
	r := registry.New("eng")
	r.SetVideo("/first.mp4")
	r.SetVideo("/second.mp4")
	r.SetSubtitle("/subs.srt")

	req, err := r.Request()
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.VideoPath() != "/second.mp4" {
		t.Fatalf("expected latest video path, got %q", req.VideoPath())
	}
}

func TestSetLanguageRejectsUnsupported(t *testing.T) {
	r := registry.New("eng")
	if err := r.SetLanguage("fra"); err != nil {
		t.Fatalf("SetLanguage(fra): %v", err)
	}
	err := r.SetLanguage("xyz")
	if !errors.Is(err, registry.ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	if got := r.Language(); got != "fra" {
		t.Fatalf("language changed after rejection: %q", got)
	}
}

func TestSetLanguageNormalizesInput(t *testing.T) {
	r := registry.New("eng")
	if err := r.SetLanguage("de"); err != nil {
		t.Fatalf("SetLanguage(de): %v", err)
	}
	if got := r.Language(); got != "deu" {
		t.Fatalf("Language() = %q, want deu", got)
	}
}

func TestResetClearsSlotsAndRestoresDefault(t *testing.T) {
	r := registry.New("spa")
	r.SetVideo("/a/b.mp4")
	r.SetSubtitle("/a/b.srt")
	if err := r.SetLanguage("jpn"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	r.Reset()
	r.Reset()

	snap := r.Snapshot()
	if snap.Video.Present || snap.Subtitle.Present || snap.Video.Path != "" || snap.Subtitle.Path != "" {
		t.Fatalf("expected empty slots, got %+v", snap)
	}
	if snap.Language.Code != "spa" {
		t.Fatalf("expected default language restored, got %q", snap.Language.Code)
	}
	if _, err := r.Request(); !errors.Is(err, registry.ErrNotReady) {
		t.Fatalf("expected ErrNotReady after reset, got %v", err)
	}
}

func TestNewFallsBackForUnsupportedDefault(t *testing.T) {
	if got := registry.New("klingon").Language(); got != "eng" {
		t.Fatalf("Language() = %q, want eng", got)
	}
}

func TestSnapshotRevisionIncreases(t *testing.T) {
	r := registry.New("eng")
	first := r.Snapshot().Revision
	r.SetVideo("/a.mp4")
	second := r.Snapshot().Revision
	if second <= first {
		t.Fatalf("expected revision to increase: %d -> %d", first, second)
	}
	if err := r.SetLanguage("xyz"); err == nil {
		t.Fatal("expected error")
	}
	if r.Snapshot().Revision != second {
		t.Fatal("rejected language change must not bump revision")
	}
}

func TestNewMergeRequestValidates(t *testing.T) {
	if _, err := registry.NewMergeRequest("", "/a.srt", "eng"); !errors.Is(err, registry.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, err := registry.NewMergeRequest("/a.mp4", "/a.srt", "zzz"); !errors.Is(err, registry.ErrInvalidLanguage) {
		t.Fatalf("expected ErrInvalidLanguage, got %v", err)
	}
	req, err := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "French")
	if err != nil {
		t.Fatalf("NewMergeRequest: %v", err)
	}
	if req.VideoPath() != "/a/b.mp4" || req.SubtitlePath() != "/a/b.srt" || req.Language() != "fra" {
		t.Fatalf("unexpected request %s", req)
	}
}

func TestApplyEvents(t *testing.T) {
	r := registry.New("eng")
	for _, ev := range []registry.Event{
		registry.VideoEvent("/a.mp4"),
		registry.SubtitleEvent("/a.srt"),
		registry.LanguageEvent("ita"),
	} {
		if err := r.Apply(ev); err != nil {
			t.Fatalf("Apply(%v): %v", ev, err)
		}
	}
	if !r.IsReady() || r.Language() != "ita" {
		t.Fatalf("unexpected state %+v", r.Snapshot())
	}
	if err := r.Apply(registry.Event{Kind: "bogus"}); err == nil {
		t.Fatal("expected error for unknown event kind")
	}
	if err := r.Apply(registry.ResetEvent()); err != nil {
		t.Fatalf("Apply(reset): %v", err)
	}
	if r.IsReady() {
		t.Fatal("expected not ready after reset event")
	}
}

func TestSubscribeDeliversLatestSnapshot(t *testing.T) {
	r := registry.New("eng")
	updates, cancel := r.Subscribe()
	defer cancel()

	r.SetVideo("/a.mp4")
	r.SetSubtitle("/a.srt")

	select {
	case snap := <-updates:
		if !snap.Ready {
			t.Fatalf("expected latest snapshot to be ready, got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Fatal("expected channel closed after cancel")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := registry.New("eng")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.SetVideo("/v.mp4")
				r.SetSubtitle("/s.srt")
				r.Reset()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := r.Snapshot()
				if snap.Ready != (snap.Video.Present && snap.Subtitle.Present) {
					t.Errorf("inconsistent snapshot %+v", snap)
					return
				}
				if req, err := r.Request(); err == nil && (req.VideoPath() == "" || req.SubtitlePath() == "") {
					t.Errorf("request with missing path %s", req)
					return
				}
			}
		}()
	}
	wg.Wait()
}
