package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"audioblog-go/internal/logger"
)

func TestVideoID(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/abc123", "abc123"},
		{"https://www.youtube.com/embed/abc123", "abc123"},
	}
	for _, c := range cases {
		got, err := videoID(c.url)
		if err != nil {
			t.Errorf("videoID(%q): %v", c.url, err)
			continue
		}
		if got != c.want {
			t.Errorf("videoID(%q) = %q, want %q", c.url, got, c.want)
		}
	}

	if _, err := videoID("https://example.com/nothing"); err == nil {
		t.Error("expected error for a URL without a video id")
	}
}

type fakeStrategy struct {
	name    string
	locator *AudioLocator
	err     error
	calls   int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Resolve(ctx context.Context, videoURL string) (*AudioLocator, error) {
	f.calls++
	return f.locator, f.err
}

func TestResolver_FirstUsableStrategyWins(t *testing.T) {
	blocked := &fakeStrategy{name: "a", err: errors.New("rate limited")}
	working := &fakeStrategy{name: "b", locator: &AudioLocator{URL: "https://cdn/audio", Bitrate: 128}}
	spare := &fakeStrategy{name: "c", locator: &AudioLocator{URL: "https://cdn/other"}}

	r := NewResolver(logger.New(), nil, blocked, working, spare)
	loc, err := r.ResolveAudio(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatalf("ResolveAudio: %v", err)
	}
	if loc.URL != "https://cdn/audio" {
		t.Errorf("URL = %q", loc.URL)
	}
	if spare.calls != 0 {
		t.Error("later strategies must not run once one succeeds")
	}
}

func TestResolver_AllStrategiesExhausted(t *testing.T) {
	a := &fakeStrategy{name: "a", err: errors.New("blocked")}
	b := &fakeStrategy{name: "b", err: errors.New("no formats")}

	r := NewResolver(logger.New(), nil, a, b)
	_, err := r.ResolveAudio(context.Background(), "https://youtu.be/x")

	if !errors.Is(err, ErrUnresolvable) {
		t.Fatalf("expected ErrUnresolvable, got %v", err)
	}
	// each strategy's own failure stays visible for diagnostics
	for _, frag := range []string{"a: blocked", "b: no formats"} {
		if !strings.Contains(err.Error(), frag) {
			t.Errorf("error should mention %q, got %v", frag, err)
		}
	}
}

func TestPickAudioFormat(t *testing.T) {
	formats := []streamFormat{
		{MimeType: "video/mp4", URL: "https://cdn/video", Bitrate: 2000000},
		{MimeType: "audio/webm; codecs=\"opus\"", URL: "https://cdn/low", Bitrate: 50000},
		{MimeType: "audio/mp4; codecs=\"mp4a.40.2\"", URL: "https://cdn/high", Bitrate: 130000},
		{MimeType: "audio/webm", SignatureCipher: "s=..."},
	}

	loc, err := pickAudioFormat(formats)
	if err != nil {
		t.Fatalf("pickAudioFormat: %v", err)
	}
	if loc.URL != "https://cdn/high" {
		t.Errorf("picked %q, want the highest-bitrate direct audio URL", loc.URL)
	}
}

func TestPickAudioFormat_AllCiphered(t *testing.T) {
	formats := []streamFormat{
		{MimeType: "audio/webm", SignatureCipher: "s=1"},
		{MimeType: "audio/mp4", SignatureCipher: "s=2"},
	}
	_, err := pickAudioFormat(formats)
	if err == nil || !strings.Contains(err.Error(), "ciphered") {
		t.Fatalf("expected ciphered-formats error, got %v", err)
	}
}

func TestOEmbed_Metadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != "https://youtu.be/x" {
			t.Errorf("url param = %q", got)
		}
		w.Write([]byte(`{"title":"Some Talk","author_name":"Some Channel","thumbnail_url":"https://img/x.jpg"}`))
	}))
	defer server.Close()

	o := &OEmbed{baseURL: server.URL, client: &http.Client{Timeout: time.Second}}
	meta, err := o.Metadata(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.Title != "Some Talk" || meta.Channel != "Some Channel" || meta.Thumbnail != "https://img/x.jpg" {
		t.Errorf("meta = %+v", meta)
	}
}

func TestDownload(t *testing.T) {
	payload := strings.Repeat("x", 4096)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer server.Close()

	dest := t.TempDir() + "/audio.m4a"
	n, err := Download(context.Background(), &AudioLocator{URL: server.URL}, dest)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("n = %d, want %d", n, len(payload))
	}
}

func TestDownload_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := Download(context.Background(), &AudioLocator{URL: server.URL}, t.TempDir()+"/a.m4a")
	if err == nil {
		t.Fatal("expected error for non-200 download")
	}
}
