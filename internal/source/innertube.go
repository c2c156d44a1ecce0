package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const innertubeURL = "https://www.youtube.com/youtubei/v1/player"

// ClientProfile is one client identity presented to the player API. Different
// identities get served different format sets; the android profile usually
// receives directly fetchable URLs where the web profile gets ciphered ones.
type ClientProfile struct {
	Name      string
	Version   string
	UserAgent string
}

var (
	AndroidProfile = ClientProfile{
		Name:      "ANDROID",
		Version:   "19.09.37",
		UserAgent: "com.google.android.youtube/19.09.37 (Linux; U; Android 11) gzip",
	}
	WebProfile = ClientProfile{
		Name:      "WEB",
		Version:   "2.20240304.00.00",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
)

// PlayerStrategy asks the innertube player API for stream formats under one
// client identity.
type PlayerStrategy struct {
	profile ClientProfile
	cookies string
	client  *http.Client
}

func NewPlayerStrategy(profile ClientProfile, cookies string) *PlayerStrategy {
	return &PlayerStrategy{
		profile: profile,
		cookies: cookies,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *PlayerStrategy) Name() string {
	return "player-" + s.profile.Name
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	StreamingData struct {
		AdaptiveFormats []streamFormat `json:"adaptiveFormats"`
		Formats         []streamFormat `json:"formats"`
	} `json:"streamingData"`
}

type streamFormat struct {
	URL             string `json:"url"`
	MimeType        string `json:"mimeType"`
	Bitrate         int    `json:"bitrate"`
	SignatureCipher string `json:"signatureCipher"`
}

func (s *PlayerStrategy) Resolve(ctx context.Context, videoURL string) (*AudioLocator, error) {
	id, err := videoID(videoURL)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"videoId": id,
		"context": map[string]interface{}{
			"client": map[string]interface{}{
				"clientName":    s.profile.Name,
				"clientVersion": s.profile.Version,
				"hl":            "en",
			},
		},
	}
	body, _ := json.Marshal(payload)

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", innertubeURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", s.profile.UserAgent)
		if s.cookies != "" {
			req.Header.Set("Cookie", s.cookies)
		}
		return req, nil
	}

	var parsed playerResponse
	if err := doJSON(ctx, s.client, build, &parsed); err != nil {
		return nil, err
	}

	if parsed.PlayabilityStatus.Status != "OK" {
		return nil, fmt.Errorf("video not playable: %s (%s)",
			parsed.PlayabilityStatus.Status, parsed.PlayabilityStatus.Reason)
	}

	return pickAudioFormat(parsed.StreamingData.AdaptiveFormats)
}

// pickAudioFormat returns the highest-bitrate audio-only format with a direct
// URL. Ciphered formats would need a player-JS deciphering step this strategy
// cannot perform, so they are not usable here; a later profile in the chain
// usually serves direct URLs instead.
func pickAudioFormat(formats []streamFormat) (*AudioLocator, error) {
	var audio []streamFormat
	ciphered := 0
	for _, f := range formats {
		if !isAudioMime(f.MimeType) {
			continue
		}
		if f.URL == "" {
			if f.SignatureCipher != "" {
				ciphered++
			}
			continue
		}
		audio = append(audio, f)
	}
	if len(audio) == 0 {
		if ciphered > 0 {
			return nil, fmt.Errorf("all %d audio formats are ciphered", ciphered)
		}
		return nil, fmt.Errorf("no audio formats in player response")
	}

	sort.Slice(audio, func(i, j int) bool { return audio[i].Bitrate > audio[j].Bitrate })
	best := audio[0]
	return &AudioLocator{URL: best.URL, MimeType: best.MimeType, Bitrate: best.Bitrate}, nil
}

func isAudioMime(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "audio/"
}

// doJSON runs one request with transport-level retries on 5xx and network
// errors. The request is rebuilt per attempt so its body can be re-read.
// Non-retryable statuses abort immediately.
func doJSON(ctx context.Context, client *http.Client, build func() (*http.Request, error), target interface{}) error {
	bo := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	var lastErr error
	op := func() error {
		req, err := build()
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error: status %d", resp.StatusCode)
			return lastErr
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("json decode error: %v", err)
			return backoff.Permanent(lastErr)
		}
		return nil
	}
	if err := backoff.Retry(op, bo); err != nil {
		return lastErr
	}
	return nil
}
