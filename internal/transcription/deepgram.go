package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"audioblog-go/internal/config"
	"audioblog-go/internal/logger"
)

const deepgramBaseURL = "https://api.deepgram.com"

// Deepgram calls the prerecorded listen endpoint with the raw audio body.
type Deepgram struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
	ErrCode string `json:"err_code,omitempty"`
	ErrMsg  string `json:"err_msg,omitempty"`
}

func NewDeepgram(apiKey string, timeout time.Duration, log *logger.Logger) *Deepgram {
	return &Deepgram{
		apiKey:  apiKey,
		baseURL: deepgramBaseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (d *Deepgram) Transcribe(ctx context.Context, audioPath, languageHint string) (string, error) {
	size, err := checkSource(audioPath)
	if err != nil {
		return "", err
	}
	if d.apiKey == "" {
		return "", &config.MissingCredentialError{Which: "DEEPGRAM_API_KEY"}
	}

	log := d.log.WithField("module", "transcription")
	log.WithFields(map[string]interface{}{"audio_path": audioPath, "bytes": size}).Info("starting transcription")

	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio source: %w", err)
	}
	defer f.Close()

	q := url.Values{}
	q.Set("model", "nova-2")
	q.Set("smart_format", "true")
	q.Set("punctuate", "true")
	if languageHint != "" {
		q.Set("language", languageHint)
	}
	endpoint := d.baseURL + "/v1/listen?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, f)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/*")
	req.ContentLength = size

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: "deepgram", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "deepgram", Message: fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))}
	}

	var parsed listenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ProviderError{Provider: "deepgram", Message: fmt.Sprintf("json decode error: %v body=%s", err, string(body))}
	}
	if parsed.ErrMsg != "" {
		return "", &ProviderError{Provider: "deepgram", Message: parsed.ErrMsg}
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", ErrEmptyTranscript
	}
	transcript := parsed.Results.Channels[0].Alternatives[0].Transcript
	if transcript == "" {
		return "", ErrEmptyTranscript
	}

	log.WithField("transcript_len", len(transcript)).Info("transcription completed")
	return transcript, nil
}
