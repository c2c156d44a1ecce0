package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Download streams the resolved audio to destPath and returns the byte count.
// Stream URLs are single-shot and expire quickly, so this is not retried; an
// interrupted download fails the staging stage and the whole run is re-tried
// by the caller if at all.
func Download(ctx context.Context, locator *AudioLocator, destPath string) (int64, error) {
	client := &http.Client{Timeout: 10 * time.Minute}

	req, err := http.NewRequestWithContext(ctx, "GET", locator.URL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download audio: status %d", resp.StatusCode)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("download audio: %w", err)
	}
	return n, nil
}
