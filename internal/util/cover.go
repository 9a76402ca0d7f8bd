package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// CoverBase is the file name, without extension, of the downloaded cover.
const CoverBase = "cover"

var ErrCoverStatus = errors.New("cover: unexpected status")

var coverExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// FindCover returns the path of a previously downloaded cover in dir, or "".
func FindCover(dir string) string {
	matches, _ := filepath.Glob(filepath.Join(dir, CoverBase+".*"))
	for _, m := range matches {
		if filepath.Ext(m) == TempSuffix {
			continue
		}
		return m
	}

	return ""
}

// DownloadCover fetches rawURL into dir unless a cover already exists and
// force is false. It returns the path of the cover file.
func DownloadCover(ctx context.Context, c *http.Client, rawURL, dir string, force bool) (string, error) {
	if existing := FindCover(dir); existing != "" && !force {
		return existing, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")

	resp, err := DoWithRetry(c, req, 3, 500*time.Millisecond)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrCoverStatus, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	ext, ok := coverExt[http.DetectContentType(data)]
	if !ok {
		ext = ".webp"
	}

	if old := FindCover(dir); old != "" {
		_ = os.Remove(old)
	}

	out := filepath.Join(dir, CoverBase+ext)
	if err := WriteFileAtomic(out, data, 0644); err != nil {
		return "", err
	}

	return out, nil
}
