// Package media resolves media attachments: it downloads the requested
// rendition and stores it on disk, returning a stable relative reference
// that the classifier embeds in the persisted record.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"twscraper/pkg/errors"
	"twscraper/pkg/logger"
	"twscraper/pkg/scraper"
)

// Resolver downloads media renditions into a base directory. Files are keyed
// by media ID, so resolving the same attachment twice is a no-op fetch.
type Resolver struct {
	httpClient *http.Client
	baseDir    string
	fetched    map[string]bool
	mu         sync.RWMutex
	logger     logger.Logger
}

var _ scraper.MediaResolver = (*Resolver)(nil)

// NewResolver creates a resolver storing media under baseDir.
func NewResolver(baseDir string, timeout time.Duration, log logger.Logger) (*Resolver, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &Resolver{
		httpClient: &http.Client{Timeout: timeout},
		baseDir:    baseDir,
		fetched:    make(map[string]bool),
		logger:     log,
	}, nil
}

// Resolve downloads the rendition at sourceURL and returns the stored file's
// path relative to the base directory.
func (r *Resolver) Resolve(ctx context.Context, platform, accountCode, sourceURL, mediaID string) (string, error) {
	rel := filepath.Join(platform, accountCode, mediaID+extensionOf(sourceURL))
	full := filepath.Join(r.baseDir, rel)

	if r.isFetched(rel, full) {
		return rel, nil
	}

	data, err := r.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	if err := r.save(full, data); err != nil {
		return "", err
	}

	r.mu.Lock()
	r.fetched[rel] = true
	r.mu.Unlock()

	r.logger.DebugWithFields("media resolved", map[string]interface{}{
		"media_id": mediaID,
		"path":     rel,
		"size":     len(data),
	})

	return rel, nil
}

func (r *Resolver) isFetched(rel, full string) bool {
	r.mu.RLock()
	known := r.fetched[rel]
	r.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(full); err == nil {
		r.mu.Lock()
		r.fetched[rel] = true
		r.mu.Unlock()
		return true
	}
	return false
}

func (r *Resolver) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("media download failed: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("media download returned status %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}

	return io.ReadAll(resp.Body)
}

// save writes atomically: temp file first, then rename.
func (r *Resolver) save(full string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create media subdirectory: %w", err)
	}

	tmp := full + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write media data: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// extensionOf derives a file extension from the rendition URL, ignoring the
// provider's ":size" suffix. Defaults to .jpg.
func extensionOf(sourceURL string) string {
	trimmed := sourceURL
	if idx := strings.LastIndex(trimmed, ":"); idx > strings.LastIndex(trimmed, "/") {
		trimmed = trimmed[:idx]
	}
	if ext := path.Ext(trimmed); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".jpg"
}
