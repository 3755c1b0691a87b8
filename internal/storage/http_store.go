package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// BucketConfig configures the hosted bucket-API store.
type BucketConfig struct {
	BaseURL string        // e.g. https://storage.example.com/v1
	APIKey  string        // bearer token, optional
	Bucket  string        // bucket name, e.g. "resumes"
	Timeout time.Duration // http client timeout
}

// BucketStore downloads objects from a hosted storage service over HTTP.
type BucketStore struct {
	cfg    BucketConfig
	http   *http.Client
	logger *slog.Logger
}

func NewBucketStore(cfg BucketConfig, logger *slog.Logger) *BucketStore {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketStore{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (s *BucketStore) Download(ctx context.Context, ref string) ([]byte, error) {
	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/object/" + s.cfg.Bucket + "/" + ref

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			s.logger.Warn("storage response body close error", "error", cerr)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("storage status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read storage body: %w", err)
	}
	s.logger.Debug("storage.download.ok",
		"ref", ref, "bytes", len(data), "elapsed_ms", time.Since(start).Milliseconds())
	return data, nil
}
