// Package snapshot renders dashboard pages to PNG with headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"osaka-mansion/config"
	"osaka-mansion/models"
	"osaka-mansion/utils"
)

// Target is one dashboard page to capture.
type Target struct {
	Name string
	URL  string
}

// Snapshotter captures dashboard pages concurrently.
type Snapshotter struct {
	cfg    *config.Config
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.KeySet
	retry  *utils.RetryConfig
}

// New creates a ready-to-use Snapshotter.
func New(cfg *config.Config, logger *utils.Logger) *Snapshotter {
	return &Snapshotter{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewKeySet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}
}

// Targets builds the pages to capture: the overview with criteria c and,
// when perWard is set, one page per ward with the same numeric ranges.
func Targets(baseURL string, c models.Criteria, wards []string, perWard bool) []Target {
	targets := []Target{{Name: "overview", URL: pageURL(baseURL, c)}}
	if !perWard {
		return targets
	}

	for _, w := range wards {
		wc := c
		wc.Wards = []string{w}
		targets = append(targets, Target{Name: w, URL: pageURL(baseURL, wc)})
	}
	return targets
}

// Capture renders each target to <SnapshotDir>/<name>.png and returns the
// written paths. Duplicate URLs are captured once.
func (s *Snapshotter) Capture(ctx context.Context, targets []Target) ([]string, error) {
	if err := os.MkdirAll(s.cfg.SnapshotDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	chromeBin := findChromeBinary(s.cfg.ChromeBin)
	s.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1400, 1000),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// The browser process is owned by this context; tabs are created from it.
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("snapshot: start browser: %w", err)
	}

	results := make(chan string, len(targets))
	for _, t := range targets {
		t := t
		if !s.seen.Add(t.URL) {
			s.logger.Debug("[snapshot] Duplicate target skipped: %s", t.URL)
			continue
		}

		s.pool.Submit(func() error {
			path := filepath.Join(s.cfg.SnapshotDir, FileName(t.Name))
			if err := s.captureOne(browserCtx, t, path); err != nil {
				s.logger.Warn("[snapshot] %s failed: %v", t.Name, err)
				return fmt.Errorf("snapshot %s: %w", t.Name, err)
			}
			s.logger.Info("[snapshot] Saved %s", path)
			results <- path
			return nil
		})
	}
	err := s.pool.Wait()
	close(results)
	s.logger.Debug("[snapshot] %d unique of %d targets", s.seen.Size(), len(targets))

	var paths []string
	for p := range results {
		paths = append(paths, p)
	}
	return paths, err
}

func (s *Snapshotter) captureOne(browserCtx context.Context, t Target, path string) error {
	var buf []byte

	err := s.retry.Do(browserCtx, "capture-"+t.Name, func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 30*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(t.URL),
			chromedp.WaitVisible("main", chromedp.ByQuery),
			chromedp.FullScreenshot(&buf, 100),
		)
	})
	if err != nil {
		return err
	}

	return os.WriteFile(path, buf, 0644)
}

// FileName maps a target name to a safe PNG file name.
func FileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" {
		clean = "snapshot"
	}
	return clean + ".png"
}

func pageURL(baseURL string, c models.Criteria) string {
	q := url.Values{}
	for _, w := range c.Wards {
		q.Add("ward", w)
	}
	q.Set("area_min", formatBound(c.Area.Min))
	q.Set("area_max", formatBound(c.Area.Max))
	q.Set("age_min", formatBound(c.Age.Min))
	q.Set("age_max", formatBound(c.Age.Max))
	q.Set("dist_min", formatBound(c.Distance.Min))
	q.Set("dist_max", formatBound(c.Distance.Max))
	return strings.TrimRight(baseURL, "/") + "/?" + q.Encode()
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}

// findChromeBinary locates Chrome/Chromium, preferring the configured path.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
