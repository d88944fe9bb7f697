package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
)

// Session owns a single headless browser and the one page reused for every
// navigation in a run. Close releases the browser exactly once.
type Session struct {
	cfg         *config.Config
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
	logger      *log.Entry
}

// NewSession launches the browser and opens the shared page.
func NewSession(cfg *config.Config) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("accept-lang", cfg.AcceptLanguage),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1280, 720),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so failures surface here
	// instead of on the first navigation.
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger := log.WithField("component", "browser")
	logger.WithField("headless", cfg.Headless).Info("Browser initialized")

	return &Session{
		cfg:         cfg,
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		logger:      logger,
	}, nil
}

// Context returns the browser tab context all actions run against.
func (s *Session) Context() context.Context {
	return s.ctx
}

// LoadPage navigates to url and waits for marker to be attached to the DOM,
// retrying up to MaxRetries with a fixed delay between attempts. It reports
// success as a boolean; exhaustion is not an error the caller can recover
// from within this run, only detect.
func (s *Session) LoadPage(targetURL, marker string) bool {
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		s.logger.WithFields(log.Fields{
			"url":     targetURL,
			"attempt": fmt.Sprintf("%d/%d", attempt, s.cfg.MaxRetries),
		}).Info("Loading page")

		if err := s.navigateAndWait(targetURL, marker); err == nil {
			s.logger.WithField("url", targetURL).Info("Page loaded successfully")
			return true
		} else {
			s.logger.WithError(err).Warnf("Attempt %d failed", attempt)
		}

		if attempt < s.cfg.MaxRetries {
			s.logger.Infof("Waiting %s before retry...", s.cfg.RetryDelay)
			time.Sleep(s.cfg.RetryDelay)
		}
	}
	return false
}

func (s *Session) navigateAndWait(targetURL, marker string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(targetURL)); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(s.ctx, s.cfg.MarkerTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(marker, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("marker %q not found: %w", marker, err)
	}

	// Give dynamic content a moment to settle.
	time.Sleep(2 * time.Second)
	return nil
}

// Navigate performs a direct navigation without the retry loop, waiting for
// marker within waitTimeout. Used for per-category and per-product visits
// where a failure is handled by the caller's own accounting.
func (s *Session) Navigate(targetURL, marker string, waitTimeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.cfg.NavigationTimeout)
	defer cancel()
	if err := chromedp.Run(navCtx, chromedp.Navigate(targetURL)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", targetURL, err)
	}

	waitCtx, cancel := context.WithTimeout(s.ctx, waitTimeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady(marker, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("marker %q not found on %s: %w", marker, targetURL, err)
	}
	return nil
}

// Close shuts the browser down. Safe to defer immediately after NewSession.
func (s *Session) Close() {
	s.logger.Info("Closing browser...")
	s.cancelCtx()
	s.cancelAlloc()
	s.logger.Info("Browser closed")
}
