package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
)

// PageLoader is the slice of Session the category extractor needs. Tests
// substitute a stub so no browser is involved.
type PageLoader interface {
	LoadPage(url, marker string) bool
	Context() context.Context
}

// LinkResolver produces the raw navigation entries of the loaded homepage.
// The production resolver reads hrefs straight from the DOM and falls back
// to click-and-observe only for entries missing one; tests substitute a
// stub that returns direct hrefs and skip the slow path entirely.
type LinkResolver interface {
	ResolveLinks(ctx context.Context) ([]MenuItem, error)
}

// CategoryScraper discovers product categories from the site's navigation
// menu and classifies them.
type CategoryScraper struct {
	cfg      *config.Config
	loader   PageLoader
	resolver LinkResolver
	logger   *log.Entry
}

func NewCategoryScraper(cfg *config.Config, session *Session) *CategoryScraper {
	return &CategoryScraper{
		cfg:      cfg,
		loader:   session,
		resolver: &domLinkResolver{menuSelector: cfg.MenuSelector},
		logger:   log.WithField("component", "categories"),
	}
}

// newCategoryScraperWith wires explicit collaborators; used by tests.
func newCategoryScraperWith(cfg *config.Config, loader PageLoader, resolver LinkResolver) *CategoryScraper {
	return &CategoryScraper{
		cfg:      cfg,
		loader:   loader,
		resolver: resolver,
		logger:   log.WithField("component", "categories"),
	}
}

// Extract loads the homepage, reads the navigation menu and returns the
// filtered, classified category list. A failed homepage load or resolver
// error yields a success=false result with an empty list; retries happen
// only inside the page loader.
func (s *CategoryScraper) Extract() CategoryResult {
	start := time.Now()
	homeURL := s.cfg.HomeURL()

	s.logger.WithField("url", homeURL).Info("Extracting categories")

	if !s.loader.LoadPage(homeURL, s.cfg.MenuSelector) {
		return s.failure(homeURL, start, fmt.Errorf("failed to load homepage after %d attempts", s.cfg.MaxRetries))
	}

	items, err := s.resolver.ResolveLinks(s.loader.Context())
	if err != nil {
		return s.failure(homeURL, start, fmt.Errorf("failed to resolve menu links: %w", err))
	}
	s.logger.Infof("Found %d total menu items", len(items))

	categories := FilterCategories(items, s.cfg.BaseURL)
	for i, c := range categories {
		s.logger.WithFields(log.Fields{
			"name": c.Name,
			"url":  c.URL,
			"type": c.CategoryType,
			"id":   c.ID,
		}).Infof("Category %d/%d", i+1, len(categories))
	}

	return CategoryResult{
		Success:    true,
		Data:       categories,
		Timestamp:  time.Now().UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Source:     homeURL,
	}
}

func (s *CategoryScraper) failure(source string, start time.Time, err error) CategoryResult {
	s.logger.WithError(err).Error("Category extraction failed")
	return CategoryResult{
		Success:    false,
		Data:       []Category{},
		Error:      err.Error(),
		Timestamp:  time.Now().UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Source:     source,
	}
}

// domLinkResolver reads menu anchors from the live page.
type domLinkResolver struct {
	menuSelector string
}

func (r *domLinkResolver) ResolveLinks(ctx context.Context) ([]MenuItem, error) {
	anchorSelector := r.menuSelector + " li a"

	js := fmt.Sprintf(`
		Array.from(document.querySelectorAll(%q)).map(a => ({
			name: (a.textContent || '').trim(),
			url: a.getAttribute('href') || '',
			id: a.getAttribute('id') || ''
		}))
	`, anchorSelector)

	var items []MenuItem
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &items)); err != nil {
		return nil, fmt.Errorf("menu evaluation failed: %w", err)
	}

	if missingURLs(items) {
		log.Warn("Some menu items missing URLs, trying click-based approach...")
		r.resolveByClicking(ctx, anchorSelector, items)
	}

	return items, nil
}

func missingURLs(items []MenuItem) bool {
	for _, it := range items {
		if it.URL == "" {
			return true
		}
	}
	return false
}

// resolveByClicking clicks each href-less anchor, records the resulting page
// URL and navigates back. Slow, and only runs for the affected subset.
func (r *domLinkResolver) resolveByClicking(ctx context.Context, anchorSelector string, items []MenuItem) {
	for i := range items {
		if items[i].URL != "" {
			continue
		}

		clickJS := fmt.Sprintf(`document.querySelectorAll(%q)[%d].click()`, anchorSelector, i)
		if err := chromedp.Run(ctx, chromedp.Evaluate(clickJS, nil)); err != nil {
			log.WithError(err).Warnf("Failed to click menu item %d", i)
			continue
		}
		time.Sleep(1 * time.Second)

		var current string
		if err := chromedp.Run(ctx, chromedp.Location(&current)); err != nil {
			log.WithError(err).Warnf("Failed to read URL for menu item %d", i)
		} else {
			items[i].URL = current
		}

		if err := chromedp.Run(ctx, chromedp.NavigateBack()); err != nil {
			log.WithError(err).Warnf("Failed to navigate back from menu item %d", i)
		}
		time.Sleep(1 * time.Second)
	}
}
