package scraper

import (
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
	"catalogcrawler/utils"
)

// FallbackCategoryScraper discovers categories without a browser by
// fetching the homepage HTML directly. It cannot trigger scripts, so it is
// only suitable for the navigation menu, which is server-rendered; use it
// when a full browser is unavailable or the normal path keeps timing out.
type FallbackCategoryScraper struct {
	cfg    *config.Config
	logger *log.Entry
}

func NewFallbackCategoryScraper(cfg *config.Config) *FallbackCategoryScraper {
	return &FallbackCategoryScraper{
		cfg:    cfg,
		logger: log.WithField("component", "categories-fallback"),
	}
}

// menuAnchorSelectors covers the menu markup variants observed on the site.
const menuAnchorSelectors = "ul.sf-menu li a, #DDMenuTop a, nav ul li a"

// Extract fetches the homepage over plain HTTP and runs the same filter
// and classification pipeline as the browser-based extractor.
func (s *FallbackCategoryScraper) Extract() CategoryResult {
	start := time.Now()

	c := colly.NewCollector(
		colly.UserAgent(s.cfg.UserAgent),
		colly.AllowedDomains(s.allowedDomains()...),
	)
	c.WithTransport(utils.NewThrottledTransport(1, 1))

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", s.cfg.AcceptLanguage)
		s.logger.WithField("url", r.URL.String()).Info("Fetching page")
	})

	var items []MenuItem
	seen := make(map[string]bool)
	c.OnHTML(menuAnchorSelectors, func(e *colly.HTMLElement) {
		item := MenuItem{
			Name: cleanString(e.Text),
			URL:  e.Attr("href"),
			ID:   e.Attr("id"),
		}
		key := item.Name + "|" + item.URL
		if item.Name == "" || seen[key] {
			return
		}
		seen[key] = true
		items = append(items, item)
	})

	var lastErr error
	c.OnError(func(r *colly.Response, err error) {
		s.logger.WithFields(log.Fields{
			"url":         r.Request.URL.String(),
			"status_code": r.StatusCode,
		}).WithError(err).Error("Request failed")
		lastErr = err
	})

	// The localized homepage path sometimes 404s behind CDNs; try the root
	// first, then the explicit homepage.
	source := s.cfg.BaseURL + "/"
	for _, target := range []string{s.cfg.BaseURL + "/", s.cfg.HomeURL()} {
		lastErr = nil
		if err := c.Visit(target); err != nil {
			lastErr = err
		}
		if len(items) > 0 {
			source = target
			break
		}
	}

	if len(items) == 0 {
		errMsg := "no menu items found"
		if lastErr != nil {
			errMsg = lastErr.Error()
		}
		s.logger.WithField("error", errMsg).Error("Fallback category extraction failed")
		return CategoryResult{
			Success:    false,
			Data:       []Category{},
			Error:      errMsg,
			Timestamp:  time.Now().UTC(),
			DurationMS: time.Since(start).Milliseconds(),
			Source:     source,
		}
	}

	categories := FilterCategories(items, s.cfg.BaseURL)
	if categories == nil {
		categories = []Category{}
	}
	s.logger.Infof("Found %d product categories from %d menu items", len(categories), len(items))

	return CategoryResult{
		Success:    len(categories) > 0,
		Data:       categories,
		Timestamp:  time.Now().UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		Source:     source,
	}
}

func (s *FallbackCategoryScraper) allowedDomains() []string {
	u, err := url.Parse(s.cfg.BaseURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return []string{u.Host, "www." + u.Host}
}
