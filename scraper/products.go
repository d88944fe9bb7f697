package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"catalogcrawler/config"
)

// ProgressFunc is invoked with the current product's name before each
// detail-page visit.
type ProgressFunc func(productName string)

// Structural paths to the spec-sheet and video anchors on a detail page.
// Brittle by nature; each has a text-based anchor fallback.
const (
	pdfLinkXPath   = "/html/body/div[1]/div/div/main/div[3]/form/span/div[2]/div[3]/div[1]/span/div/div/div/div/div[2]/a"
	videoLinkXPath = "/html/body/div[1]/div/div/main/div[3]/form/span/div[2]/div[3]/div[1]/span/div/div/div/div/div[1]/a"
)

// ProductScraper extracts product summaries from a category listing page and
// full records from each product's detail page, reusing the session's single
// browser page throughout.
type ProductScraper struct {
	cfg        *config.Config
	session    *Session
	limiter    *rate.Limiter
	onProgress ProgressFunc
	logger     *log.Entry
}

func NewProductScraper(cfg *config.Config, session *Session) *ProductScraper {
	return &ProductScraper{
		cfg:     cfg,
		session: session,
		limiter: rate.NewLimiter(rate.Every(cfg.ProductDelay), 1),
		logger:  log.WithField("component", "products"),
	}
}

// SetProgressCallback registers the per-product progress hook.
func (s *ProductScraper) SetProgressCallback(fn ProgressFunc) {
	s.onProgress = fn
}

// ExtractProducts runs the list and detail phases for one category. All
// expected failure modes are folded into the result's success flag; the
// error return is reserved for conditions the scraper cannot classify.
func (s *ProductScraper) ExtractProducts(category Category) (ProductResult, error) {
	logger := s.logger.WithField("category", category.Name)
	logger.WithField("url", category.URL).Info("Navigating to category")

	if err := s.session.Navigate(category.URL, s.cfg.CardSelector, s.cfg.DetailWaitTimeout); err != nil {
		logger.WithError(err).Error("Category page failed to load")
		return ProductResult{
			Success:   false,
			Data:      []Product{},
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
			Category:  category.Name,
		}, nil
	}

	logger.Info("Scrolling to load all products...")
	attempts := scrollUntilStable(s.pageHeight, s.scrollToBottom, s.cfg.MaxScrollAttempts, s.cfg.ScrollWait)
	logger.Infof("Scrolling finished after %d attempts", attempts)

	summaries := s.collectSummaries(logger)
	logger.Infof("Collected %d product summaries", len(summaries))

	products := make([]Product, 0, len(summaries))
	for i, summary := range summaries {
		if s.onProgress != nil {
			s.onProgress(summary.Name)
		}
		logger.Infof("Visiting product %d/%d: %s", i+1, len(summaries), summary.Name)

		// Polite pacing between detail visits.
		if err := s.limiter.Wait(s.session.Context()); err != nil {
			logger.WithError(err).Error("Rate limiter interrupted")
			break
		}

		details := s.extractDetails(summary.URL, logger)
		products = append(products, mergeProduct(summary, details, category))
	}

	return ProductResult{
		Success:       true,
		Data:          products,
		Timestamp:     time.Now().UTC(),
		Category:      category.Name,
		TotalProducts: len(products),
	}, nil
}

// scrollUntilStable repeatedly scrolls to the bottom and waits, stopping
// when the page height stops growing or maxAttempts is reached. The height
// and scroll operations are injected so the loop's bounded-termination
// behavior is testable without a browser. Returns the attempts used.
func scrollUntilStable(getHeight func() (int64, error), scroll func() error, maxAttempts int, wait time.Duration) int {
	current, err := getHeight()
	if err != nil {
		return 0
	}

	attempts := 0
	var previous int64 = -1
	for previous != current && attempts < maxAttempts {
		previous = current
		if err := scroll(); err != nil {
			return attempts
		}
		time.Sleep(wait)
		current, err = getHeight()
		if err != nil {
			return attempts
		}
		attempts++
	}
	return attempts
}

func (s *ProductScraper) pageHeight() (int64, error) {
	ctx, cancel := context.WithTimeout(s.session.Context(), 10*time.Second)
	defer cancel()
	var height int64
	err := chromedp.Run(ctx, chromedp.Evaluate(`document.body.scrollHeight`, &height))
	return height, err
}

func (s *ProductScraper) scrollToBottom() error {
	ctx, cancel := context.WithTimeout(s.session.Context(), 10*time.Second)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil))
}

// collectSummaries reads every candidate field of every visible card in one
// evaluation, then applies the selector fallback chains per card. Cards
// without any resolvable detail URL are dropped with an error log.
func (s *ProductScraper) collectSummaries(logger *log.Entry) []ProductSummary {
	js := fmt.Sprintf(`
		Array.from(document.querySelectorAll(%q)).map(card => {
			const attr = (sel, name) => {
				const el = card.querySelector(sel);
				return el ? (el.getAttribute(name) || '') : '';
			};
			const text = (sel) => {
				const el = card.querySelector(sel);
				return el ? (el.textContent || '').trim() : '';
			};
			return {
				detailsHref: attr('.CssCatalogAdjusted_BTNDetails a.details', 'href'),
				topHref: attr('.CssCatalogAdjusted_top a', 'href'),
				anyHref: attr('a', 'href'),
				topText: text('.CssCatalogAdjusted_top a'),
				headingText: text('h3 a'),
				makatValue: text('.CssCatalogAdjusted_Makat .CAT_Values'),
				makatText: text('.CssCatalogAdjusted_Makat')
			};
		})
	`, s.cfg.CardSelector)

	ctx, cancel := context.WithTimeout(s.session.Context(), 30*time.Second)
	defer cancel()

	var cards []cardData
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &cards)); err != nil {
		logger.WithError(err).Error("Failed to read product cards")
		return nil
	}
	logger.Infof("Found %d products with %s", len(cards), s.cfg.CardSelector)

	summaries := make([]ProductSummary, 0, len(cards))
	for i, card := range cards {
		summary := summaryFromCard(card, s.cfg.BaseURL)
		if summary.URL == "" {
			logger.Errorf("No URL found for product %d", i+1)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// productDetails holds everything scraped from one detail page. Every field
// defaults to its zero value when the corresponding selector fails.
type productDetails struct {
	Name         string
	SubHeader    string
	Description  string
	BulletPoints []string
	Images       []string
	PreviewImage string
	PDFURL       string
	VideoURL     string
}

// extractDetails visits a product page and extracts each field in
// isolation: a sub-step that fails leaves only its own field empty, so a
// partially broken page still contributes a partial record.
func (s *ProductScraper) extractDetails(productURL string, logger *log.Entry) productDetails {
	var details productDetails

	if err := s.session.Navigate(productURL, s.cfg.DetailSelector, s.cfg.DetailWaitTimeout); err != nil {
		logger.WithError(err).Errorf("Error extracting product details from %s", productURL)
		return details
	}

	details.Name = s.evalString(`
		(() => {
			const el = document.querySelector('.CssCatProductAdjusted_header span');
			return el ? (el.textContent || '').trim() : '';
		})()
	`, logger)

	details.SubHeader = s.evalString(`
		(() => {
			const el = document.querySelector('span[itemprop="description"] > p:first-of-type');
			return el ? (el.textContent || '').trim() : '';
		})()
	`, logger)

	details.Description = s.evalString(`
		Array.from(document.querySelectorAll('span[itemprop="description"] > p:not(:first-of-type)'))
			.map(p => (p.textContent || '').trim())
			.filter(t => t.length > 0)
			.join(' ')
	`, logger)

	details.BulletPoints = s.evalStrings(fmt.Sprintf(`
		Array.from(document.querySelectorAll('%s ul li'))
			.map(li => (li.textContent || '').trim())
	`, s.cfg.DetailSelector), logger)

	details.PDFURL = s.extractAnchor(pdfLinkXPath, "PDF", logger)
	details.VideoURL = s.extractAnchor(videoLinkXPath, "וידאו", logger)

	details.Images = s.evalStrings(`
		Array.from(document.querySelectorAll('.fotorama__img'))
			.map(img => img.getAttribute('src') || '')
			.filter(src => src.length > 0)
	`, logger)

	return details
}

// extractAnchor tries the fixed structural path first, then falls back to
// the first anchor whose text contains keyword.
func (s *ProductScraper) extractAnchor(xpath, keyword string, logger *log.Entry) string {
	href := s.evalString(fmt.Sprintf(`
		(() => {
			const r = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
			const el = r.singleNodeValue;
			return el ? (el.getAttribute('href') || '') : '';
		})()
	`, xpath), logger)
	if href != "" {
		return href
	}

	return s.evalString(fmt.Sprintf(`
		(() => {
			const a = Array.from(document.querySelectorAll('a'))
				.find(a => (a.textContent || '').includes(%q));
			return a ? (a.href || '') : '';
		})()
	`, keyword), logger)
}

func (s *ProductScraper) evalString(js string, logger *log.Entry) string {
	ctx, cancel := context.WithTimeout(s.session.Context(), 10*time.Second)
	defer cancel()
	var out string
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		logger.WithError(err).Debug("Field evaluation failed")
		return ""
	}
	return out
}

func (s *ProductScraper) evalStrings(js string, logger *log.Entry) []string {
	ctx, cancel := context.WithTimeout(s.session.Context(), 10*time.Second)
	defer cancel()
	var out []string
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &out)); err != nil {
		logger.WithError(err).Debug("Field evaluation failed")
		return nil
	}
	return out
}

// mergeProduct combines a listing-card summary with detail-page fields.
// Detail values win where present; the preview image is the first gallery
// image, falling back to an explicit preview, else empty.
func mergeProduct(summary ProductSummary, details productDetails, category Category) Product {
	name := details.Name
	if name == "" {
		name = summary.Name
	}

	preview := details.PreviewImage
	if len(details.Images) > 0 {
		preview = details.Images[0]
	}

	images := details.Images
	if images == nil {
		images = []string{}
	}
	bullets := details.BulletPoints
	if bullets == nil {
		bullets = []string{}
	}

	return Product{
		Name:         name,
		URL:          summary.URL,
		ID:           summary.ID,
		SKU:          summary.SKU,
		Images:       images,
		PreviewImage: preview,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Description:  details.Description,
		PDFURL:       details.PDFURL,
		VideoURL:     details.VideoURL,
		SubHeader:    details.SubHeader,
		BulletPoints: bullets,
	}
}
