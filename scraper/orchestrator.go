package scraper

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"catalogcrawler/config"
	"catalogcrawler/exporter"
)

// ProductExtractor is what the orchestrator drives per category. The real
// implementation is ProductScraper; tests substitute a fake.
type ProductExtractor interface {
	SetProgressCallback(ProgressFunc)
	ExtractProducts(category Category) (ProductResult, error)
}

// Progress carries the running statistics of a crawl. It is an explicit
// value owned by the orchestrator and updated per step, not shared process
// state, so the accounting can be tested in isolation.
type Progress struct {
	TotalCategories     int
	ProcessedCategories int
	ProcessedProducts   int
	SuccessfulProducts  int
	FailedProducts      int
	StartTime           time.Time
	CurrentCategory     string
	CurrentProduct      string
}

func NewProgress(totalCategories int) *Progress {
	return &Progress{
		TotalCategories: totalCategories,
		StartTime:       time.Now(),
	}
}

// Elapsed formats the run duration as "XhYmZs".
func (p *Progress) Elapsed() string {
	d := time.Since(p.StartTime)
	seconds := int(d.Seconds())
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds/60)%60, seconds%60)
}

func (p *Progress) log(logger *log.Entry) {
	logger.WithFields(log.Fields{
		"categories": fmt.Sprintf("%d/%d", p.ProcessedCategories, p.TotalCategories),
		"products":   p.ProcessedProducts,
		"success":    p.SuccessfulProducts,
		"failed":     p.FailedProducts,
		"duration":   p.Elapsed(),
		"current":    p.CurrentCategory,
	}).Info("Scraping progress")
}

// Orchestrator sequences per-category product extraction, accumulates the
// results and persists per-category plus consolidated snapshots.
type Orchestrator struct {
	cfg       *config.Config
	extractor ProductExtractor
	logger    *log.Entry
}

func NewOrchestrator(cfg *config.Config, extractor ProductExtractor) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		logger:    log.WithField("component", "orchestrator"),
	}
}

// Run processes every category in order. A category-level failure is
// logged, counted and skipped; the run never aborts because one category
// broke. The consolidated snapshot is written once at the end.
func (o *Orchestrator) Run(categories []Category) (ConsolidatedResult, *Progress) {
	progress := NewProgress(len(categories))
	o.extractor.SetProgressCallback(func(productName string) {
		progress.CurrentProduct = productName
		progress.ProcessedProducts++
	})

	var allProducts []Product

	for _, category := range categories {
		progress.CurrentCategory = category.Name
		progress.log(o.logger)

		result, err := o.extractor.ExtractProducts(category)
		progress.ProcessedCategories++

		switch {
		case err != nil:
			o.logger.WithError(err).Errorf("Error processing category %s", category.Name)
			progress.FailedProducts++
		case !result.Success:
			o.logger.WithField("error", result.Error).Errorf("Extraction failed for category %s", category.Name)
			progress.FailedProducts++
		default:
			progress.SuccessfulProducts += len(result.Data)
			allProducts = append(allProducts, result.Data...)
			o.saveCategoryResult(category, result)
		}

		progress.log(o.logger)
		time.Sleep(o.cfg.CategoryDelay)
	}

	if allProducts == nil {
		allProducts = []Product{}
	}

	consolidated := ConsolidatedResult{
		Success:         true,
		Data:            allProducts,
		Timestamp:       time.Now().UTC(),
		TotalProducts:   len(allProducts),
		TotalCategories: len(categories),
		Stats: RunStats{
			SuccessfulProducts: progress.SuccessfulProducts,
			FailedProducts:     progress.FailedProducts,
			Duration:           progress.Elapsed(),
		},
	}

	if err := exporter.SaveJSON(consolidated, "all-products.json", o.cfg.OutputDir); err != nil {
		o.logger.WithError(err).Error("Failed to save consolidated snapshot")
	}

	return consolidated, progress
}

func (o *Orchestrator) saveCategoryResult(category Category, result ProductResult) {
	filename := fmt.Sprintf("products-%s.json", category.ID)
	if err := exporter.SaveJSON(result, filename, o.cfg.OutputDir); err != nil {
		o.logger.WithError(err).Errorf("Failed to save snapshot for category %s", category.Name)
	}
}

// LoadCategories reads a previously extracted category snapshot from disk.
func LoadCategories(outputDir string) ([]Category, error) {
	var result CategoryResult
	if err := exporter.LoadJSON("categories.json", outputDir, &result); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return result.Data, nil
}
