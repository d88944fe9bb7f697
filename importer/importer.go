package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"catalogcrawler/scraper"
	"catalogcrawler/storage"
)

// LoadSnapshot reads and validates a consolidated scrape snapshot. A
// snapshot whose success flag is false or whose data list is missing is a
// fatal input error, not something to import around.
func LoadSnapshot(path string) (*scraper.ConsolidatedResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snapshot scraper.ConsolidatedResult
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if !snapshot.Success || snapshot.Data == nil {
		return nil, fmt.Errorf("invalid snapshot format in %s: missing success flag or data", path)
	}
	return &snapshot, nil
}

// DuplicateIDs returns every id that appears more than once, one entry per
// extra occurrence. Duplicates are reported, never silently deduplicated;
// the unique index rejects them at insert time.
func DuplicateIDs(products []scraper.Product) []string {
	seen := make(map[string]bool, len(products))
	var dups []string
	for _, p := range products {
		if seen[p.ID] {
			dups = append(dups, p.ID)
			continue
		}
		seen[p.ID] = true
	}
	return dups
}

// AbsoluteImageURL prefixes a relative image path with the site base URL.
// Already-absolute URLs pass through unchanged.
func AbsoluteImageURL(raw, base string) string {
	if raw == "" || strings.HasPrefix(raw, "http") {
		return raw
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(raw, "/")
}

// PrepareProducts rewrites image URLs to absolute form and normalizes
// optional fields so every stored document has the full shape.
func PrepareProducts(products []scraper.Product, base string) []scraper.Product {
	out := make([]scraper.Product, len(products))
	for i, p := range products {
		images := make([]string, len(p.Images))
		for j, img := range p.Images {
			images[j] = AbsoluteImageURL(img, base)
		}
		p.Images = images
		p.PreviewImage = AbsoluteImageURL(p.PreviewImage, base)
		if p.BulletPoints == nil {
			p.BulletPoints = []string{}
		}
		out[i] = p
	}
	return out
}

// InsertFailure identifies one record the bulk insert rejected.
type InsertFailure struct {
	ID      string
	Message string
}

// ImportReport summarizes a bulk insert: Inserted + len(Failures) always
// equals the number of submitted records.
type ImportReport struct {
	Submitted int
	Inserted  int
	Failures  []InsertFailure
}

// SummarizeBulkWrite maps each write error back to the submitted product's
// id using the error's index into the input slice.
func SummarizeBulkWrite(bwe mongo.BulkWriteException, products []scraper.Product) []InsertFailure {
	failures := make([]InsertFailure, 0, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		id := ""
		if we.Index >= 0 && we.Index < len(products) {
			id = products[we.Index].ID
		}
		failures = append(failures, InsertFailure{ID: id, Message: we.Message})
	}
	return failures
}

// FieldGaps counts, per optional field, how many products are missing a
// value. Useful for eyeballing a snapshot before committing to an import.
func FieldGaps(products []scraper.Product) map[string]int {
	gaps := map[string]int{
		"name": 0, "id": 0, "sku": 0, "description": 0,
		"images": 0, "previewImage": 0, "pdfUrl": 0, "videoUrl": 0,
		"subHeader": 0, "bulletPoints": 0,
	}
	for _, p := range products {
		if p.Name == "" {
			gaps["name"]++
		}
		if p.ID == "" {
			gaps["id"]++
		}
		if p.SKU == "" {
			gaps["sku"]++
		}
		if p.Description == "" {
			gaps["description"]++
		}
		if len(p.Images) == 0 {
			gaps["images"]++
		}
		if p.PreviewImage == "" {
			gaps["previewImage"]++
		}
		if p.PDFURL == "" {
			gaps["pdfUrl"]++
		}
		if p.VideoURL == "" {
			gaps["videoUrl"]++
		}
		if p.SubHeader == "" {
			gaps["subHeader"]++
		}
		if len(p.BulletPoints) == 0 {
			gaps["bulletPoints"]++
		}
	}
	return gaps
}

// Importer replaces the product collection with a snapshot's contents.
type Importer struct {
	repo   *storage.ProductRepo
	logger *log.Entry
}

func New(repo *storage.ProductRepo) *Importer {
	return &Importer{
		repo:   repo,
		logger: log.WithField("component", "importer"),
	}
}

// Import reads the snapshot at path, clears the collection and bulk-inserts
// the prepared records with unordered semantics. Per-record constraint
// failures are reported and do not block sibling records; the whole-
// collection replace is deliberate (the latest full snapshot is the source
// of truth).
func (i *Importer) Import(ctx context.Context, path, baseURL string) (*ImportReport, error) {
	snapshot, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	i.logger.Infof("Loaded snapshot with %d products", len(snapshot.Data))

	if dups := DuplicateIDs(snapshot.Data); len(dups) > 0 {
		i.logger.Warnf("Duplicate IDs found in snapshot: %v", dups)
	}

	products := PrepareProducts(snapshot.Data, baseURL)

	deleted, err := i.repo.DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	i.logger.Infof("Cleared %d existing products", deleted)

	report := &ImportReport{Submitted: len(products)}
	report.Inserted, err = i.repo.InsertMany(ctx, products)
	if err != nil {
		var bwe mongo.BulkWriteException
		if !errors.As(err, &bwe) {
			return nil, fmt.Errorf("failed to insert products: %w", err)
		}
		report.Failures = SummarizeBulkWrite(bwe, products)
		for _, f := range report.Failures {
			i.logger.Errorf("Error for product with id=%s: %s", f.ID, f.Message)
		}
	}

	i.logger.Infof("Successfully imported %d products, %d failed", report.Inserted, len(report.Failures))
	return report, nil
}
