package scraper

import "time"

// Category is one product grouping discovered in the site's navigation menu.
// URLs are absolute by the time a Category leaves the extractor.
type Category struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ID           string `json:"id"`
	CategoryType string `json:"categoryType"`
}

// Category types produced by Classify.
const (
	TypeAccessories  = "accessories"
	TypeMachines     = "machines"
	TypeProfessional = "professional"
	TypeVacuum       = "vacuum"
	TypeBrand        = "brand"
	TypeConnectors   = "connectors"
	TypeOther        = "other"
)

// ProductSummary is the lightweight record scraped from a listing card.
// Any field may be empty when its selector fails; only URL is required
// for the detail visit to proceed.
type ProductSummary struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	ID   string `json:"id"`
	SKU  string `json:"sku"`
}

// Product is the persisted entity: a ProductSummary merged with the fields
// extracted from the product's detail page. ID must be unique within the
// collection; everything else is best effort.
type Product struct {
	Name         string   `json:"name" bson:"name"`
	URL          string   `json:"url" bson:"url"`
	ID           string   `json:"id" bson:"id"`
	SKU          string   `json:"sku" bson:"sku"`
	Images       []string `json:"images" bson:"images"`
	PreviewImage string   `json:"previewImage" bson:"previewImage"`
	CategoryID   string   `json:"categoryId" bson:"categoryId"`
	CategoryName string   `json:"categoryName" bson:"categoryName"`
	Description  string   `json:"description" bson:"description"`
	PDFURL       string   `json:"pdfUrl" bson:"pdfUrl"`
	VideoURL     string   `json:"videoUrl" bson:"videoUrl"`
	SubHeader    string   `json:"subHeader" bson:"subHeader"`
	BulletPoints []string `json:"bulletPoints" bson:"bulletPoints"`
}

// CategoryResult is the snapshot written after a category extraction run.
type CategoryResult struct {
	Success    bool       `json:"success"`
	Data       []Category `json:"data"`
	Error      string     `json:"error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	DurationMS int64      `json:"duration"`
	Source     string     `json:"source"`
}

// ProductResult is the snapshot written after one category's products are
// extracted.
type ProductResult struct {
	Success       bool      `json:"success"`
	Data          []Product `json:"data"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	Category      string    `json:"category,omitempty"`
	TotalProducts int       `json:"totalProducts"`
}

// RunStats summarizes a whole orchestrated run.
type RunStats struct {
	SuccessfulProducts int    `json:"successfulProducts"`
	FailedProducts     int    `json:"failedProducts"`
	Duration           string `json:"duration"`
}

// ConsolidatedResult is the single hand-off artifact the importer consumes.
type ConsolidatedResult struct {
	Success         bool      `json:"success"`
	Data            []Product `json:"data"`
	Timestamp       time.Time `json:"timestamp"`
	TotalProducts   int       `json:"totalProducts"`
	TotalCategories int       `json:"totalCategories"`
	Stats           RunStats  `json:"stats"`
}

// MenuItem is a raw navigation entry before filtering and classification.
type MenuItem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	ID   string `json:"id"`
}
