package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	productIDRe  = regexp.MustCompile(`prodid=(\d+)`)
)

// productKeywords mark a navigation entry as product-related. The source
// site is Hebrew; "R+M" is a brand carried by the vendor.
var productKeywords = []string{
	"אביזר", "מכונ", "שטיפ", "ניקוי", "מקצועי",
	"שואב", "אבק", "מחבר", "סביבל", "R+M", "לחץ",
}

// excludedKeywords are navigation items that are never product categories,
// even when they also match a product keyword.
var excludedKeywords = []string{"דף הבית", "אודות", "צור קשר", "מאמרים"}

// categoryClasses maps name keywords to a category type, first match wins.
var categoryClasses = []struct {
	keywords     []string
	categoryType string
}{
	{[]string{"אביזר"}, TypeAccessories},
	{[]string{"מכונ"}, TypeMachines},
	{[]string{"מקצועי"}, TypeProfessional},
	{[]string{"שואב"}, TypeVacuum},
	{[]string{"R+M"}, TypeBrand},
	{[]string{"מחבר", "סביבל"}, TypeConnectors},
}

// productsPathSegment identifies category listing URLs on the source site.
const productsPathSegment = "/מוצרים/"

func cleanString(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return whitespaceRe.ReplaceAllString(s, " ")
}

// NormalizeURL resolves a root-relative URL against the site base. Absolute
// URLs pass through unchanged, so the operation is idempotent; anything else
// is returned as-is on a best-effort basis.
func NormalizeURL(raw, base string) string {
	if raw == "" {
		return raw
	}
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		return raw
	}
	if strings.HasPrefix(raw, "/") {
		b, err := url.Parse(base)
		if err != nil {
			return raw
		}
		rel, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		return b.ResolveReference(rel).String()
	}
	return raw
}

// ParseProductID pulls the site-assigned product id out of a listing href,
// e.g. "...?prodid=12345".
func ParseProductID(href string) string {
	m := productIDRe.FindStringSubmatch(href)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// IsProductRelated reports whether a menu entry's text matches one of the
// domain keywords.
func IsProductRelated(name string) bool {
	for _, kw := range productKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

func isExcluded(name string) bool {
	for _, kw := range excludedKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// Classify maps a category name to its coarse type by first-match keyword
// lookup. Names matching no keyword group are "other".
func Classify(name string) string {
	for _, class := range categoryClasses {
		for _, kw := range class.keywords {
			if strings.Contains(name, kw) {
				return class.categoryType
			}
		}
	}
	return TypeOther
}

// FilterCategories turns raw menu entries into product categories: keeps
// entries whose URL carries the products path segment or whose text matches
// a product keyword, drops excluded navigation items, normalizes URLs and
// assigns a category type.
func FilterCategories(items []MenuItem, base string) []Category {
	var categories []Category
	for _, item := range items {
		name := cleanString(item.Name)
		if name == "" {
			continue
		}
		if !strings.Contains(item.URL, productsPathSegment) && !IsProductRelated(name) {
			continue
		}
		if isExcluded(name) {
			continue
		}
		categories = append(categories, Category{
			Name:         name,
			URL:          NormalizeURL(item.URL, base),
			ID:           item.ID,
			CategoryType: Classify(name),
		})
	}
	return categories
}

// cardData holds every candidate value read from one listing card in a
// single page evaluation. The strategy chains in summaryFromCard pick the
// first non-empty candidate per field.
type cardData struct {
	DetailsHref string `json:"detailsHref"`
	TopHref     string `json:"topHref"`
	AnyHref     string `json:"anyHref"`
	TopText     string `json:"topText"`
	HeadingText string `json:"headingText"`
	MakatValue  string `json:"makatValue"`
	MakatText   string `json:"makatText"`
}

func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c = cleanString(c); c != "" {
			return c
		}
	}
	return ""
}

// summaryFromCard applies the layered selector fallbacks to one card's
// candidates. Missing fields stay empty; the caller decides whether the
// summary is usable (a detail URL is the minimum).
func summaryFromCard(c cardData, base string) ProductSummary {
	u := firstNonEmpty(c.DetailsHref, c.TopHref, c.AnyHref)
	return ProductSummary{
		URL:  NormalizeURL(u, base),
		Name: firstNonEmpty(c.TopText, c.HeadingText),
		ID:   ParseProductID(firstNonEmpty(c.TopHref, u)),
		SKU:  firstNonEmpty(c.MakatValue, c.MakatText),
	}
}
