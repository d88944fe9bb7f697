package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"אביזרים לשטיפה", TypeAccessories},
		{"מכונות שטיפה בלחץ", TypeMachines},
		{"ציוד מקצועי", TypeProfessional},
		{"שואבי אבק", TypeVacuum},
		{"מוצרי R+M", TypeBrand},
		{"מחברים", TypeConnectors},
		{"סביבלים", TypeConnectors},
		{"דברים אחרים", TypeOther},
		{"", TypeOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.name), "name %q", tt.name)
	}
}

func TestClassifyAlwaysInFixedSet(t *testing.T) {
	valid := map[string]bool{
		TypeAccessories: true, TypeMachines: true, TypeProfessional: true,
		TypeVacuum: true, TypeBrand: true, TypeConnectors: true, TypeOther: true,
	}

	names := []string{"אביזר", "מכונ", "whatever", "R+M", "מחבר וסביבל", "123", ""}
	for _, name := range names {
		assert.True(t, valid[Classify(name)], "unexpected type for %q", name)
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// A name matching both accessory and machine keywords classifies by the
	// earlier group.
	assert.Equal(t, TypeAccessories, Classify("אביזרים למכונות"))
}

func TestNormalizeURL(t *testing.T) {
	base := "https://example.com"

	abs := NormalizeURL("/x", base)
	assert.Equal(t, "https://example.com/x", abs)

	// Idempotent: normalizing an absolute URL returns it unchanged.
	assert.Equal(t, abs, NormalizeURL(abs, base))
	assert.Equal(t, "https://other.com/y", NormalizeURL("https://other.com/y", base))

	// Non-rooted relative paths are left as-is, best effort.
	assert.Equal(t, "x/y", NormalizeURL("x/y", base))
	assert.Equal(t, "", NormalizeURL("", base))
}

func TestParseProductID(t *testing.T) {
	assert.Equal(t, "12345", ParseProductID("https://example.com/item?prodid=12345&lang=he"))
	assert.Equal(t, "7", ParseProductID("/catalog?prodid=7"))
	assert.Equal(t, "", ParseProductID("/catalog?itemid=7"))
	assert.Equal(t, "", ParseProductID(""))
}

func TestFilterCategoriesKeepsProductEntries(t *testing.T) {
	items := []MenuItem{
		{Name: "מכונות שטיפה", URL: "/מוצרים/מכונות", ID: "LI_1"},
		{Name: "אביזרים", URL: "/accessories", ID: "LI_2"},
		{Name: "קטגוריה כללית", URL: "/misc", ID: "LI_3"},
	}

	got := FilterCategories(items, "https://example.com")

	assert.Len(t, got, 2)
	assert.Equal(t, "מכונות שטיפה", got[0].Name)
	assert.Equal(t, TypeMachines, got[0].CategoryType)
	assert.Equal(t, "https://example.com/accessories", got[1].URL)
	assert.Equal(t, TypeAccessories, got[1].CategoryType)
}

func TestFilterCategoriesExclusionWinsOverKeyword(t *testing.T) {
	// Excluded nav items never pass, even when they also match a product
	// keyword.
	items := []MenuItem{
		{Name: "אודות מכונות השטיפה", URL: "/about", ID: "LI_1"},
		{Name: "מאמרים על ניקוי", URL: "/מוצרים/articles", ID: "LI_2"},
		{Name: "דף הבית", URL: "/", ID: "LI_3"},
		{Name: "צור קשר", URL: "/contact", ID: "LI_4"},
	}

	assert.Empty(t, FilterCategories(items, "https://example.com"))
}

func TestFilterCategoriesSkipsEmptyNames(t *testing.T) {
	items := []MenuItem{
		{Name: "   ", URL: "/מוצרים/x", ID: "LI_1"},
		{Name: "", URL: "/מוצרים/y", ID: "LI_2"},
	}
	assert.Empty(t, FilterCategories(items, "https://example.com"))
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "a b c", cleanString("  a\n\tb   c  "))
	assert.Equal(t, "", cleanString("   "))
}

func TestSummaryFromCardFallbackChains(t *testing.T) {
	base := "https://example.com"

	full := summaryFromCard(cardData{
		DetailsHref: "/item?prodid=1",
		TopHref:     "/item?prodid=2",
		AnyHref:     "/item?prodid=3",
		TopText:     "Primary Name",
		HeadingText: "Secondary Name",
		MakatValue:  "SKU-1",
		MakatText:   "SKU-2",
	}, base)
	assert.Equal(t, "https://example.com/item?prodid=1", full.URL)
	assert.Equal(t, "Primary Name", full.Name)
	assert.Equal(t, "2", full.ID, "id parses from the top anchor's href")
	assert.Equal(t, "SKU-1", full.SKU)

	fallback := summaryFromCard(cardData{
		AnyHref:     "/item?prodid=9",
		HeadingText: "Only Heading",
		MakatText:   "מק\"ט 42",
	}, base)
	assert.Equal(t, "https://example.com/item?prodid=9", fallback.URL)
	assert.Equal(t, "Only Heading", fallback.Name)
	assert.Equal(t, "9", fallback.ID)
	assert.Equal(t, "מק\"ט 42", fallback.SKU)

	empty := summaryFromCard(cardData{}, base)
	assert.Equal(t, ProductSummary{}, empty)
}
