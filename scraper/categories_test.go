package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"catalogcrawler/config"
)

type stubLoader struct {
	ok bool
}

func (l *stubLoader) LoadPage(url, marker string) bool { return l.ok }
func (l *stubLoader) Context() context.Context         { return context.Background() }

type stubResolver struct {
	items []MenuItem
	err   error
}

func (r *stubResolver) ResolveLinks(ctx context.Context) ([]MenuItem, error) {
	return r.items, r.err
}

func categoryTestConfig() *config.Config {
	return &config.Config{
		BaseURL:      "https://example.com",
		HomePath:     "/home",
		MenuSelector: "ul.menu",
		MaxRetries:   3,
	}
}

func TestCategoryScraperExtract(t *testing.T) {
	resolver := &stubResolver{items: []MenuItem{
		{Name: "מכונות שטיפה", URL: "/מוצרים/machines", ID: "LI_1"},
		{Name: "דף הבית", URL: "/", ID: "LI_2"},
		{Name: "אביזרים", URL: "https://example.com/accessories", ID: "LI_3"},
		{Name: "בלוג", URL: "/blog", ID: "LI_4"},
	}}

	s := newCategoryScraperWith(categoryTestConfig(), &stubLoader{ok: true}, resolver)
	result := s.Extract()

	assert.True(t, result.Success)
	assert.Equal(t, "https://example.com/home", result.Source)
	assert.Len(t, result.Data, 2)
	assert.Equal(t, "https://example.com/%D7%9E%D7%95%D7%A6%D7%A8%D7%99%D7%9D/machines", result.Data[0].URL)
	assert.Equal(t, TypeMachines, result.Data[0].CategoryType)
	assert.Equal(t, TypeAccessories, result.Data[1].CategoryType)
}

func TestCategoryScraperPageLoadExhaustion(t *testing.T) {
	s := newCategoryScraperWith(categoryTestConfig(), &stubLoader{ok: false}, &stubResolver{})
	result := s.Extract()

	assert.False(t, result.Success)
	assert.Empty(t, result.Data)
	assert.Contains(t, result.Error, "failed to load homepage after 3 attempts")
}

func TestCategoryScraperResolverError(t *testing.T) {
	resolver := &stubResolver{err: errors.New("evaluation failed")}
	s := newCategoryScraperWith(categoryTestConfig(), &stubLoader{ok: true}, resolver)
	result := s.Extract()

	assert.False(t, result.Success)
	assert.Empty(t, result.Data)
	assert.Contains(t, result.Error, "failed to resolve menu links")
}

func TestMissingURLs(t *testing.T) {
	assert.True(t, missingURLs([]MenuItem{{Name: "a", URL: ""}, {Name: "b", URL: "/b"}}))
	assert.False(t, missingURLs([]MenuItem{{Name: "a", URL: "/a"}}))
	assert.False(t, missingURLs(nil))
}
