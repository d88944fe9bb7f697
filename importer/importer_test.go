package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"catalogcrawler/scraper"
)

func TestAbsoluteImageURL(t *testing.T) {
	base := "https://site/"

	assert.Equal(t, "https://site/images/x.jpg", AbsoluteImageURL("images/x.jpg", base))
	assert.Equal(t, "https://site/images/x.jpg", AbsoluteImageURL("/images/x.jpg", base))
	assert.Equal(t, "https://cdn.example.com/x.jpg", AbsoluteImageURL("https://cdn.example.com/x.jpg", base))
	assert.Equal(t, "", AbsoluteImageURL("", base))
}

func TestPrepareProducts(t *testing.T) {
	products := []scraper.Product{
		{
			ID:           "1",
			Images:       []string{"images/a.jpg", "https://cdn/b.jpg"},
			PreviewImage: "images/a.jpg",
		},
		{
			ID:     "2",
			Images: []string{},
		},
	}

	got := PrepareProducts(products, "https://site/")

	assert.Equal(t, []string{"https://site/images/a.jpg", "https://cdn/b.jpg"}, got[0].Images)
	assert.Equal(t, "https://site/images/a.jpg", got[0].PreviewImage)
	assert.NotNil(t, got[0].BulletPoints)
	assert.NotNil(t, got[1].BulletPoints)

	// Input slice must stay untouched.
	assert.Equal(t, "images/a.jpg", products[0].Images[0])
}

func TestDuplicateIDs(t *testing.T) {
	products := []scraper.Product{
		{ID: "1"}, {ID: "2"}, {ID: "1"}, {ID: "3"}, {ID: "2"}, {ID: "2"},
	}

	assert.Equal(t, []string{"1", "2", "2"}, DuplicateIDs(products))
	assert.Empty(t, DuplicateIDs([]scraper.Product{{ID: "1"}, {ID: "2"}}))
	assert.Empty(t, DuplicateIDs(nil))
}

func TestSummarizeBulkWrite(t *testing.T) {
	products := []scraper.Product{{ID: "10"}, {ID: "20"}, {ID: "20"}}
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 2, Code: 11000, Message: "E11000 duplicate key error"}},
		},
	}

	failures := SummarizeBulkWrite(bwe, products)

	require.Len(t, failures, 1)
	assert.Equal(t, "20", failures[0].ID)
	assert.Contains(t, failures[0].Message, "duplicate key")

	// Successes + failures account for every submitted record.
	succeeded := len(products) - len(failures)
	assert.Equal(t, len(products), succeeded+len(failures))
}

func TestSummarizeBulkWriteOutOfRangeIndex(t *testing.T) {
	bwe := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 99, Message: "boom"}},
		},
	}
	failures := SummarizeBulkWrite(bwe, []scraper.Product{{ID: "1"}})
	require.Len(t, failures, 1)
	assert.Equal(t, "", failures[0].ID)
}

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all-products.json")

	require.NoError(t, os.WriteFile(path, []byte(`{
		"success": true,
		"data": [{"id": "1", "name": "p"}],
		"totalProducts": 1
	}`), 0644))

	snapshot, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, snapshot.Data, 1)
	assert.Equal(t, "1", snapshot.Data[0].ID)
}

func TestLoadSnapshotRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadSnapshot(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badFlag := filepath.Join(dir, "failed.json")
	require.NoError(t, os.WriteFile(badFlag, []byte(`{"success": false, "data": []}`), 0644))
	_, err = LoadSnapshot(badFlag)
	assert.ErrorContains(t, err, "invalid snapshot format")

	noData := filepath.Join(dir, "nodata.json")
	require.NoError(t, os.WriteFile(noData, []byte(`{"success": true}`), 0644))
	_, err = LoadSnapshot(noData)
	assert.ErrorContains(t, err, "invalid snapshot format")
}

func TestFieldGaps(t *testing.T) {
	products := []scraper.Product{
		{ID: "1", Name: "full", SKU: "s", Description: "d", Images: []string{"i"},
			PreviewImage: "p", PDFURL: "pdf", VideoURL: "v", SubHeader: "sh",
			BulletPoints: []string{"b"}},
		{ID: "2", Name: "sparse"},
	}

	gaps := FieldGaps(products)

	assert.Equal(t, 0, gaps["name"])
	assert.Equal(t, 1, gaps["description"])
	assert.Equal(t, 1, gaps["images"])
	assert.Equal(t, 1, gaps["bulletPoints"])
}
