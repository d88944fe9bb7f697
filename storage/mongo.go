package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"catalogcrawler/scraper"
)

// Connect opens a client against the given URI and verifies the connection
// with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("uri", redactURI(uri)).Info("MongoDB connected")
	return client, nil
}

func redactURI(uri string) string {
	if at := strings.LastIndex(uri, "@"); at != -1 {
		if scheme := strings.Index(uri, "://"); scheme != -1 {
			return uri[:scheme+3] + "***" + uri[at:]
		}
	}
	return uri
}

// ProductQuery describes the filters the API exposes over the collection.
type ProductQuery struct {
	Category string
	Search   string
	Page     int64
	Limit    int64
}

// ProductRepo wraps the products collection.
type ProductRepo struct {
	col *mongo.Collection
}

func NewProductRepo(client *mongo.Client, database string) *ProductRepo {
	return &ProductRepo{col: client.Database(database).Collection("products")}
}

// EnsureIndexes creates the unique index on the site-assigned product id,
// the collection's sole hard invariant.
func (r *ProductRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique id index: %w", err)
	}
	return nil
}

// DeleteAll clears the collection. The importer replaces the whole set on
// every run.
func (r *ProductRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear products: %w", err)
	}
	return res.DeletedCount, nil
}

// InsertMany inserts with unordered semantics so one record's constraint
// violation does not block its siblings. The returned error may be a
// mongo.BulkWriteException the caller unpacks for per-record reporting.
func (r *ProductRepo) InsertMany(ctx context.Context, products []scraper.Product) (int, error) {
	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = p
	}
	res, err := r.col.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	inserted := 0
	if res != nil {
		inserted = len(res.InsertedIDs)
	}
	return inserted, err
}

// Find returns one page of products plus the total count for the filter.
func (r *ProductRepo) Find(ctx context.Context, q ProductQuery) ([]scraper.Product, int64, error) {
	filter := bson.M{}
	if q.Category != "" {
		filter["categoryName"] = q.Category
	}
	if q.Search != "" {
		regex := bson.M{"$regex": q.Search, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"description": regex},
			bson.M{"sku": regex},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	skip := (q.Page - 1) * q.Limit
	cursor, err := r.col.Find(ctx, filter, options.Find().
		SetSkip(skip).
		SetLimit(q.Limit).
		SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []scraper.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, total, nil
}

// FindByID looks a product up by its site-assigned id. Returns
// mongo.ErrNoDocuments when absent.
func (r *ProductRepo) FindByID(ctx context.Context, id string) (*scraper.Product, error) {
	var p scraper.Product
	if err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DistinctCategories returns the sorted set of category names present in
// the collection.
func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "categoryName", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names, nil
}

// UpdateImageURLs rewrites relative image and preview URLs of records
// already in the collection, prefixing them with baseURL. Returns the
// number of updated products.
func (r *ProductRepo) UpdateImageURLs(ctx context.Context, baseURL string) (int, error) {
	cursor, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	updated := 0
	for cursor.Next(ctx) {
		var p scraper.Product
		if err := cursor.Decode(&p); err != nil {
			return updated, fmt.Errorf("failed to decode product: %w", err)
		}

		changed := false
		if p.PreviewImage != "" && !strings.HasPrefix(p.PreviewImage, "http") {
			p.PreviewImage = baseURL + p.PreviewImage
			changed = true
		}
		for i, img := range p.Images {
			if img != "" && !strings.HasPrefix(img, "http") {
				p.Images[i] = baseURL + img
				changed = true
			}
		}
		if !changed {
			continue
		}

		_, err := r.col.UpdateOne(ctx, bson.M{"id": p.ID}, bson.M{"$set": bson.M{
			"previewImage": p.PreviewImage,
			"images":       p.Images,
		}})
		if err != nil {
			return updated, fmt.Errorf("failed to update product %s: %w", p.ID, err)
		}
		updated++
	}
	return updated, cursor.Err()
}
