// Package repositories owns the persistent representation of inventory
// items in MongoDB.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/maalgodam/app/models"
	"github.com/shashiranjanraj/maalgodam/pkg/cache"
	"github.com/shashiranjanraj/maalgodam/pkg/metrics"
)

const itemCacheTTL = time.Minute

// ItemRepository is the document store gateway for items. The collection
// handle is injected at construction time — there is no package-level
// connection.
type ItemRepository struct {
	col   *mongo.Collection
	cache *cache.Cache // nil disables caching
}

// NewItemRepository builds a repository over col. Pass a nil cache to run
// without read-through caching.
func NewItemRepository(col *mongo.Collection, c *cache.Cache) *ItemRepository {
	return &ItemRepository{col: col, cache: c}
}

// EnsureIndexes creates the createdAt index backing the newest-first
// listing order. Call once at boot.
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("repositories: ensure indexes: %w", err)
	}
	return nil
}

func itemCacheKey(id string) string { return "items:" + id }

// Create persists a new item. Identity and timestamps are assigned here,
// never taken from the caller.
func (r *ItemRepository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	defer metrics.ObserveStoreQuery("insert", time.Now())

	now := time.Now().UTC()
	item.ID = primitive.NilObjectID
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := r.col.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("repositories: create item: %w", err)
	}

	item.ID = res.InsertedID.(primitive.ObjectID)
	return item, nil
}

// FindByID returns the item or ErrItemNotFound. A malformed hex id is
// treated as not found, not an error.
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	var item models.Item
	if r.cache.Get(ctx, itemCacheKey(id), &item) {
		return &item, nil
	}

	defer metrics.ObserveStoreQuery("find", time.Now())

	err = r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: find item %s: %w", id, err)
	}

	_ = r.cache.Set(ctx, itemCacheKey(id), &item, itemCacheTTL)
	return &item, nil
}

// FindPage returns one page of items matching filter, newest first by
// creation time. Ordering is stable across pages.
func (r *ItemRepository) FindPage(ctx context.Context, filter models.ItemFilter, skip, limit int64) ([]models.Item, error) {
	defer metrics.ObserveStoreQuery("find", time.Now())

	opts := options.Find().
		SetSkip(skip).
		SetLimit(limit).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, BuildItemQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("repositories: find page: %w", err)
	}

	items := []models.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("repositories: decode page: %w", err)
	}
	return items, nil
}

// Count returns the number of items matching filter, independent of
// pagination.
func (r *ItemRepository) Count(ctx context.Context, filter models.ItemFilter) (int64, error) {
	defer metrics.ObserveStoreQuery("count", time.Now())

	count, err := r.col.CountDocuments(ctx, BuildItemQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("repositories: count items: %w", err)
	}
	return count, nil
}

// UpdateByID merges only the supplied fields into the document and returns
// the post-update item.
func (r *ItemRepository) UpdateByID(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	defer metrics.ObserveStoreQuery("update", time.Now())

	set := bson.D{}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *update.Description})
	}
	if update.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *update.Image})
	}
	if update.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *update.Price})
	}
	if update.InStock != nil {
		set = append(set, bson.E{Key: "inStock", Value: *update.InStock})
	}
	if update.Stock != nil {
		set = append(set, bson.E{Key: "stock", Value: *update.Stock})
	}
	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})

	var item models.Item
	err = r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: update item %s: %w", id, err)
	}

	_ = r.cache.Del(ctx, itemCacheKey(id))
	return &item, nil
}

// DeductStock subtracts quantity from the item's stock as a single
// conditional update — "decrement where stock >= quantity" — so two
// concurrent deductions can never both observe the same starting stock.
// Only on the failure path does a follow-up read distinguish a missing
// item from insufficient stock.
func (r *ItemRepository) DeductStock(ctx context.Context, id string, quantity int64) (*models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	defer metrics.ObserveStoreQuery("update", time.Now())

	var item models.Item
	err = r.col.FindOneAndUpdate(ctx,
		bson.D{
			{Key: "_id", Value: oid},
			{Key: "stock", Value: bson.D{{Key: "$gte", Value: quantity}}},
		},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "stock", Value: -quantity}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&item)

	if errors.Is(err, mongo.ErrNoDocuments) {
		count, countErr := r.col.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
		if countErr != nil {
			return nil, fmt.Errorf("repositories: deduct stock %s: %w", id, countErr)
		}
		if count == 0 {
			return nil, ErrItemNotFound
		}
		return nil, ErrInsufficientStock
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: deduct stock %s: %w", id, err)
	}

	_ = r.cache.Del(ctx, itemCacheKey(id))
	return &item, nil
}

// DeleteByID removes the item permanently.
func (r *ItemRepository) DeleteByID(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrItemNotFound
	}

	defer metrics.ObserveStoreQuery("delete", time.Now())

	err = r.col.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrItemNotFound
	}
	if err != nil {
		return fmt.Errorf("repositories: delete item %s: %w", id, err)
	}

	_ = r.cache.Del(ctx, itemCacheKey(id))
	return nil
}
