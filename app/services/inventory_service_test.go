package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/maalgodam/app/models"
	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/app/services"
	"github.com/shashiranjanraj/maalgodam/pkg/broker"
)

// ─── Fakes ────────────────────────────────────────────────────────────────────

// memStore is an in-memory ItemStore. Its DeductStock applies the same
// check-and-decrement under one lock that the real store applies in one
// conditional update, so concurrency tests exercise the same guarantee.
type memStore struct {
	mu    sync.Mutex
	items map[string]models.Item
	order []string // insertion order, oldest first
}

func newMemStore() *memStore {
	return &memStore{items: map[string]models.Item{}}
}

func (m *memStore) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *item
	stored.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	m.items[stored.ID.Hex()] = stored
	m.order = append(m.order, stored.ID.Hex())
	return &stored, nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrItemNotFound
	}
	return &item, nil
}

func (m *memStore) FindPage(_ context.Context, filter models.ItemFilter, skip, limit int64) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// newest first, like the real store's createdAt sort
	matched := make([]models.Item, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		item, ok := m.items[m.order[i]]
		if !ok {
			continue // deleted
		}
		if !matches(item, filter) {
			continue
		}
		matched = append(matched, item)
	}

	if skip >= int64(len(matched)) {
		return []models.Item{}, nil
	}
	matched = matched[skip:]
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *memStore) Count(_ context.Context, filter models.ItemFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, item := range m.items {
		if matches(item, filter) {
			n++
		}
	}
	return n, nil
}

func matches(item models.Item, filter models.ItemFilter) bool {
	if filter.Name != nil && item.Name != *filter.Name {
		return false
	}
	if filter.InStock != nil && item.InStock != *filter.InStock {
		return false
	}
	return true
}

func (m *memStore) UpdateByID(_ context.Context, id string, update models.ItemUpdate) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrItemNotFound
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Description != nil {
		item.Description = *update.Description
	}
	if update.Image != nil {
		item.Image = *update.Image
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	if update.InStock != nil {
		item.InStock = *update.InStock
	}
	if update.Stock != nil {
		item.Stock = *update.Stock
	}
	item.UpdatedAt = time.Now().UTC()

	m.items[id] = item
	return &item, nil
}

func (m *memStore) DeductStock(_ context.Context, id string, quantity int64) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrItemNotFound
	}
	if item.Stock < quantity {
		return nil, repositories.ErrInsufficientStock
	}

	item.Stock -= quantity
	item.UpdatedAt = time.Now().UTC()
	m.items[id] = item
	return &item, nil
}

func (m *memStore) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return repositories.ErrItemNotFound
	}
	delete(m.items, id)
	return nil
}

// memPublisher records published events and can be told to fail.
type memPublisher struct {
	mu     sync.Mutex
	events []broker.StockEvent
	err    error
}

func (p *memPublisher) Publish(_ context.Context, event broker.StockEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) published() []broker.StockEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]broker.StockEvent(nil), p.events...)
}

func sample(name string, stock int64) *models.Item {
	return &models.Item{
		Name:        name,
		Description: "test item",
		Price:       99.5,
		InStock:     stock > 0,
		Stock:       stock,
	}
}

// ─── Create ───────────────────────────────────────────────────────────────────

func TestCreateLowercasesNameAndPublishes(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	svc := services.NewInventoryService(store, pub)

	created, err := svc.Create(context.Background(), sample("Steel Bottle", 10))
	require.NoError(t, err)
	require.Equal(t, "steel bottle", created.Name)
	require.False(t, created.ID.IsZero())
	require.False(t, created.CreatedAt.IsZero())

	events := pub.published()
	require.Len(t, events, 1)
	require.Equal(t, broker.EventStockCreated, events[0].Event)
	require.Equal(t, created.ID.Hex(), events[0].ItemID)
	require.Equal(t, int64(10), events[0].Stock)
}

func TestCreatePublishFailureStillPersists(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{err: errors.New("broker down")}
	svc := services.NewInventoryService(store, pub)

	_, err := svc.Create(context.Background(), sample("bottle", 5))
	require.ErrorIs(t, err, services.ErrPublishFailed)

	// The item was inserted before the publish attempt.
	count, err := store.Count(context.Background(), models.ItemFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestCreateWithoutPublisher(t *testing.T) {
	svc := services.NewInventoryService(newMemStore(), nil)

	created, err := svc.Create(context.Background(), sample("bottle", 5))
	require.NoError(t, err)
	require.Equal(t, "bottle", created.Name)
}

// ─── List ─────────────────────────────────────────────────────────────────────

func TestListPagination(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		_, err := svc.Create(ctx, sample("item", 1))
		require.NoError(t, err)
	}

	items, p, err := svc.List(ctx, models.ItemFilter{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.Equal(t, int64(30), p.TotalRows)
	require.Equal(t, int64(3), p.TotalPages)
	require.Equal(t, int64(1), p.CurrentPage)
	require.True(t, p.HasNextPage)

	_, p, err = svc.List(ctx, models.ItemFilter{Page: 3, Size: 10})
	require.NoError(t, err)
	require.False(t, p.HasNextPage)

	items, p, err = svc.List(ctx, models.ItemFilter{Page: 4, Size: 10})
	require.NoError(t, err)
	require.Empty(t, items)
	require.False(t, p.HasNextPage)
}

func TestListClampsPageAndSize(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, sample("item", 1))
		require.NoError(t, err)
	}

	items, p, err := svc.List(ctx, models.ItemFilter{Page: -5, Size: 0})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, services.DefaultPage, p.CurrentPage)
	require.Equal(t, services.DefaultPageSize, p.PerPage)
}

func TestListFilters(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Create(ctx, sample("bottle", 5))
		require.NoError(t, err)
	}
	out := sample("lamp", 0)
	out.InStock = false
	_, err := svc.Create(ctx, out)
	require.NoError(t, err)

	inStock := true
	items, p, err := svc.List(ctx, models.ItemFilter{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Equal(t, int64(4), p.TotalRows)
	for _, item := range items {
		require.True(t, item.InStock)
	}

	ghost := "ghost"
	items, p, err = svc.List(ctx, models.ItemFilter{Name: &ghost})
	require.NoError(t, err)
	require.Empty(t, items)
	require.NotNil(t, items, "an empty page is [], not null")
	require.Equal(t, int64(0), p.TotalRows)
	require.False(t, p.HasNextPage)
}

func TestListUnpagedTotalPages(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, sample("item", 1))
		require.NoError(t, err)
	}

	_, p, err := svc.List(ctx, models.ItemFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), p.TotalPages) // ceil(25/10)
	require.True(t, p.HasNextPage)
}

// ─── Update ───────────────────────────────────────────────────────────────────

func TestUpdateMergesOnlySuppliedFields(t *testing.T) {
	store := newMemStore()
	pub := &memPublisher{}
	svc := services.NewInventoryService(store, pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 10))
	require.NoError(t, err)

	price := 150.0
	name := "Big Bottle"
	updated, err := svc.Update(ctx, created.ID.Hex(), models.ItemUpdate{Name: &name, Price: &price})
	require.NoError(t, err)

	require.Equal(t, "big bottle", updated.Name)
	require.Equal(t, 150.0, updated.Price)
	require.Equal(t, created.Description, updated.Description)
	require.Equal(t, created.Stock, updated.Stock)

	events := pub.published()
	require.Len(t, events, 2)
	require.Equal(t, broker.EventStockUpdated, events[1].Event)
}

func TestUpdateMissingItem(t *testing.T) {
	svc := services.NewInventoryService(newMemStore(), nil)

	name := "ghost"
	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.ItemUpdate{Name: &name})
	require.ErrorIs(t, err, repositories.ErrItemNotFound)
}

// ─── Delete ───────────────────────────────────────────────────────────────────

func TestDeleteIsPermanent(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 1))
	require.NoError(t, err)
	id := created.ID.Hex()

	msg, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "inventory with id: "+id+" successfully deleted", msg)

	_, err = svc.GetByID(ctx, id)
	require.ErrorIs(t, err, repositories.ErrItemNotFound)

	_, err = svc.Delete(ctx, id)
	require.ErrorIs(t, err, repositories.ErrItemNotFound)
}

// ─── DeductStock ──────────────────────────────────────────────────────────────

func TestDeductStock(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 10))
	require.NoError(t, err)

	item, err := svc.DeductStock(ctx, created.ID.Hex(), 4)
	require.NoError(t, err)
	require.Equal(t, int64(6), item.Stock)

	// Deduction down to exactly zero is allowed.
	item, err = svc.DeductStock(ctx, created.ID.Hex(), 6)
	require.NoError(t, err)
	require.Equal(t, int64(0), item.Stock)

	_, err = svc.DeductStock(ctx, created.ID.Hex(), 1)
	require.ErrorIs(t, err, repositories.ErrInsufficientStock)
}

func TestDeductStockRejectsNonPositiveQuantity(t *testing.T) {
	svc := services.NewInventoryService(newMemStore(), nil)

	_, err := svc.DeductStock(context.Background(), primitive.NewObjectID().Hex(), 0)
	require.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = svc.DeductStock(context.Background(), primitive.NewObjectID().Hex(), -3)
	require.ErrorIs(t, err, services.ErrInvalidQuantity)
}

func TestDeductStockMissingItem(t *testing.T) {
	svc := services.NewInventoryService(newMemStore(), nil)

	_, err := svc.DeductStock(context.Background(), primitive.NewObjectID().Hex(), 1)
	require.ErrorIs(t, err, repositories.ErrItemNotFound)
}

func TestDeductStockConcurrent(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 100))
	require.NoError(t, err)
	id := created.ID.Hex()

	// 20 goroutines deducting 5 each drains the stock to exactly zero;
	// a lost update would leave a remainder.
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DeductStock(ctx, id, 5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	item, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(0), item.Stock)
}

func TestDeductStockConcurrentOversubscribed(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 7))
	require.NoError(t, err)
	id := created.ID.Hex()

	// Ten goroutines racing for 5 units each against 7 in stock: exactly
	// one can win, the rest must see insufficient stock.
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DeductStock(ctx, id, 5)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, rejected int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repositories.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 9, rejected)

	item, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(2), item.Stock)
}

// ─── CheckAvailability ────────────────────────────────────────────────────────

func TestCheckAvailability(t *testing.T) {
	store := newMemStore()
	svc := services.NewInventoryService(store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, sample("bottle", 5))
	require.NoError(t, err)
	id := created.ID.Hex()

	available, err := svc.CheckAvailability(ctx, id, 5)
	require.NoError(t, err)
	require.True(t, available)

	available, err = svc.CheckAvailability(ctx, id, 6)
	require.NoError(t, err)
	require.False(t, available)

	// Zero quantity is trivially available; checking never mutates stock.
	available, err = svc.CheckAvailability(ctx, id, 0)
	require.NoError(t, err)
	require.True(t, available)

	item, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(5), item.Stock)

	_, err = svc.CheckAvailability(ctx, id, -1)
	require.ErrorIs(t, err, services.ErrInvalidQuantity)

	_, err = svc.CheckAvailability(ctx, primitive.NewObjectID().Hex(), 1)
	require.ErrorIs(t, err, repositories.ErrItemNotFound)
}
