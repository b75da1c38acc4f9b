// Package services holds the business logic of the inventory lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shashiranjanraj/maalgodam/app/models"
	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/pkg/broker"
	"github.com/shashiranjanraj/maalgodam/pkg/logger"
	"github.com/shashiranjanraj/maalgodam/pkg/metrics"
)

// Defaults applied when a list request omits pagination controls.
const (
	DefaultPage     int64 = 1
	DefaultPageSize int64 = 10
)

// ItemStore is the persistence contract the service depends on.
// Implemented by repositories.ItemRepository.
type ItemStore interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	FindByID(ctx context.Context, id string) (*models.Item, error)
	FindPage(ctx context.Context, filter models.ItemFilter, skip, limit int64) ([]models.Item, error)
	Count(ctx context.Context, filter models.ItemFilter) (int64, error)
	UpdateByID(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error)
	DeductStock(ctx context.Context, id string, quantity int64) (*models.Item, error)
	DeleteByID(ctx context.Context, id string) error
}

// InventoryService is the sole owner of item lifecycle transitions. It is
// constructed with its collaborators — no ambient globals.
type InventoryService struct {
	store  ItemStore
	events broker.Publisher // nil when event publication is disabled
}

// NewInventoryService builds the service. Pass a nil publisher to disable
// stock event publication.
func NewInventoryService(store ItemStore, events broker.Publisher) *InventoryService {
	return &InventoryService{store: store, events: events}
}

// Create persists a new item and announces stock.created. The name is
// lowercased before it hits the store. When the publish fails the item
// stays persisted but the error still reaches the caller — a deliberate,
// documented coupling.
func (s *InventoryService) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	item.Name = strings.ToLower(item.Name)

	created, err := s.store.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	metrics.ItemsCreated.Inc()

	if err := s.publish(ctx, broker.EventStockCreated, created); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the item or repositories.ErrItemNotFound.
func (s *InventoryService) GetByID(ctx context.Context, id string) (*models.Item, error) {
	return s.store.FindByID(ctx, id)
}

// List returns a page of items matching filter plus the pagination
// envelope. Page numbers below 1 clamp to 1 and sizes below 1 fall back
// to the default, so a hostile page value can never produce a negative
// skip. totalRows tracks the count query's reply; under concurrent
// writes it may lag the rows by a moment.
func (s *InventoryService) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = DefaultPage
	}
	size := filter.Size
	if size < 1 {
		size = DefaultPageSize
	}

	skip := (page - 1) * size

	items, err := s.store.FindPage(ctx, filter, skip, size)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	count, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, err
	}

	return items, models.NewPagination(count, size, page), nil
}

// Update merges only the supplied fields and announces stock.updated.
// A supplied name is lowercased like on create.
func (s *InventoryService) Update(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error) {
	if update.Name != nil {
		lowered := strings.ToLower(*update.Name)
		update.Name = &lowered
	}

	item, err := s.store.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, broker.EventStockUpdated, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes the item permanently and returns a confirmation message.
func (s *InventoryService) Delete(ctx context.Context, id string) (string, error) {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("inventory with id: %s successfully deleted", id), nil
}

// DeductStock subtracts quantity from the item's stock. The store applies
// the deduction as one atomic conditional update, so concurrent
// deductions on the same item never lose an update. No event is published
// for deductions.
func (s *InventoryService) DeductStock(ctx context.Context, id string, quantity int64) (*models.Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	item, err := s.store.DeductStock(ctx, id, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			metrics.DeductionsRejected.Inc()
		}
		return nil, err
	}

	metrics.StockDeducted.Add(float64(quantity))
	return item, nil
}

// CheckAvailability reports whether the item has at least quantity units
// in stock. Read-only.
func (s *InventoryService) CheckAvailability(ctx context.Context, id string, quantity int64) (bool, error) {
	if quantity < 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return item.Stock >= quantity, nil
}

func (s *InventoryService) publish(ctx context.Context, event string, item *models.Item) error {
	if s.events == nil {
		return nil
	}

	err := s.events.Publish(ctx, broker.StockEvent{
		Event:  event,
		ItemID: item.ID.Hex(),
		Name:   item.Name,
		Stock:  item.Stock,
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		logger.WithCtx(ctx).Error("stock event publish failed",
			"event", event, "item_id", item.ID.Hex(), "error", err)
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	metrics.EventsPublished.WithLabelValues("ok").Inc()
	return nil
}
