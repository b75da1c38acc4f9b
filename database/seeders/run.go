// Package seeders fills the items collection with sample data for local
// development.
package seeders

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/maalgodam/app/models"
	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/pkg/logger"
)

var sampleItems = []models.Item{
	{Name: "steel water bottle", Description: "1L insulated steel bottle", Price: 499, InStock: true, Stock: 120},
	{Name: "cotton t-shirt", Description: "Plain white cotton t-shirt, size M", Price: 299, InStock: true, Stock: 45},
	{Name: "wireless mouse", Description: "2.4GHz optical mouse", Price: 899, InStock: true, Stock: 30},
	{Name: "desk lamp", Description: "LED desk lamp with dimmer", Price: 1299, InStock: true, Stock: 18},
	{Name: "notebook a5", Description: "Ruled A5 notebook, 200 pages", Price: 149, InStock: true, Stock: 300},
	{Name: "usb-c cable", Description: "1m braided usb-c to usb-c cable", Price: 249, InStock: false, Stock: 0},
}

// Run inserts the sample items. Existing documents are left untouched;
// seeding twice simply adds another batch.
func Run(ctx context.Context, repo *repositories.ItemRepository) error {
	for i := range sampleItems {
		item := sampleItems[i]
		created, err := repo.Create(ctx, &item)
		if err != nil {
			return fmt.Errorf("seeders: insert %q: %w", item.Name, err)
		}
		logger.Info("seeded item", "id", created.ID.Hex(), "name", created.Name)
	}
	return nil
}
