package repositories

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/shashiranjanraj/maalgodam/app/models"
)

// BuildItemQuery translates an ItemFilter into the store's native query.
// Absent (nil) fields impose no constraint; page/size never appear in the
// result. The output is a bson.D with a fixed field order so the same
// filter always yields the same query document.
//
// Name matching is exact against the stored lowercase name — items are
// case-normalized on write, so the input is lowercased here too.
func BuildItemQuery(f models.ItemFilter) bson.D {
	query := bson.D{}

	if f.Name != nil {
		query = append(query, bson.E{Key: "name", Value: strings.ToLower(*f.Name)})
	}
	if f.Price != nil {
		query = append(query, bson.E{Key: "price", Value: *f.Price})
	}
	if f.InStock != nil {
		query = append(query, bson.E{Key: "inStock", Value: *f.InStock})
	}
	if f.Stock != nil {
		query = append(query, bson.E{Key: "stock", Value: *f.Stock})
	}

	if f.StartDate != nil || f.EndDate != nil {
		window := bson.D{}
		if f.StartDate != nil {
			window = append(window, bson.E{Key: "$gte", Value: *f.StartDate})
		}
		if f.EndDate != nil {
			window = append(window, bson.E{Key: "$lte", Value: *f.EndDate})
		}
		query = append(query, bson.E{Key: "createdAt", Value: window})
	}

	return query
}
