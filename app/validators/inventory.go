// Package validators turns raw request input into typed payloads or
// field-level error maps. Validation lives here, at the boundary, not on
// the domain entity.
package validators

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/maalgodam/app/models"
)

// CreateItemForm is the raw multipart field set of a create request.
type CreateItemForm struct {
	Name        string
	Description string
	Price       string
	InStock     string
	Stock       string
}

// ValidateCreateForm parses and validates a create form. On success the
// returned error map is empty and the item carries the typed payload
// (identity, image and timestamps are filled in later by the service
// path).
func ValidateCreateForm(f CreateItemForm) (models.Item, map[string]string) {
	errs := map[string]string{}
	var item models.Item

	item.Name = strings.TrimSpace(f.Name)
	if item.Name == "" {
		errs["name"] = "name is required"
	}

	item.Description = strings.TrimSpace(f.Description)
	if item.Description == "" {
		errs["description"] = "description is required"
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	switch {
	case f.Price == "":
		errs["price"] = "price is required"
	case err != nil:
		errs["price"] = "price must be a number"
	case price < 0:
		errs["price"] = "price must not be negative"
	default:
		item.Price = price
	}

	inStock, err := strconv.ParseBool(strings.TrimSpace(f.InStock))
	switch {
	case f.InStock == "":
		errs["inStock"] = "inStock is required"
	case err != nil:
		errs["inStock"] = "inStock must be a boolean"
	default:
		item.InStock = inStock
	}

	stock, err := strconv.ParseInt(strings.TrimSpace(f.Stock), 10, 64)
	switch {
	case f.Stock == "":
		errs["stock"] = "stock is required"
	case err != nil:
		errs["stock"] = "stock must be an integer"
	case stock < 0:
		errs["stock"] = "stock must not be negative"
	default:
		item.Stock = stock
	}

	return item, errs
}

// ValidateUpdate checks a decoded partial update. Absent fields are fine;
// supplied fields must still satisfy the create-time rules.
func ValidateUpdate(u models.ItemUpdate) map[string]string {
	errs := map[string]string{}

	if u.Empty() {
		errs["body"] = "at least one field must be supplied"
		return errs
	}

	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		errs["name"] = "name must not be empty"
	}
	if u.Description != nil && strings.TrimSpace(*u.Description) == "" {
		errs["description"] = "description must not be empty"
	}
	if u.Price != nil && *u.Price < 0 {
		errs["price"] = "price must not be negative"
	}
	if u.Stock != nil && *u.Stock < 0 {
		errs["stock"] = "stock must not be negative"
	}

	return errs
}

// dateLayouts accepted for start_date / end_date query parameters.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseListQuery translates list query parameters into an ItemFilter.
// Unknown parameters are ignored; unparseable values produce field
// errors. page and size are pagination controls, never filter fields.
func ParseListQuery(q url.Values) (models.ItemFilter, map[string]string) {
	errs := map[string]string{}
	var filter models.ItemFilter

	if v := q.Get("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs["page"] = "page must be an integer"
		} else {
			filter.Page = page
		}
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs["size"] = "size must be an integer"
		} else {
			filter.Size = size
		}
	}

	if v := q.Get("name"); v != "" {
		name := v
		filter.Name = &name
	}
	if v := q.Get("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs["price"] = "price must be a number"
		} else {
			filter.Price = &price
		}
	}
	if v := q.Get("inStock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			errs["inStock"] = "inStock must be a boolean"
		} else {
			filter.InStock = &inStock
		}
	}
	if v := q.Get("stock"); v != "" {
		stock, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs["stock"] = "stock must be an integer"
		} else {
			filter.Stock = &stock
		}
	}

	if v := q.Get("start_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs["start_date"] = "start_date must be RFC3339 or YYYY-MM-DD"
		} else {
			filter.StartDate = &t
		}
	}
	if v := q.Get("end_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			errs["end_date"] = "end_date must be RFC3339 or YYYY-MM-DD"
		} else {
			filter.EndDate = &t
		}
	}

	return filter, errs
}

// ParseQuantity parses a positive quantity value (deduction body or
// check-stock query).
func ParseQuantity(raw string) (int64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "quantity is required"
	}
	qty, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, "quantity must be an integer"
	}
	return qty, ""
}

func parseDate(v string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
