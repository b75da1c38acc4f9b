package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is the inventory domain entity. The ObjectID identity is assigned
// by the store on insert and serialises to a plain hex string on the wire.
// InStock is an independently settable convenience flag; it is never
// derived from Stock.
type Item struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name"          json:"name"`
	Description string             `bson:"description"   json:"description"`
	Image       string             `bson:"image"         json:"image"`
	Price       float64            `bson:"price"         json:"price"`
	InStock     bool               `bson:"inStock"       json:"inStock"`
	Stock       int64              `bson:"stock"         json:"stock"`
	CreatedAt   time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"     json:"updatedAt"`
}

// ItemUpdate is a partial update. Nil pointers mean "leave the field
// untouched" — a nil Price and a zero Price are different requests.
type ItemUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
	Stock       *int64   `json:"stock,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Image == nil &&
		u.Price == nil && u.InStock == nil && u.Stock == nil
}

// ItemFilter narrows a listing query. Nil fields impose no constraint.
// Page and Size are pagination controls only and never become part of
// the store query.
type ItemFilter struct {
	Name      *string
	Price     *float64
	InStock   *bool
	Stock     *int64
	StartDate *time.Time
	EndDate   *time.Time

	Page int64
	Size int64
}

// Pagination is the paging metadata attached to list responses.
type Pagination struct {
	TotalRows   int64 `json:"totalRows"`
	PerPage     int64 `json:"perPage"`
	CurrentPage int64 `json:"currentPage"`
	TotalPages  int64 `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
}

// NewPagination computes the paging envelope for a page of size perPage
// out of totalRows matching rows.
func NewPagination(totalRows, perPage, currentPage int64) Pagination {
	totalPages := totalRows / perPage
	if totalRows%perPage != 0 {
		totalPages++
	}
	return Pagination{
		TotalRows:   totalRows,
		PerPage:     perPage,
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		HasNextPage: currentPage < totalPages,
	}
}
