// Package controllers maps HTTP requests onto the inventory service and
// renders the JSON envelope.
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/maalgodam/app/models"
	"github.com/shashiranjanraj/maalgodam/app/repositories"
	"github.com/shashiranjanraj/maalgodam/app/services"
	"github.com/shashiranjanraj/maalgodam/app/validators"
	"github.com/shashiranjanraj/maalgodam/pkg/logger"
	"github.com/shashiranjanraj/maalgodam/pkg/response"
)

// Service is the slice of the inventory service the controller needs.
type Service interface {
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	GetByID(ctx context.Context, id string) (*models.Item, error)
	List(ctx context.Context, filter models.ItemFilter) ([]models.Item, models.Pagination, error)
	Update(ctx context.Context, id string, update models.ItemUpdate) (*models.Item, error)
	Delete(ctx context.Context, id string) (string, error)
	DeductStock(ctx context.Context, id string, quantity int64) (*models.Item, error)
	CheckAvailability(ctx context.Context, id string, quantity int64) (bool, error)
}

// Uploader resolves an image payload into a durable URL.
type Uploader interface {
	Upload(ctx context.Context, payload io.Reader, mimeType string, size int64) (string, error)
}

type InventoryController struct {
	service Service
	uploads Uploader
}

func NewInventoryController(service Service, uploads Uploader) *InventoryController {
	return &InventoryController{service: service, uploads: uploads}
}

// Create handles POST /api/inventory: multipart item fields plus a
// required image file. The image is uploaded before anything is
// persisted — an upload failure leaves no partial item behind.
func (c *InventoryController) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(services.MaxUploadBytes + 1<<20); err != nil {
		response.Error(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	item, errs := validators.ValidateCreateForm(validators.CreateItemForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		InStock:     r.FormValue("inStock"),
		Stock:       r.FormValue("stock"),
	})

	file, header, err := r.FormFile("image")
	if err != nil {
		errs["image"] = "image file is required"
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}
	defer file.Close()

	url, err := c.uploads.Upload(r.Context(), file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	item.Image = url

	created, err := c.service.Create(r.Context(), &item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, created)
}

// List handles GET /api/inventory with optional filter and pagination
// query parameters.
func (c *InventoryController) List(w http.ResponseWriter, r *http.Request) {
	filter, errs := validators.ParseListQuery(r.URL.Query())
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	items, pagination, err := c.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Paginated(w, items, pagination)
}

// Get handles GET /api/inventory/{id}.
func (c *InventoryController) Get(w http.ResponseWriter, r *http.Request) {
	item, err := c.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

// Update handles PUT /api/inventory/{id} with a partial JSON body. Only
// supplied fields are merged; absent and zero-valued fields are distinct.
func (c *InventoryController) Update(w http.ResponseWriter, r *http.Request) {
	var update models.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	if errs := validators.ValidateUpdate(update); len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	item, err := c.service.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

// Delete handles DELETE /api/inventory/{id}.
func (c *InventoryController) Delete(w http.ResponseWriter, r *http.Request) {
	msg, err := c.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Message(w, msg)
}

// CheckStock handles GET /api/inventory/check-stock/{id}?quantity=N.
func (c *InventoryController) CheckStock(w http.ResponseWriter, r *http.Request) {
	qty, msg := validators.ParseQuantity(r.URL.Query().Get("quantity"))
	if msg != "" {
		response.ValidationError(w, map[string]string{"quantity": msg})
		return
	}

	available, err := c.service.CheckAvailability(r.Context(), chi.URLParam(r, "id"), qty)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, map[string]bool{"isAvailable": available})
}

// DeductStock handles PUT /api/inventory/deduct-stock/{id} with a
// {"quantity": N} body.
func (c *InventoryController) DeductStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity *int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "malformed JSON body")
		return
	}
	if body.Quantity == nil {
		response.ValidationError(w, map[string]string{"quantity": "quantity is required"})
		return
	}

	item, err := c.service.DeductStock(r.Context(), chi.URLParam(r, "id"), *body.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, item)
}

// writeError maps domain errors onto HTTP statuses. Every error is
// terminal for the request — nothing is retried here.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repositories.ErrItemNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, repositories.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidMediaType):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrPayloadTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, services.ErrUploadFailed),
		errors.Is(err, services.ErrPublishFailed):
		response.Error(w, http.StatusBadGateway, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("unhandled inventory error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
