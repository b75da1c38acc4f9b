package routes

import (
	"net/http"

	"github.com/shashiranjanraj/maalgodam/app/controllers"
	"github.com/shashiranjanraj/maalgodam/pkg/router"
)

// RegisterAPI mounts the inventory endpoints under /api.
//
// The literal check-stock and deduct-stock segments could be shadowed by
// the {id} routes, but chi resolves static segments ahead of parameters,
// so registration order here is cosmetic.
func RegisterAPI(r *router.Router, inventory *controllers.InventoryController) {
	api := r.Group("/api")

	api.Post("/inventory", "inventory.create", inventory.Create)
	api.Get("/inventory", "inventory.list", inventory.List)
	api.Get("/inventory/check-stock/{id}", "inventory.check-stock", inventory.CheckStock)
	api.Put("/inventory/deduct-stock/{id}", "inventory.deduct-stock", inventory.DeductStock)
	api.Get("/inventory/{id}", "inventory.get", inventory.Get)
	api.Put("/inventory/{id}", "inventory.update", inventory.Update)
	api.Delete("/inventory/{id}", "inventory.delete", inventory.Delete)
}

// RegisterHealth mounts the liveness probe.
func RegisterHealth(r *router.Router) {
	r.Get("/healthz", "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}
