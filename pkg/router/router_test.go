package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/maalgodam/pkg/router"
)

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestNamedRoutesRecorded(t *testing.T) {
	r := router.New()
	r.Get("/items", "items.list", ok)
	r.Post("/items", "items.create", ok)
	r.Get("/ping", "", ok) // unnamed, not recorded

	infos := r.Routes()
	if len(infos) != 2 {
		t.Fatalf("got %d routes", len(infos))
	}

	path, found := r.Path("items.create")
	if !found || path != "/items" {
		t.Errorf("path = %q found = %v", path, found)
	}
}

func TestURLSubstitutesParams(t *testing.T) {
	r := router.New()
	r.Get("/items/{id}", "items.get", ok)

	url, err := r.URL("items.get", map[string]string{"id": "abc123"})
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "/items/abc123" {
		t.Errorf("url = %q", url)
	}

	if _, err := r.URL("items.get", nil); err == nil {
		t.Error("expected error for missing params")
	}
	if _, err := r.URL("nope", nil); err == nil {
		t.Error("expected error for unknown route")
	}
}

func TestGroupPrefixAndMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	api := r.Group("/api", tag("outer"))
	v1 := api.Group("/v1", tag("inner"))
	v1.Get("/items", "v1.items", ok)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}

	path, found := r.Path("v1.items")
	if !found || path != "/api/v1/items" {
		t.Errorf("path = %q", path)
	}
}

func TestMethodsAreDistinct(t *testing.T) {
	r := router.New()
	r.Get("/items", "items.list", ok)

	req := httptest.NewRequest(http.MethodDelete, "/items", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}
