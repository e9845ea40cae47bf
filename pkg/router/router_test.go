package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bloomthread/pkg/router"
)

func TestGroupMountsWithPrefixAndName(t *testing.T) {
	r := router.New()
	api := r.Group("/api/")
	api.Delete("/cart/{id}", "api.cart.remove", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(chi.URLParam(req, "id"))) //nolint:errcheck
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/cart/p3", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p3", rec.Body.String())

	url, err := r.URL("api.cart.remove", map[string]string{"id": "p7"})
	require.NoError(t, err)
	assert.Equal(t, "/api/cart/p7", url)
}

func TestURLErrors(t *testing.T) {
	r := router.New()
	r.Get("/products/{id}", "products.show", func(http.ResponseWriter, *http.Request) {})

	_, err := r.URL("missing", nil)
	assert.Error(t, err)

	_, err = r.URL("products.show", nil)
	assert.Error(t, err)
}

func TestGroupMiddlewareOrder(t *testing.T) {
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
	g := r.Group("/outer", tag("outer")).Group("/inner", tag("inner"))
	g.Post("/", "", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }, tag("route"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/outer/inner", nil))

	assert.Equal(t, []string{"outer", "inner", "route", "handler"}, order)
}

func TestRoutesAreSorted(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}
	r := router.New()
	r.Post("/cart/add", "cart.add", noop)
	r.Get("/", "home", noop)
	r.Get("/cart/add", "", noop)

	infos := r.Routes()
	require.Len(t, infos, 3)
	assert.Equal(t, router.RouteInfo{Method: http.MethodGet, Path: "/", Name: "home"}, infos[0])
	assert.Equal(t, http.MethodGet, infos[1].Method)
	assert.Equal(t, http.MethodPost, infos[2].Method)
}
