// Package ctx provides a request context for storefront handlers.
//
// Instead of accepting (http.ResponseWriter, *http.Request), a handler
// receives a single *Context:
//
//	func (h *CartController) Remove(c *ctx.Context) {
//	    view, err := h.cart.Remove(c.Context(), c.Param("id"))
//	    ...
//	    c.Success(view)
//	}
//
//	router.Delete("/cart/{id}", "api.cart.remove", ctx.Wrap(h.Remove))
package ctx

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/bloomthread/pkg/bind"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/response"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
	"github.com/shashiranjanraj/bloomthread/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap converts a HandlerFunc to a standard http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	mu     sync.RWMutex
	store  map[string]any
	status int // 0 until a response is written
}

var pool = sync.Pool{
	New: func() any { return &Context{store: make(map[string]any)} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	clear(c.store)
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// ─── Request helpers ──────────────────────────────────────────────────────────

// Param returns a URL path parameter ("/cart/{id}" → c.Param("id")).
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// Query returns a trimmed query-string value. Returns "" if not present.
func (c *Context) Query(key string) string {
	return strings.TrimSpace(c.R.URL.Query().Get(key))
}

// DefaultQuery returns a query-string value, or def if it is empty.
func (c *Context) DefaultQuery(key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return def
}

// PostForm returns a trimmed form field.
func (c *Context) PostForm(key string) string {
	return strings.TrimSpace(c.R.FormValue(key))
}

// Header returns the value of a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// Context returns the underlying request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Visitor returns the id of the visitor space this request belongs to.
func (c *Context) Visitor() string { return session.VisitorID(c.R.Context()) }

// WantsJSON reports whether the client prefers a JSON answer over HTML.
func (c *Context) WantsJSON() bool {
	if strings.HasPrefix(c.R.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.R.Header.Get("Accept"), "application/json")
}

// ─── Per-request store ────────────────────────────────────────────────────────

// Set stores a value for the lifetime of the request.
func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	c.store[key] = val
	c.mu.Unlock()
}

// Get retrieves a value from the per-request store.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	v, ok := c.store[key]
	c.mu.RUnlock()
	return v, ok
}

// GetString returns a string value from the store, or "" if absent/wrong type.
func (c *Context) GetString(key string) string {
	v, _ := c.Get(key)
	s, _ := v.(string)
	return s
}

// ─── Binding / Validation ─────────────────────────────────────────────────────

// BindJSON decodes the JSON body into dest and runs validation.
// It answers 400 on malformed JSON and 422 on validation failure, and
// returns true only when dest is ready to use.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// DecodeJSON fills dest from the body like BindJSON but leaves rule
// failures to the caller. Only a malformed body is answered, with a 400.
func (c *Context) DecodeJSON(dest any) bool {
	if _, err := bind.JSON(c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// BindForm fills dest from the posted form. Unlike BindJSON it writes
// nothing, since page handlers answer failures with a notice and redirect.
func (c *Context) BindForm(dest any) (map[string]string, error) {
	return bind.Form(c.R, dest)
}

// Validate runs validation rules on an already-populated struct.
func (c *Context) Validate(v any) map[string]string {
	return validate.Struct(v)
}

// ─── Response helpers ─────────────────────────────────────────────────────────

func (c *Context) SetHeader(key, value string) {
	c.W.Header().Set(key, value)
}

// Status writes just the HTTP status code with an empty body.
func (c *Context) Status(code int) {
	c.status = code
	c.W.WriteHeader(code)
}

// JSON writes v as a JSON response with the given status code.
func (c *Context) JSON(code int, v any) {
	c.W.Header().Set("Content-Type", "application/json")
	c.W.WriteHeader(code)
	c.status = code
	json.NewEncoder(c.W).Encode(v) //nolint:errcheck
}

func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Message sends data with a user-facing message in the envelope.
func (c *Context) Message(code int, message string, data any) {
	c.status = code
	response.Message(c.W, code, message, data)
}

func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

func (c *Context) NotFound(message string) {
	c.status = http.StatusNotFound
	response.NotFound(c.W, message)
}

// Redirect sends a redirect. Form posts use 303 so the browser follows with GET.
func (c *Context) Redirect(code int, location string) {
	c.status = code
	http.Redirect(c.W, c.R, location, code)
}

// Back redirects to the same-origin page the request came from, or to
// fallback when the Referer is missing or points elsewhere.
func (c *Context) Back(fallback string) {
	c.Redirect(http.StatusSeeOther, c.backURL(fallback))
}

// BackWithout is Back with the named query parameters removed, e.g. to
// close the product modal after adding from it.
func (c *Context) BackWithout(fallback string, params ...string) {
	c.Redirect(http.StatusSeeOther, c.backURL(fallback, params...))
}

func (c *Context) backURL(fallback string, drop ...string) string {
	ref, err := url.Parse(c.R.Referer())
	if err != nil || ref.Path == "" {
		return fallback
	}
	if ref.Host != "" && ref.Host != c.R.Host {
		return fallback
	}
	q := ref.Query()
	for _, p := range drop {
		q.Del(p)
	}
	if len(drop) > 0 {
		ref.RawQuery = q.Encode()
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

// Render executes the named template into a buffer first, so a template
// error still yields a clean 500 instead of half a page.
func (c *Context) Render(code int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		logger.WithCtx(c.Context()).Error("render failed", "template", name, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.W.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.W.WriteHeader(code)
	c.status = code
	c.W.Write(buf.Bytes()) //nolint:errcheck
}

// WrittenStatus returns the status code written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
