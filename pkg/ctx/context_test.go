package ctx_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	appctx "github.com/shashiranjanraj/bloomthread/pkg/ctx"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
)

func TestWrapAndJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.JSON(http.StatusOK, map[string]any{"ok": true})
	})(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestMessageEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Message(http.StatusCreated, "Added to cart", map[string]int{"count": 1})
		if c.WrittenStatus() != http.StatusCreated {
			t.Errorf("expected written status 201, got %d", c.WrittenStatus())
		}
	})(rec, req)

	want := `{"status":201,"message":"Added to cart","data":{"count":1}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSetAndGet(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	appctx.Wrap(func(c *appctx.Context) {
		c.Set("tag", "Women")
		if got := c.GetString("tag"); got != "Women" {
			t.Errorf("expected Women, got %q", got)
		}
		if got := c.GetString("missing"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})(rec, req)
}

func TestBindJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":""}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			ProductID string `json:"product_id" validate:"required"`
		}
		if c.BindJSON(&input) {
			t.Error("expected BindJSON to fail")
		}
	})(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestBindJSONMalformed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		c.BindJSON(&input)
	})(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDecodeJSONLeavesRulesToCaller(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"method":"paypal"}`))

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Method string `json:"method" validate:"required,in=demo"`
		}
		if !c.DecodeJSON(&input) {
			t.Fatal("expected DecodeJSON to succeed")
		}
		if input.Method != "paypal" {
			t.Errorf("expected decoded method, got %q", input.Method)
		}
	})(rec, req)

	if rec.Body.Len() != 0 {
		t.Errorf("expected nothing written, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		var input struct{}
		c.DecodeJSON(&input)
	})(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBindFormTrimsAndValidates(t *testing.T) {
	form := url.Values{"name": {"  Asha  "}, "method": {"paypal"}}
	req := httptest.NewRequest(http.MethodPost, "/payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	appctx.Wrap(func(c *appctx.Context) {
		var input struct {
			Name   string `form:"name"   validate:"required"`
			Method string `form:"method" validate:"required,in=demo,stripe,razorpay"`
		}
		errs, err := c.BindForm(&input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if input.Name != "Asha" {
			t.Errorf("expected trimmed name, got %q", input.Name)
		}
		if _, ok := errs["method"]; !ok {
			t.Errorf("expected method error, got %v", errs)
		}
	})(httptest.NewRecorder(), req)
}

func TestBackStaysOnSameHost(t *testing.T) {
	cases := map[string]string{
		"":                            "/",
		"http://example.com/?tag=Men": "/?tag=Men",
		"http://evil.test/phish":      "/",
		"http://example.com/payment":  "/payment",
	}
	for referer, want := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "http://example.com/cart/add", nil)
		if referer != "" {
			req.Header.Set("Referer", referer)
		}
		appctx.Wrap(func(c *appctx.Context) { c.Back("/") })(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("%q: expected 303, got %d", referer, rec.Code)
		}
		if got := rec.Header().Get("Location"); got != want {
			t.Errorf("%q: expected Location %q, got %q", referer, want, got)
		}
	}
}

func TestBackWithoutDropsParams(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/cart/add", nil)
	req.Header.Set("Referer", "http://example.com/?product=p1&tag=Men")

	appctx.Wrap(func(c *appctx.Context) { c.BackWithout("/", "product") })(rec, req)

	if got := rec.Header().Get("Location"); got != "/?tag=Men" {
		t.Errorf("expected /?tag=Men, got %q", got)
	}
}

func TestRender(t *testing.T) {
	tmpl := template.Must(template.New("page").Parse(`<p>{{.}}</p>`))

	rec := httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Render(http.StatusOK, tmpl, "page", "<b>hi</b>")
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Body.String(); got != "<p>&lt;b&gt;hi&lt;/b&gt;</p>" {
		t.Errorf("unexpected body: %s", got)
	}

	rec = httptest.NewRecorder()
	appctx.Wrap(func(c *appctx.Context) {
		c.Render(http.StatusOK, tmpl, "missing", nil)
	})(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for missing template, got %d", rec.Code)
	}
}

func TestVisitorAndWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req = req.WithContext(session.WithVisitor(req.Context(), "v-123"))

	appctx.Wrap(func(c *appctx.Context) {
		if c.Visitor() != "v-123" {
			t.Errorf("expected visitor v-123, got %q", c.Visitor())
		}
		if !c.WantsJSON() {
			t.Error("expected /api/ requests to want JSON")
		}
	})(httptest.NewRecorder(), req)
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	appctx.Wrap(func(c *appctx.Context) {
		c.NotFound("Product not found")
	})(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Product not found") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
