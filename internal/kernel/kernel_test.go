package kernel_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/internal/kernel"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/imagecheck"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/middleware"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
	"github.com/shashiranjanraj/bloomthread/pkg/testkit"
	"github.com/shashiranjanraj/bloomthread/pkg/ws"
)

func newKernel(t *testing.T, hub *ws.Hub) *kernel.Kernel {
	t.Helper()

	images := imagecheck.New(imagecheck.Options{
		Timeout:     100 * time.Millisecond,
		FallbackURL: "https://example.test/fallback.jpg",
		TTL:         time.Minute,
		Workers:     2,
	})
	t.Cleanup(images.Close)

	sess := session.Options{
		CookieName: session.CookieName,
		Secret:     []byte("kernel-test-key"),
		TTL:        24 * time.Hour,
		Path:       "/",
	}

	k, err := kernel.New(kernel.Options{
		Store:   kv.NewMemory(),
		Images:  images,
		Events:  event.NewDispatcher(),
		Hub:     hub,
		Limiter: middleware.NewLimiter(1000, time.Minute),
		Session: &sess,
	})
	require.NoError(t, err)
	return k
}

func TestAPIScenarios(t *testing.T) {
	testkit.RunDir(t, newKernel(t, nil).Handler(), "testdata")
}

func TestNewRequiresStore(t *testing.T) {
	_, err := kernel.New(kernel.Options{})
	assert.Error(t, err)
}

type visitor struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newVisitor(t *testing.T, srv *httptest.Server) *visitor {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &visitor{t: t, base: srv.URL, client: &http.Client{Jar: jar, Timeout: 5 * time.Second}}
}

func (v *visitor) get(path string) (int, string) {
	v.t.Helper()
	resp, err := v.client.Get(v.base + path)
	require.NoError(v.t, err)
	return read(v.t, resp)
}

func (v *visitor) post(path string, form url.Values) (int, string) {
	v.t.Helper()
	resp, err := v.client.PostForm(v.base+path, form)
	require.NoError(v.t, err)
	return read(v.t, resp)
}

func read(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestShoppingFlow(t *testing.T) {
	srv := httptest.NewServer(newKernel(t, nil).Handler())
	defer srv.Close()
	v := newVisitor(t, srv)

	code, page := v.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Floral Summer Dress")
	assert.Contains(t, page, "Tailored Chinos")

	code, page = v.get("/?tag=Jackets")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Elegant Blazer")
	assert.NotContains(t, page, "Classic White Tee")

	code, page = v.get("/?product=p8")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, models.ProductDescription)

	for range 2 {
		code, page = v.post("/cart/add", url.Values{"product_id": {"p2"}})
		require.Equal(t, http.StatusOK, code)
	}
	assert.Contains(t, page, "Added to cart")

	code, page = v.get("/?cart=open")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "₹998")

	code, page = v.post("/checkout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Classic White Tee")
	assert.Contains(t, page, "Total: ₹998")

	code, page = v.post("/payment", url.Values{"name": {"Asha"}, "email": {"asha@example.com"}, "method": {"stripe"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "cannot perform real payments")

	code, page = v.post("/payment", url.Values{"name": {""}, "email": {"asha@example.com"}, "method": {"demo"}})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, page, "Please enter name and email")

	code, page = v.post("/payment", url.Values{"name": {"Asha"}, "email": {"asha@example.com"}, "method": {"demo"}})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Payment simulated")

	code, body := v.get("/api/orders")
	require.Equal(t, http.StatusOK, code)
	var orders struct {
		Data []models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &orders))
	require.Len(t, orders.Data, 1)
	assert.Equal(t, "Asha", orders.Data[0].Name)
	assert.Equal(t, models.MethodDemo, orders.Data[0].Method)
	assert.Equal(t, 998, orders.Data[0].Amount)
	assert.True(t, strings.HasPrefix(orders.Data[0].ID, "ORD"))

	code, body = v.get("/api/cart")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":200,"data":{"lines":[],"total":0,"count":0}}`, body)

	code, page = v.get("/payment")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, page, "Nothing to pay")
}

func TestVisitorsAreIsolated(t *testing.T) {
	srv := httptest.NewServer(newKernel(t, nil).Handler())
	defer srv.Close()
	a, b := newVisitor(t, srv), newVisitor(t, srv)

	code, _ := a.post("/cart/add", url.Values{"product_id": {"p1"}})
	require.Equal(t, http.StatusOK, code)
	code, _ = a.post("/theme/toggle", nil)
	require.Equal(t, http.StatusOK, code)

	_, body := b.get("/api/cart")
	assert.JSONEq(t, `{"status":200,"data":{"lines":[],"total":0,"count":0}}`, body)
	_, body = b.get("/api/theme")
	assert.JSONEq(t, `{"status":200,"data":{"theme":"light"}}`, body)

	_, body = a.get("/api/theme")
	assert.JSONEq(t, `{"status":200,"data":{"theme":"dark"}}`, body)
}

func TestGraphQLSharesTheVisitorSpace(t *testing.T) {
	srv := httptest.NewServer(newKernel(t, nil).Handler())
	defer srv.Close()
	v := newVisitor(t, srv)

	code, _ := v.post("/cart/add", url.Values{"product_id": {"p4"}})
	require.Equal(t, http.StatusOK, code)

	resp, err := v.client.Post(srv.URL+"/graphql", "application/json",
		strings.NewReader(`{"query":"{ cart { count total } }"}`))
	require.NoError(t, err)
	code, body := read(t, resp)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"data":{"cart":{"count":1,"total":699}}}`, body)

	code, _ = v.get("/graphql?query=" + url.QueryEscape("mutation { toggleTheme }"))
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	_, body = v.get("/api/theme")
	assert.JSONEq(t, `{"status":200,"data":{"theme":"light"}}`, body)
}

func TestAPIAddLeavesNoPageNotice(t *testing.T) {
	srv := httptest.NewServer(newKernel(t, nil).Handler())
	defer srv.Close()
	v := newVisitor(t, srv)

	resp, err := v.client.Post(srv.URL+"/api/cart", "application/json", strings.NewReader(`{"product_id":"p2"}`))
	require.NoError(t, err)
	code, body := read(t, resp)
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, body, "Added to cart")

	resp, err = v.client.Post(srv.URL+"/graphql", "application/json",
		strings.NewReader(`{"query":"mutation { addToCart(productId: \"p3\") { count } }"}`))
	require.NoError(t, err)
	code, _ = read(t, resp)
	require.Equal(t, http.StatusOK, code)

	code, page := v.get("/")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, page, "Added to cart")
}

func TestWebsocketPushesThemeChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := ws.NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(newKernel(t, hub).Handler())
	defer srv.Close()
	v := newVisitor(t, srv)

	code, _ := v.get("/")
	require.Equal(t, http.StatusOK, code)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, c := range v.client.Jar.Cookies(u) {
		header.Add("Cookie", c.Name+"="+c.Value)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	code, _ = v.post("/theme/toggle", nil)
	require.Equal(t, http.StatusOK, code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"theme","theme":"dark"}`, string(msg))
}

func TestRoutesAreNamed(t *testing.T) {
	k := newKernel(t, nil)

	names := map[string]bool{}
	for _, r := range k.Router.Routes() {
		names[r.Name] = true
	}
	for _, want := range []string{"home", "cart.add", "payment.pay", "api.cart.add", "api.images.check", "health", "graphql"} {
		assert.True(t, names[want], "route %q missing", want)
	}
}
