package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/app/repositories"
	"github.com/shashiranjanraj/bloomthread/pkg/event"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
)

type recorder struct {
	mu     sync.Mutex
	events map[string][]any
}

func record(d *event.Dispatcher, names ...string) *recorder {
	r := &recorder{events: map[string][]any{}}
	for _, name := range names {
		d.Listen(name, func(_ context.Context, payload any) {
			r.mu.Lock()
			r.events[name] = append(r.events[name], payload)
			r.mu.Unlock()
		})
	}
	return r
}

func (r *recorder) get(name string) []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[name]
}

type fakeImages struct{ fallback string }

func (f fakeImages) ResolveAll(_ context.Context, urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		if strings.Contains(u, "1520975680246") {
			out[i] = f.fallback
		} else {
			out[i] = u
		}
	}
	return out
}

func setup(t *testing.T) (*Services, *recorder, context.Context) {
	t.Helper()
	d := event.NewDispatcher()
	rec := record(d, EventCartChanged, EventThemeChanged, EventOrderPaid)
	repo := repositories.NewStoreRepository(kv.NewMemory())
	svc := New(repo, nil, d)
	svc.Checkout.Now = func() time.Time { return time.UnixMilli(1760000000000) }

	ctx := session.WithVisitor(context.Background(), "v1")
	require.NoError(t, repo.Init(ctx))
	return svc, rec, ctx
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

// ─── Catalog ─────────────────────────────────────────────────────────────────

func TestListFilters(t *testing.T) {
	svc, _, ctx := setup(t)

	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all", Filter{}, []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}},
		{"All chip", Filter{Tag: "All"}, []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}},
		{"tag", Filter{Tag: "Jackets"}, []string{"p3", "p5"}},
		{"tag is exact", Filter{Tag: "jackets"}, []string{}},
		{"query title", Filter{Query: "  DENIM "}, []string{"p3"}},
		{"query tag", Filter{Query: "new"}, []string{"p1", "p6"}},
		{"tag and query", Filter{Tag: "Men", Query: "casual"}, []string{"p2", "p4"}},
		{"low", Filter{Tag: "Women", Sort: SortLow}, []string{"p7", "p1", "p3", "p5"}},
		{"high", Filter{Tag: "Men", Sort: SortHigh}, []string{"p8", "p6", "p4", "p2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Catalog.List(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(got))
		})
	}
}

func TestFindAndTags(t *testing.T) {
	svc, _, ctx := setup(t)

	p, err := svc.Catalog.Find(ctx, "p5")
	require.NoError(t, err)
	assert.Equal(t, "Elegant Blazer", p.Title)

	_, err = svc.Catalog.Find(ctx, "nope")
	assert.ErrorIs(t, err, ErrProductNotFound)

	tags, err := svc.Catalog.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Women", "New", "Casual", "Men", "Jackets"}, tags)
}

func TestWithImagesSubstitutesFallback(t *testing.T) {
	repo := repositories.NewStoreRepository(kv.NewMemory())
	catalog := NewCatalogService(repo, fakeImages{fallback: "fallback.jpg"})
	ctx := session.WithVisitor(context.Background(), "v1")

	products := models.SampleProducts()
	shown := catalog.WithImages(ctx, products)

	assert.Equal(t, "fallback.jpg", shown[6].Img)
	assert.Equal(t, products[0].Img, shown[0].Img)
	assert.NotEqual(t, "fallback.jpg", products[6].Img, "input must not be modified")
}

// ─── Cart ────────────────────────────────────────────────────────────────────

func TestAddTwiceGroupsToQuantityTwo(t *testing.T) {
	svc, rec, ctx := setup(t)

	_, err := svc.Cart.Add(ctx, "p1")
	require.NoError(t, err)
	_, err = svc.Cart.Add(ctx, "p1")
	require.NoError(t, err)

	view, err := svc.Cart.View(ctx)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2, view.Lines[0].Qty)
	assert.Equal(t, 1998, view.Total)
	assert.Equal(t, 2, view.Count)

	changes := rec.get(EventCartChanged)
	require.Len(t, changes, 2)
	assert.Equal(t, CartChanged{Visitor: "v1", Count: 2}, changes[1])

	assert.Empty(t, svc.Notices.Pull(ctx))
}

func TestAddUnknownProduct(t *testing.T) {
	svc, rec, ctx := setup(t)

	_, err := svc.Cart.Add(ctx, "p99")
	require.ErrorIs(t, err, ErrProductNotFound)
	assert.Empty(t, rec.get(EventCartChanged))

	count, err := svc.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRemoveClearsAllLinesOfProduct(t *testing.T) {
	svc, _, ctx := setup(t)
	for _, id := range []string{"p1", "p2", "p1", "p1"} {
		_, err := svc.Cart.Add(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, svc.Cart.Remove(ctx, "p1"))

	view, err := svc.Cart.View(ctx)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "p2", view.Lines[0].ID)
	assert.Equal(t, 1, view.Count)

	require.NoError(t, svc.Cart.Remove(ctx, "p7"))
}

func TestClearEmptiesStorage(t *testing.T) {
	svc, _, ctx := setup(t)
	_, err := svc.Cart.Add(ctx, "p3")
	require.NoError(t, err)

	require.NoError(t, svc.Cart.Clear(ctx))

	count, err := svc.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	raw, err := svc.Repo.Space(ctx).Get(ctx, repositories.KeyCart)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	view, err := svc.Cart.View(ctx)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Zero(t, view.Total)
}

// ─── Checkout ────────────────────────────────────────────────────────────────

func TestProceedEmptyCart(t *testing.T) {
	svc, _, ctx := setup(t)

	_, err := svc.Checkout.Proceed(ctx)
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.Checkout.Summary(ctx)
	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestCheckoutTotalIsSumOfGroupedLines(t *testing.T) {
	svc, _, ctx := setup(t)
	for _, id := range []string{"p2", "p5", "p2", "p8"} {
		_, err := svc.Cart.Add(ctx, id)
		require.NoError(t, err)
	}

	summary, err := svc.Checkout.Proceed(ctx)
	require.NoError(t, err)

	sum := 0
	for _, l := range summary.Items {
		sum += l.Price * l.Qty
	}
	assert.Equal(t, sum, summary.Total)
	assert.Equal(t, 499*2+2499+1399, summary.Total)

	stored, err := svc.Checkout.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, summary, stored)
}

func TestPayDemoCreatesOrder(t *testing.T) {
	svc, rec, ctx := setup(t)
	_, err := svc.Cart.Add(ctx, "p4")
	require.NoError(t, err)
	_, err = svc.Checkout.Proceed(ctx)
	require.NoError(t, err)

	order, err := svc.Checkout.Pay(ctx, PaymentRequest{Name: " Asha ", Email: "asha@example.com ", Method: "demo"})
	require.NoError(t, err)

	assert.Equal(t, "ORD1760000000000", order.ID)
	assert.Equal(t, "2025-10-09T08:53:20.000Z", order.Created)
	assert.Equal(t, "Asha", order.Name)
	assert.Equal(t, "asha@example.com", order.Email)
	assert.Equal(t, models.StatusPaid, order.Status)
	assert.Equal(t, 699, order.Amount)
	require.Len(t, order.Items, 1)

	orders, err := svc.Checkout.Orders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Order{order}, orders)

	_, err = svc.Repo.Space(ctx).Get(ctx, repositories.KeyCart)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = svc.Checkout.Summary(ctx)
	assert.ErrorIs(t, err, ErrNothingToPay)

	require.Len(t, rec.get(EventOrderPaid), 1)
	count, err := svc.Cart.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestPayWithoutSummaryRecordsZeroAmount(t *testing.T) {
	svc, _, ctx := setup(t)

	order, err := svc.Checkout.Pay(ctx, PaymentRequest{Name: "A", Email: "a@b.c", Method: "demo"})
	require.NoError(t, err)
	assert.Zero(t, order.Amount)
	assert.Empty(t, order.Items)
	assert.NotNil(t, order.Items)
}

func TestPayRejections(t *testing.T) {
	svc, rec, ctx := setup(t)

	_, err := svc.Checkout.Pay(ctx, PaymentRequest{Name: "  ", Email: "a@b.c", Method: "demo"})
	assert.ErrorIs(t, err, ErrMissingCustomer)

	_, err = svc.Checkout.Pay(ctx, PaymentRequest{Name: "A", Email: "", Method: "paypal"})
	assert.ErrorIs(t, err, ErrMissingCustomer, "customer is checked before the method")

	for _, method := range []string{"paypal", "", "DEMO"} {
		_, err = svc.Checkout.Pay(ctx, PaymentRequest{Name: "A", Email: "a@b.c", Method: method})
		assert.ErrorIs(t, err, ErrInvalidMethod, method)
	}

	for _, method := range []string{"stripe", "razorpay"} {
		_, err = svc.Checkout.Pay(ctx, PaymentRequest{Name: "A", Email: "a@b.c", Method: method})
		require.ErrorIs(t, err, ErrProviderUnavailable)
		assert.Contains(t, err.Error(), "cannot perform real payments")
	}

	orders, err := svc.Checkout.Orders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, rec.get(EventOrderPaid))
}

// ─── Theme ───────────────────────────────────────────────────────────────────

func TestThemeToggle(t *testing.T) {
	svc, rec, ctx := setup(t)

	theme, err := svc.Theme.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	theme, err = svc.Theme.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	theme, err = svc.Theme.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, theme)

	theme, err = svc.Theme.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeLight, theme)

	assert.Equal(t, []any{
		ThemeChanged{Visitor: "v1", Theme: "dark"},
		ThemeChanged{Visitor: "v1", Theme: "light"},
	}, rec.get(EventThemeChanged))
}
