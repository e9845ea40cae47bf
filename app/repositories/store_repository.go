package repositories

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/shashiranjanraj/bloomthread/app/models"
	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
	"github.com/shashiranjanraj/bloomthread/pkg/session"
)

// Keys inside a visitor space.
const (
	KeyProducts = "bt_products"
	KeyCart     = "bt_cart"
	KeyCheckout = "bt_checkout"
	KeyOrders   = "bt_orders"
	KeyTheme    = "bt_theme"
	KeyFlash    = "bt_flash"
)

const lockStripes = 64

// StoreRepository gives typed access to the visitor space of the visitor
// in ctx. Reads that find unparsable data fall back to a default instead
// of failing; only store errors are returned.
type StoreRepository struct {
	store kv.Store
	locks [lockStripes]sync.Mutex
}

func NewStoreRepository(store kv.Store) *StoreRepository {
	return &StoreRepository{store: store}
}

// Space returns the visitor's namespace.
func (r *StoreRepository) Space(ctx context.Context) kv.Store {
	id := session.VisitorID(ctx)
	if id == "" {
		id = "anonymous"
	}
	return kv.Scoped(r.store, "visitor:"+id)
}

// Update runs fn while holding the visitor's lock, so a read-modify-write
// inside fn is not interleaved with another request of the same visitor
// in this process.
func (r *StoreRepository) Update(ctx context.Context, fn func() error) error {
	h := fnv.New32a()
	_, _ = h.Write([]byte(session.VisitorID(ctx)))
	mu := &r.locks[h.Sum32()%lockStripes]

	mu.Lock()
	defer mu.Unlock()
	return fn()
}

// Ping checks the underlying store.
func (r *StoreRepository) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

// Init seeds the catalogue and an empty cart when they are absent.
func (r *StoreRepository) Init(ctx context.Context) error {
	space := r.Space(ctx)
	if err := seed(ctx, space, KeyProducts, models.SampleProducts()); err != nil {
		return err
	}
	return seed(ctx, space, KeyCart, []models.CartLine{})
}

func seed(ctx context.Context, space kv.Store, key string, value any) error {
	_, err := space.Get(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("repository: read %s: %w", key, err)
	}
	if err := kv.SetJSON(ctx, space, key, value); err != nil {
		return fmt.Errorf("repository: seed %s: %w", key, err)
	}
	return nil
}

// read decodes key into dest and reports whether usable data was found.
// Corrupt data is logged and reported as absent.
func read(ctx context.Context, space kv.Store, key string, dest any) (bool, error) {
	err := kv.GetJSON(ctx, space, key, dest)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, kv.ErrNotFound):
		return false, nil
	case errors.Is(err, kv.ErrCorrupt):
		logger.WithCtx(ctx).Warn("repository: discarding unreadable value", "key", key, "error", err)
		return false, nil
	default:
		return false, fmt.Errorf("repository: read %s: %w", key, err)
	}
}

func write(ctx context.Context, space kv.Store, key string, value any) error {
	if err := kv.SetJSON(ctx, space, key, value); err != nil {
		return fmt.Errorf("repository: write %s: %w", key, err)
	}
	return nil
}

func remove(ctx context.Context, space kv.Store, key string) error {
	if err := space.Delete(ctx, key); err != nil {
		return fmt.Errorf("repository: delete %s: %w", key, err)
	}
	return nil
}

// ─── Catalogue ───────────────────────────────────────────────────────────────

// Products returns the visitor's catalogue. A missing, unparsable or
// empty catalogue is re-seeded with the sample products.
func (r *StoreRepository) Products(ctx context.Context) ([]models.Product, error) {
	space := r.Space(ctx)

	var products []models.Product
	ok, err := read(ctx, space, KeyProducts, &products)
	if err != nil {
		return nil, err
	}
	if ok && len(products) > 0 {
		return products, nil
	}

	products = models.SampleProducts()
	if err := write(ctx, space, KeyProducts, products); err != nil {
		return nil, err
	}
	return products, nil
}

// ─── Cart ────────────────────────────────────────────────────────────────────

func (r *StoreRepository) Cart(ctx context.Context) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	ok, err := read(ctx, r.Space(ctx), KeyCart, &lines)
	if err != nil {
		return nil, err
	}
	if !ok || lines == nil {
		return []models.CartLine{}, nil
	}
	return lines, nil
}

func (r *StoreRepository) SaveCart(ctx context.Context, lines []models.CartLine) error {
	if lines == nil {
		lines = []models.CartLine{}
	}
	return write(ctx, r.Space(ctx), KeyCart, lines)
}

func (r *StoreRepository) DeleteCart(ctx context.Context) error {
	return remove(ctx, r.Space(ctx), KeyCart)
}

// ─── Checkout ────────────────────────────────────────────────────────────────

// Checkout returns the stored summary, or nil when there is none.
func (r *StoreRepository) Checkout(ctx context.Context) (*models.CheckoutSummary, error) {
	var summary models.CheckoutSummary
	ok, err := read(ctx, r.Space(ctx), KeyCheckout, &summary)
	if err != nil || !ok {
		return nil, err
	}
	return &summary, nil
}

func (r *StoreRepository) SaveCheckout(ctx context.Context, summary models.CheckoutSummary) error {
	return write(ctx, r.Space(ctx), KeyCheckout, summary)
}

func (r *StoreRepository) DeleteCheckout(ctx context.Context) error {
	return remove(ctx, r.Space(ctx), KeyCheckout)
}

// ─── Orders ──────────────────────────────────────────────────────────────────

func (r *StoreRepository) Orders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	ok, err := read(ctx, r.Space(ctx), KeyOrders, &orders)
	if err != nil {
		return nil, err
	}
	if !ok || orders == nil {
		return []models.Order{}, nil
	}
	return orders, nil
}

// AppendOrder adds o to the end of the order list.
func (r *StoreRepository) AppendOrder(ctx context.Context, o models.Order) error {
	orders, err := r.Orders(ctx)
	if err != nil {
		return err
	}
	return write(ctx, r.Space(ctx), KeyOrders, append(orders, o))
}

// ─── Theme ───────────────────────────────────────────────────────────────────

func (r *StoreRepository) Theme(ctx context.Context) (string, error) {
	var theme string
	if _, err := read(ctx, r.Space(ctx), KeyTheme, &theme); err != nil {
		return "", err
	}
	return models.NormalizeTheme(theme), nil
}

func (r *StoreRepository) SaveTheme(ctx context.Context, theme string) error {
	return write(ctx, r.Space(ctx), KeyTheme, models.NormalizeTheme(theme))
}

// ─── Notices ─────────────────────────────────────────────────────────────────

// PushNotice queues n for the next page render. It takes the visitor
// lock itself and must not be called from inside Update.
func (r *StoreRepository) PushNotice(ctx context.Context, n models.Notice) error {
	return r.Update(ctx, func() error {
		space := r.Space(ctx)
		var pending []models.Notice
		if _, err := read(ctx, space, KeyFlash, &pending); err != nil {
			return err
		}
		return write(ctx, space, KeyFlash, append(pending, n))
	})
}

// PullNotices returns and clears the pending notices.
func (r *StoreRepository) PullNotices(ctx context.Context) ([]models.Notice, error) {
	var pending []models.Notice
	err := r.Update(ctx, func() error {
		space := r.Space(ctx)
		ok, err := read(ctx, space, KeyFlash, &pending)
		if err != nil || !ok {
			return err
		}
		return remove(ctx, space, KeyFlash)
	})
	return pending, err
}
