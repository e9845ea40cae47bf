package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/bloomthread/pkg/database"
	"github.com/shashiranjanraj/bloomthread/pkg/storage"
)

func drivers(t *testing.T) map[string]Store {
	t.Helper()

	disk, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	db, err := database.Open("sqlite", "file:kvtest?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Entry{}))
	sqlStore, err := NewDatabase(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlStore.Close() })

	return map[string]Store{
		"memory":   NewMemory(),
		"disk":     NewDisk(disk),
		"database": Instrument("database", sqlStore),
	}
}

func TestStoreContract(t *testing.T) {
	for name, s := range drivers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Ping(ctx))

			_, err := s.Get(ctx, "visitor:a:bt_cart")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "visitor:a:bt_cart", []byte(`[]`)))
			require.NoError(t, s.Set(ctx, "visitor:a:bt_cart", []byte(`[{"id":"p1"}]`)))

			got, err := s.Get(ctx, "visitor:a:bt_cart")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"p1"}]`, string(got))

			require.NoError(t, s.Delete(ctx, "visitor:a:bt_cart"))
			require.NoError(t, s.Delete(ctx, "visitor:a:bt_cart"))
			_, err = s.Get(ctx, "visitor:a:bt_cart")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestScopedIsolatesVisitors(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	a := Scoped(base, "visitor:a")
	b := Scoped(base, "visitor:b")

	require.NoError(t, SetJSON(ctx, a, "bt_theme", "dark"))

	var theme string
	require.NoError(t, GetJSON(ctx, a, "bt_theme", &theme))
	assert.Equal(t, "dark", theme)

	assert.ErrorIs(t, GetJSON(ctx, b, "bt_theme", &theme), ErrNotFound)

	raw, err := base.Get(ctx, "visitor:a:bt_theme")
	require.NoError(t, err)
	assert.Equal(t, `"dark"`, string(raw))

	require.NoError(t, a.Close())
	assert.Equal(t, 1, base.Len())
}

func TestGetJSONReportsCorruptData(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	require.NoError(t, s.Set(ctx, "bt_products", []byte(`{not json`)))

	var out []string
	err := GetJSON(ctx, s, "bt_products", &out)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	in := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'x'

	got, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestDatabaseRequiresMigration(t *testing.T) {
	db, err := database.Open("sqlite", "file:kvnomigrate?mode=memory&cache=shared")
	require.NoError(t, err)

	_, err = NewDatabase(db)
	assert.ErrorContains(t, err, "kv_entries is missing")
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "etcd")
	assert.ErrorContains(t, err, `unknown STORE_DRIVER "etcd"`)
}
