package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = disk.Get(ctx, "kv/a.json")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, disk.Put(ctx, "kv/a.json", []byte(`{"k":"v"}`)))
	require.NoError(t, disk.Put(ctx, "kv/b.json", []byte(`{}`)))

	got, err := disk.Get(ctx, "kv/a.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(got))

	ok, err := disk.Exists(ctx, "kv/a.json")
	require.NoError(t, err)
	assert.True(t, ok)

	files, err := disk.Files(ctx, "kv")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"kv/a.json", "kv/b.json"}, files)

	require.NoError(t, disk.Delete(ctx, "kv/a.json"))
	require.NoError(t, disk.Delete(ctx, "kv/a.json"))
	ok, _ = disk.Exists(ctx, "kv/a.json")
	assert.False(t, ok)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk, err := NewLocal(root)
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "../../escape.json", []byte(`1`)))
	files, err := disk.Files(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"escape.json"}, files)
}

func TestUseUnknownDisk(t *testing.T) {
	_, err := Use("ftp")
	assert.ErrorContains(t, err, `disk "ftp" is not configured`)
}

func TestNewS3RequiresBucket(t *testing.T) {
	_, err := NewS3(S3Options{Region: "us-east-1"})
	assert.Error(t, err)
}
