package kv

import (
	"context"
	"errors"
	"net/url"

	"github.com/shashiranjanraj/bloomthread/pkg/storage"
)

// Disk stores one object per key under kv/ on a storage disk.
type Disk struct {
	disk storage.Disk
}

func NewDisk(d storage.Disk) *Disk {
	return &Disk{disk: d}
}

func objectPath(key string) string {
	return "kv/" + url.PathEscape(key) + ".json"
}

func (d *Disk) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := d.disk.Get(ctx, objectPath(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return v, err
}

func (d *Disk) Set(ctx context.Context, key string, value []byte) error {
	return d.disk.Put(ctx, objectPath(key), value)
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	return d.disk.Delete(ctx, objectPath(key))
}

func (d *Disk) Ping(ctx context.Context) error {
	_, err := d.disk.Exists(ctx, "kv")
	return err
}

func (d *Disk) Close() error { return nil }
