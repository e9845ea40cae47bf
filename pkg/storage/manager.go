package storage

import (
	"fmt"
	"sync"

	"github.com/shashiranjanraj/bloomthread/config"
	"github.com/shashiranjanraj/bloomthread/pkg/logger"
)

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the configured disks. The local disk is always present;
// the s3 disk only when S3_BUCKET is set. An s3 failure disables that
// disk with a warning and does not fail the boot.
func Connect() error {
	local, err := NewLocal(config.StorageLocalRoot())
	if err != nil {
		return err
	}
	RegisterDisk("local", local)

	if config.StorageS3Bucket() != "" {
		d, err := NewS3(S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
		})
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			RegisterDisk("s3", d)
		}
	}

	managerMu.Lock()
	defaultDisk = config.StorageDefault()
	managerMu.Unlock()
	return nil
}

// Use returns the named disk ("local" or "s3").
func Use(name string) (Disk, error) {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK.
func Default() (Disk, error) {
	managerMu.RLock()
	name := defaultDisk
	managerMu.RUnlock()
	return Use(name)
}

// RegisterDisk plugs a Disk in under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}
