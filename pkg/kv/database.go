package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one row of kv_entries.
type Entry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;size:191"`
	Value     []byte    `gorm:"column:entry_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Entry) TableName() string { return "kv_entries" }

// Database stores values in the kv_entries table of any gorm dialect.
type Database struct {
	db *gorm.DB
}

// NewDatabase fails when kv_entries has not been migrated yet.
func NewDatabase(db *gorm.DB) (*Database, error) {
	if !db.Migrator().HasTable(&Entry{}) {
		return nil, errors.New("kv: table kv_entries is missing, run `bloomthread migrate`")
	}
	return &Database{db: db}, nil
}

func (d *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var e Entry
	err := d.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: select %s: %w", key, err)
	}
	return e.Value, nil
}

func (d *Database) Set(ctx context.Context, key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("kv: upsert %s: %w", key, err)
	}
	return nil
}

func (d *Database) Delete(ctx context.Context, key string) error {
	if err := d.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&Entry{}).Error; err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
