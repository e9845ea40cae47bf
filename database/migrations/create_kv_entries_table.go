package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/bloomthread/pkg/kv"
	"github.com/shashiranjanraj/bloomthread/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_kv_entries_table", &CreateKVEntriesTable{})
}

// CreateKVEntriesTable backs STORE_DRIVER=database.
type CreateKVEntriesTable struct{}

func (m *CreateKVEntriesTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&kv.Entry{})
}

func (m *CreateKVEntriesTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(kv.Entry{}.TableName())
}
