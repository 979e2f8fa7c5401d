package model

import "time"

// KvEntry corresponds to the kv_entries table. Value holds a JSON document;
// Version increments on every successful write and backs the optimistic check.
type KvEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	Version   int64     `gorm:"column:version"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName 指定表名
func (KvEntry) TableName() string {
	return "kv_entries"
}
