package model

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrNotFound = gorm.ErrRecordNotFound

// ErrVersionConflict is returned by Put when another writer got there first.
// Callers re-read and retry.
var ErrVersionConflict = errors.New("kv: version conflict")

// KvDao defines versioned get/put over the kv_entries table. Get returns the
// stored JSON document together with its version; Put succeeds only when the
// stored version still equals expectedVersion (0 means the key must not exist).
type KvDao interface {
	Get(ctx context.Context, key string) (string, int64, error)
	Put(ctx context.Context, key, value string, expectedVersion int64) error
	Delete(ctx context.Context, key string) error
}

type kvDao struct {
	db *gorm.DB
}

// NewKvDao creates a new instance of KvDao backed by gorm.
func NewKvDao(db *gorm.DB) KvDao {
	return &kvDao{
		db: db,
	}
}

func (d *kvDao) Get(ctx context.Context, key string) (string, int64, error) {
	var resp KvEntry
	err := d.db.WithContext(ctx).Where("key = ?", key).First(&resp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, ErrNotFound
		}
		return "", 0, err
	}
	return resp.Value, resp.Version, nil
}

func (d *kvDao) Put(ctx context.Context, key, value string, expectedVersion int64) error {
	if expectedVersion == 0 {
		err := d.db.WithContext(ctx).Create(&KvEntry{
			Key:     key,
			Value:   value,
			Version: 1,
		}).Error
		if err != nil {
			// 主键冲突说明有并发创建者抢先写入
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrVersionConflict
			}
			return err
		}
		return nil
	}

	res := d.db.WithContext(ctx).Model(&KvEntry{}).
		Where("key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]interface{}{
			"value":   value,
			"version": expectedVersion + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (d *kvDao) Delete(ctx context.Context, key string) error {
	return d.db.WithContext(ctx).Where("key = ?", key).Delete(&KvEntry{}).Error
}
