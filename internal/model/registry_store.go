package model

import (
	"context"
	"encoding/json"
	"fmt"

	"bluemercantile/internal/constant"
)

// casMaxRetries bounds the optimistic-concurrency retry loop. Conflicts only
// happen when two admin actions hit the same collection at once, so a handful
// of retries is plenty.
const casMaxRetries = 5

// RegistryStore exposes the three registry collections (pending registrations,
// approved users, email logs) as typed lists over the versioned kv store.
// Every mutation is a read-modify-write guarded by the key version, so
// concurrent approve/reject/ban operations cannot silently lose an update.
type RegistryStore struct {
	kv KvDao
}

func NewRegistryStore(kv KvDao) *RegistryStore {
	return &RegistryStore{kv: kv}
}

// Kv returns the underlying dao for callers that need raw keys
// (wallet address persistence, transaction ledger).
func (s *RegistryStore) Kv() KvDao {
	return s.kv
}

func (s *RegistryStore) loadList(ctx context.Context, key string, out interface{}) (int64, error) {
	raw, version, err := s.kv.Get(ctx, key)
	if err != nil {
		if err == ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return 0, fmt.Errorf("corrupt collection %s: %w", key, err)
	}
	return version, nil
}

func (s *RegistryStore) storeList(ctx context.Context, key string, list interface{}, version int64) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, key, string(raw), version)
}

func (s *RegistryStore) LoadPending(ctx context.Context) ([]Registration, error) {
	var list []Registration
	if _, err := s.loadList(ctx, constant.KeyPendingRegistrations, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MutatePending applies fn to the pending collection inside a CAS retry loop.
// fn must be side-effect free because it can run more than once.
func (s *RegistryStore) MutatePending(ctx context.Context, fn func([]Registration) ([]Registration, error)) error {
	for i := 0; i < casMaxRetries; i++ {
		var list []Registration
		version, err := s.loadList(ctx, constant.KeyPendingRegistrations, &list)
		if err != nil {
			return err
		}
		next, err := fn(list)
		if err != nil {
			return err
		}
		err = s.storeList(ctx, constant.KeyPendingRegistrations, next, version)
		if err == nil {
			return nil
		}
		if err != ErrVersionConflict {
			return err
		}
		// 版本冲突，重新读取后再试
	}
	return ErrVersionConflict
}

func (s *RegistryStore) LoadApproved(ctx context.Context) ([]ApprovedUser, error) {
	var list []ApprovedUser
	if _, err := s.loadList(ctx, constant.KeyApprovedUsers, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MutateApproved applies fn to the approved-users collection inside a CAS retry loop.
func (s *RegistryStore) MutateApproved(ctx context.Context, fn func([]ApprovedUser) ([]ApprovedUser, error)) error {
	for i := 0; i < casMaxRetries; i++ {
		var list []ApprovedUser
		version, err := s.loadList(ctx, constant.KeyApprovedUsers, &list)
		if err != nil {
			return err
		}
		next, err := fn(list)
		if err != nil {
			return err
		}
		err = s.storeList(ctx, constant.KeyApprovedUsers, next, version)
		if err == nil {
			return nil
		}
		if err != ErrVersionConflict {
			return err
		}
	}
	return ErrVersionConflict
}

func (s *RegistryStore) LoadEmailLogs(ctx context.Context) ([]EmailLogEntry, error) {
	var list []EmailLogEntry
	if _, err := s.loadList(ctx, constant.KeyEmailLogs, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AppendEmailLog records one outbound notification. The log is append-only.
func (s *RegistryStore) AppendEmailLog(ctx context.Context, entry EmailLogEntry) error {
	for i := 0; i < casMaxRetries; i++ {
		var list []EmailLogEntry
		version, err := s.loadList(ctx, constant.KeyEmailLogs, &list)
		if err != nil {
			return err
		}
		err = s.storeList(ctx, constant.KeyEmailLogs, append(list, entry), version)
		if err == nil {
			return nil
		}
		if err != ErrVersionConflict {
			return err
		}
	}
	return ErrVersionConflict
}
