package wallet

import (
	"context"
	"encoding/json"

	"bluemercantile/internal/constant"
	"bluemercantile/internal/model"

	"github.com/zeromicro/go-zero/core/logx"
)

// Ledger is the bounded local append-log of transfer attempts. The full list
// is serialized to the kv store on every mutation and loaded verbatim on
// startup; there is no schema versioning.
type Ledger struct {
	kv model.KvDao

	// guarded by the manager's call pattern: all mutations come through the
	// session manager which serializes them, but Load can race a mutation on
	// startup, so persistence still goes through the kv version check.
	entries []model.LedgerEntry
	version int64
}

func NewLedger(kv model.KvDao) *Ledger {
	return &Ledger{kv: kv}
}

// Load restores the persisted list. A missing key is an empty ledger.
func (l *Ledger) Load(ctx context.Context) error {
	raw, version, err := l.kv.Get(ctx, constant.KeyTransactions)
	if err != nil {
		if err == model.ErrNotFound {
			l.entries = nil
			l.version = 0
			return nil
		}
		return err
	}
	var entries []model.LedgerEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return err
	}
	l.entries = entries
	l.version = version
	return nil
}

// Append prepends the entry and truncates to the most recent entries.
func (l *Ledger) Append(ctx context.Context, entry model.LedgerEntry) error {
	next := append([]model.LedgerEntry{entry}, l.entries...)
	if len(next) > constant.MaxLedgerEntries {
		next = next[:constant.MaxLedgerEntries]
	}
	return l.persist(ctx, next)
}

// UpdateStatus maps the resolved status onto the entry with the given hash.
// A hash not present in the ledger is a silent no-op.
func (l *Ledger) UpdateStatus(ctx context.Context, hash, status string) error {
	found := false
	next := make([]model.LedgerEntry, len(l.entries))
	copy(next, l.entries)
	for i := range next {
		if next[i].Hash == hash {
			next[i].Status = status
			found = true
			break
		}
	}
	if !found {
		logx.WithContext(ctx).Infof("ledger: 未找到 hash %s，忽略状态更新", hash)
		return nil
	}
	return l.persist(ctx, next)
}

// List returns a copy of the current entries, newest first.
func (l *Ledger) List() []model.LedgerEntry {
	out := make([]model.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) persist(ctx context.Context, next []model.LedgerEntry) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	if err := l.kv.Put(ctx, constant.KeyTransactions, string(raw), l.version); err != nil {
		if err != model.ErrVersionConflict {
			return err
		}
		// 有别的写入者抢先更新过，重新加载版本后覆盖本地列表
		if _, version, gerr := l.kv.Get(ctx, constant.KeyTransactions); gerr == nil {
			l.version = version
			if perr := l.kv.Put(ctx, constant.KeyTransactions, string(raw), l.version); perr != nil {
				return perr
			}
		} else {
			return err
		}
	}
	l.entries = next
	l.version++
	return nil
}
