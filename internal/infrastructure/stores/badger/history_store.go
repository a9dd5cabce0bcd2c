package badger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"rating-predictor/configs"
	"rating-predictor/internal/domain/models"
	"rating-predictor/pkg/logger"
)

// keyPrefix 历史记录 key：history/<session>/<seq>，seq 定长补零保证字典序即插入序
const keyPrefix = "history/"

// HistoryStore 基于嵌入式 Badger 的历史存储
type HistoryStore struct {
	db         *badger.DB
	ttl        time.Duration
	maxRecords int
	logger     logger.Logger
}

// Open 按配置打开 Badger 数据库
func Open(cfg *configs.BadgerConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLoggingLevel(badger.ERROR)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// NewHistoryStore 基于已打开的数据库创建历史存储
func NewHistoryStore(db *badger.DB, ttl time.Duration, maxRecords int, log logger.Logger) *HistoryStore {
	return &HistoryStore{
		db:         db,
		ttl:        ttl,
		maxRecords: maxRecords,
		logger:     log,
	}
}

func sessionPrefix(sessionID string) []byte {
	return []byte(keyPrefix + sessionID + "/")
}

func recordKey(sessionID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", keyPrefix, sessionID, seq))
}

// Append 追加一条记录，序号取当前最大序号加一
func (s *HistoryStore) Append(ctx context.Context, sessionID string, record models.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	prefix := sessionPrefix(sessionID)
	return s.db.Update(func(txn *badger.Txn) error {
		count, last, err := scanKeys(txn, prefix)
		if err != nil {
			return err
		}
		if s.maxRecords > 0 && count >= s.maxRecords {
			return fmt.Errorf("session %s has %d records: %w", sessionID, count, models.ErrHistoryFull)
		}

		if err := s.refreshTTL(txn, prefix); err != nil {
			return err
		}
		entry := badger.NewEntry(recordKey(sessionID, last+1), data)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Touch 以当前时间重新计算会话全部记录的 TTL
func (s *HistoryStore) Touch(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ttl <= 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return s.refreshTTL(txn, sessionPrefix(sessionID))
	})
}

// refreshTTL 用新的 TTL 重写前缀下的全部记录，整份历史同时过期
func (s *HistoryStore) refreshTTL(txn *badger.Txn, prefix []byte) error {
	if s.ttl <= 0 {
		return nil
	}

	type kv struct{ key, value []byte }
	var entries []kv

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			it.Close()
			return fmt.Errorf("read history record %q: %w", item.Key(), err)
		}
		entries = append(entries, kv{key: item.KeyCopy(nil), value: value})
	}
	it.Close()

	for _, e := range entries {
		if err := txn.SetEntry(badger.NewEntry(e.key, e.value).WithTTL(s.ttl)); err != nil {
			return err
		}
	}
	return nil
}

// scanKeys 返回前缀下的 key 数量和最大序号
func scanKeys(txn *badger.Txn, prefix []byte) (int, uint64, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	var count int
	var last uint64
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().Key()
		seq, err := strconv.ParseUint(string(bytes.TrimPrefix(key, prefix)), 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("malformed history key %q: %w", key, err)
		}
		count++
		if seq > last {
			last = seq
		}
	}
	return count, last, nil
}

// List 按插入顺序返回全部记录
func (s *HistoryStore) List(ctx context.Context, sessionID string) ([]models.HistoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := sessionPrefix(sessionID)
	out := make([]models.HistoryRecord, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var r models.HistoryRecord
				if err := json.Unmarshal(val, &r); err != nil {
					return fmt.Errorf("decode history record %q: %w", item.Key(), err)
				}
				out = append(out, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Clear 删除会话的全部记录
func (s *HistoryStore) Clear(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := sessionPrefix(sessionID)
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := txn.Delete(it.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "清除历史记录失败", "session_id", sessionID, "error", err)
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Len 会话记录数
func (s *HistoryStore) Len(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		count, _, err = scanKeys(txn, sessionPrefix(sessionID))
		return err
	})
	return count, err
}

// Close 关闭数据库
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
