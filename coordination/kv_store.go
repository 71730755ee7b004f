package coordination

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
	leveldb "github.com/tendermint/tm-db/goleveldb"

	"subnetsync/types"
)

// key layout：e/{cycle:020d}/{phase}/{validator_id}
// cycle零填充保证key按cycle字典序排列，cleanup可以做range删除
const entryKeyPrefix = "e/"

// NewKVStore opens a goleveldb backed store under dir.
func NewKVStore(name, dir string, logger log.Logger) (*KVStore, error) {
	levelDB, err := leveldb.NewDB(name, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "open coordination db %q", dir)
	}
	return NewKVStoreWithDB(levelDB, logger), nil
}

// NewKVStoreWithDB wraps an existing tm-db database. Tests pass a MemDB,
// several validators of one test sharing the same instance.
func NewKVStoreWithDB(kvdb tmdb.DB, logger log.Logger) *KVStore {
	return &KVStore{kvDB: kvdb, logger: logger}
}

type KVStore struct {
	kvDB tmdb.DB

	logger log.Logger
}

var _ Store = (*KVStore)(nil)

func (kv *KVStore) Register(entry types.PhaseEntry) error {
	if err := entry.ValidateBasic(); err != nil {
		return err
	}

	value, err := tmjson.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal phase entry")
	}

	// 单key的SetSync是原子的：要么完整可见要么完全不可见，
	// 即使外层操作被取消也不会留下写了一半的记录
	key := entryKey(entry.Cycle, entry.Phase, entry.ValidatorID)
	if err := kv.kvDB.SetSync(key, value); err != nil {
		return errors.Wrap(err, "write phase entry")
	}
	return nil
}

func (kv *KVStore) QueryReady(cycle int64, phase types.CyclePhase) ([]string, error) {
	prefix := phasePrefix(cycle, phase)
	it, err := tmdb.IteratePrefix(kv.kvDB, prefix)
	if err != nil {
		return nil, errors.Wrap(err, "iterate phase entries")
	}
	defer it.Close()

	ready := []string{}
	for ; it.Valid(); it.Next() {
		// iterator按key字典序输出，ready集合天然有序
		ready = append(ready, string(it.Key()[len(prefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "iterate phase entries")
	}
	return ready, nil
}

func (kv *KVStore) ReadPayload(cycle int64, phase types.CyclePhase, validatorID string) (json.RawMessage, bool, error) {
	raw, err := kv.kvDB.Get(entryKey(cycle, phase, validatorID))
	if err != nil {
		return nil, false, errors.Wrap(err, "read phase entry")
	}
	if raw == nil {
		return nil, false, nil
	}

	var entry types.PhaseEntry
	if err := tmjson.Unmarshal(raw, &entry); err != nil {
		return nil, false, errors.Wrap(err, "unmarshal phase entry")
	}
	return entry.Payload, true, nil
}

func (kv *KVStore) Cleanup(currentCycle int64, retainLastN int64) error {
	cutoff := currentCycle - retainLastN
	if cutoff <= 0 {
		return nil
	}

	// [entryKeyPrefix, cyclePrefix(cutoff)) 覆盖所有cycle < cutoff的记录
	it, err := kv.kvDB.Iterator([]byte(entryKeyPrefix), cyclePrefix(cutoff))
	if err != nil {
		return errors.Wrap(err, "iterate stale entries")
	}
	defer it.Close()

	var batch tmdb.Batch
	defer func() {
		if batch != nil {
			batch.Close()
		}
	}()

	batch = kv.kvDB.NewBatch()
	deleted := 0
	for ; it.Valid(); it.Next() {
		key := make([]byte, len(it.Key()))
		copy(key, it.Key())
		if err := batch.Delete(key); err != nil {
			return errors.Wrap(err, "delete stale entry")
		}
		deleted++
	}
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "iterate stale entries")
	}

	if err := batch.WriteSync(); err != nil {
		return errors.Wrap(err, "flush cleanup batch")
	}
	if deleted > 0 {
		kv.logger.Debug("cleaned up stale coordination entries", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}

func (kv *KVStore) Close() error {
	return kv.kvDB.Close()
}

func entryKey(cycle int64, phase types.CyclePhase, validatorID string) []byte {
	return append(phasePrefix(cycle, phase), validatorID...)
}

func phasePrefix(cycle int64, phase types.CyclePhase) []byte {
	return []byte(fmt.Sprintf("%s%020d/%d/", entryKeyPrefix, cycle, phase))
}

func cyclePrefix(cycle int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", entryKeyPrefix, cycle))
}
