package state

import (
	"io/ioutil"
	"os"

	tmjson "github.com/tendermint/tendermint/libs/json"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/tempfile"
)

// Store 持久化NodeState
type Store interface {
	Load() NodeState
	Save(cycle int64) error
}

//-------------------------------------------------------------------------------

// FileStore persists NodeState as a small JSON file, written atomically so a
// crash mid-write can never leave a torn record.
type FileStore struct {
	path string

	logger log.Logger
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string, logger log.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load 读取持久化的NodeState
// 文件缺失或者损坏都不是致命错误，返回初始状态(下一个cycle为0)
func (fs *FileStore) Load() NodeState {
	raw, err := ioutil.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.logger.Error("read node state failed, starting fresh", "path", fs.path, "err", err)
		}
		return InitialNodeState()
	}

	var ns NodeState
	if err := tmjson.Unmarshal(raw, &ns); err != nil {
		fs.logger.Error("node state file corrupted, starting fresh", "path", fs.path, "err", err)
		return InitialNodeState()
	}
	return ns
}

// Save 原子落盘{"last_completed_cycle": cycle}
// cycle为负时是no-op：负值只作为内存里的初始哨兵，不落盘
func (fs *FileStore) Save(cycle int64) error {
	if cycle < 0 {
		return nil
	}

	jsonBytes, err := tmjson.MarshalIndent(NodeState{LastCompletedCycle: cycle}, "", "  ")
	if err != nil {
		return err
	}
	return tempfile.WriteFileAtomic(fs.path, jsonBytes, 0600)
}

// Reset 无条件把文件重写为初始状态，绕过Save对负值的哨兵处理
func (fs *FileStore) Reset() error {
	jsonBytes, err := tmjson.MarshalIndent(InitialNodeState(), "", "  ")
	if err != nil {
		return err
	}
	return tempfile.WriteFileAtomic(fs.path, jsonBytes, 0600)
}
