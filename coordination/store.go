package coordination

import (
	"encoding/json"

	"subnetsync/types"
)

// Store 是validator之间唯一的通信通道：一个共享的(cycle, phase, validator)
// 键值空间。每个validator只写自己的key，因此不需要任何跨节点加锁或者CAS。
//
// 任何满足upsert/点查/按cycle清理语义的介质都可以作为后端
// (共享目录、嵌入式KV、小型RPC服务)
type Store interface {
	// Register 幂等upsert一条登记记录，重复写同一个key不报冲突，last write wins
	Register(entry types.PhaseEntry) error

	// QueryReady 返回在(cycle, phase)下有登记记录的validator id集合
	QueryReady(cycle int64, phase types.CyclePhase) ([]string, error)

	// ReadPayload 读取某个validator登记时附带的payload
	// 第二个返回值表示记录是否存在
	ReadPayload(cycle int64, phase types.CyclePhase, validatorID string) (json.RawMessage, bool, error)

	// Cleanup 删除cycle早于currentCycle-retainLastN的所有记录
	Cleanup(currentCycle int64, retainLastN int64) error

	Close() error
}
