package state

// NodeState 记录最近一次完整跑完MetagraphUpdate的cycle，
// 只用于重启恢复，不参与任何在途的quorum逻辑
type NodeState struct {
	LastCompletedCycle int64 `json:"last_completed_cycle"`
}

// InitialNodeState 表示从未完成过任何cycle，下一个cycle是0
func InitialNodeState() NodeState {
	return NodeState{LastCompletedCycle: -1}
}

// NextCycle returns the first cycle this node has not completed yet.
func (ns NodeState) NextCycle() int64 {
	return ns.LastCompletedCycle + 1
}
