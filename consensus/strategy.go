package consensus

import (
	"fmt"

	"subnetsync/config"
	"subnetsync/types"
)

// syncStrategy 在构造orchestrator时根据consensus mode选定一次，
// 决定每个phase进入前要不要register+等quorum，
// 取代在每个phase handler里重复写一遍mode分支
type syncStrategy interface {
	// SyncOn reports whether the phase must be entered synchronized.
	SyncOn(phase types.CyclePhase) bool

	Mode() config.ConsensusMode
}

// continuousStrategy: 永不等待，没有共识保证
type continuousStrategy struct{}

func (continuousStrategy) SyncOn(types.CyclePhase) bool { return false }
func (continuousStrategy) Mode() config.ConsensusMode   { return config.ModeContinuous }

// synchronizedStrategy: 每个phase都同步进入
type synchronizedStrategy struct{}

func (synchronizedStrategy) SyncOn(types.CyclePhase) bool { return true }
func (synchronizedStrategy) Mode() config.ConsensusMode   { return config.ModeSynchronized }

// flexibleStrategy: 任务下发独立进行保证响应性；
// 打分和链上更新必须同步，防止各节点对共享链上状态做发散的写入
type flexibleStrategy struct{}

func (flexibleStrategy) SyncOn(phase types.CyclePhase) bool {
	return phase == types.PhaseConsensusScoring || phase == types.PhaseMetagraphUpdate
}
func (flexibleStrategy) Mode() config.ConsensusMode { return config.ModeFlexible }

func strategyForMode(mode config.ConsensusMode) (syncStrategy, error) {
	switch mode {
	case config.ModeContinuous:
		return continuousStrategy{}, nil
	case config.ModeSynchronized:
		return synchronizedStrategy{}, nil
	case config.ModeFlexible:
		return flexibleStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown consensus mode %q", mode)
}
