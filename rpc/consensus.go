package rpc

import (
	"fmt"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"

	"subnetsync/types"
)

type ResultConsensus struct {
	Cycle       int64                           `json:"cycle"`
	PublisherID string                          `json:"publisher_id"`
	Scores      map[string]types.MinerConsensus `json:"scores"`
}

// ConsensusResult 返回指定cycle的共识结果；cycle<0时返回最近缓存的一个
func ConsensusResult(ctx *rpctypes.Context, cycle int64) (*ResultConsensus, error) {
	cache := env.Orchestrator.Results()

	if cycle < 0 {
		cached := cache.Cycles()
		if len(cached) == 0 {
			return nil, fmt.Errorf("no consensus result cached yet")
		}
		cycle = cached[len(cached)-1]
	}

	result, ok := cache.Get(cycle)
	if !ok {
		return nil, fmt.Errorf("no consensus result for cycle %d", cycle)
	}

	return &ResultConsensus{
		Cycle:       result.Cycle,
		PublisherID: result.PublisherID,
		Scores:      result.Scores,
	}, nil
}

type ResultReadySet struct {
	Cycle     int64    `json:"cycle"`
	Phase     string   `json:"phase"`
	Ready     []string `json:"ready"`
	Threshold int      `json:"threshold"`
}

// ReadySet 查询某个(cycle, phase)当前已登记的validator集合
func ReadySet(ctx *rpctypes.Context, cycle int64, phase string) (*ResultReadySet, error) {
	p, ok := types.ParsePhase(phase)
	if !ok {
		return nil, fmt.Errorf("unknown phase %q", phase)
	}

	ready, err := env.Store.QueryReady(cycle, p)
	if err != nil {
		return nil, err
	}

	return &ResultReadySet{
		Cycle:     cycle,
		Phase:     phase,
		Ready:     ready,
		Threshold: env.Config.Cycle.QuorumThreshold(),
	}, nil
}
