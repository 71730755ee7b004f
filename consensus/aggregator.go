package consensus

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/tendermint/tendermint/libs/log"

	"subnetsync/coordination"
	"subnetsync/types"
)

// Aggregator combines the local score maps of all ready validators into one
// consensus score map for a cycle.
//
// 共识值是无加权算术平均。metagraph里有stake/trust元数据，但聚合刻意
// 不用它们加权；ScoreBoard保留每个validator的原始样本，以后要换加权
// 方案时不用改存储协议。
type Aggregator struct {
	validatorID string
	store       coordination.Store
	gate        *coordination.Gate

	expected  []string
	threshold int

	logger log.Logger
}

func NewAggregator(
	validatorID string,
	store coordination.Store,
	gate *coordination.Gate,
	expected []string,
	threshold int,
) *Aggregator {
	return &Aggregator{
		validatorID: validatorID,
		store:       store,
		gate:        gate,
		expected:    expected,
		threshold:   threshold,
		logger:      log.NewNopLogger(),
	}
}

func (agg *Aggregator) SetLogger(l log.Logger) {
	agg.logger = l
}

// CoordinateConsensus registers this validator's local scores for the
// cycle's ConsensusScoring phase, waits for a quorum, and returns the
// per-miner mean over every ready validator's scores.
//
// quorum没凑齐时返回空map(降级，本cycle没有共识)，由caller决定回退方案,
// 永远不返回error
func (agg *Aggregator) CoordinateConsensus(ctx context.Context, cycle int64, localScores map[string]float64) map[string]float64 {
	payload, err := json.Marshal(types.ScoresPayload{Scores: localScores})
	if err != nil {
		agg.logger.Error("marshal local scores failed", "cycle", cycle, "err", err)
		return map[string]float64{}
	}

	entry := types.NewPhaseEntry(agg.validatorID, cycle, types.PhaseConsensusScoring, payload)
	if err := agg.store.Register(entry); err != nil {
		// 自己的登记失败不放弃：其他validator可能还能凑齐quorum
		agg.logger.Error("register scores failed", "cycle", cycle, "err", err)
	}

	ready := agg.gate.WaitForQuorum(ctx, cycle, types.PhaseConsensusScoring, agg.expected, agg.threshold)
	if len(ready) < agg.threshold {
		agg.logger.Info("consensus degraded: quorum not reached",
			"cycle", cycle, "ready", len(ready), "threshold", agg.threshold)
		return map[string]float64{}
	}

	board := types.NewScoreBoard()
	for _, validatorID := range ready {
		raw, found, err := agg.store.ReadPayload(cycle, types.PhaseConsensusScoring, validatorID)
		if err != nil || !found {
			agg.logger.Error("skip validator payload", "cycle", cycle, "validator", validatorID, "found", found, "err", err)
			continue
		}

		var scores types.ScoresPayload
		if err := json.Unmarshal(raw, &scores); err != nil {
			agg.logger.Error("skip undecodable payload", "cycle", cycle, "validator", validatorID, "err", err)
			continue
		}

		// map遍历顺序随机，排序保证board的插入顺序可复现
		miners := make([]string, 0, len(scores.Scores))
		for miner := range scores.Scores {
			miners = append(miners, miner)
		}
		sort.Strings(miners)
		for _, miner := range miners {
			board.Add(miner, validatorID, scores.Scores[miner])
		}
	}

	consensus := board.Means()
	agg.logger.Info("consensus reached",
		"cycle", cycle, "ready", len(ready), "miners", len(consensus))
	return consensus
}
