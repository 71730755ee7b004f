package types

import (
	orderedmap "github.com/elliotchance/orderedmap/v2"

	"subnetsync/libs/utils"
)

// MinerConsensus 单个miner在一轮cycle里的共识结果
type MinerConsensus struct {
	AdjustedScore float64 `json:"adjusted_score"`
	Incentive     float64 `json:"incentive"`
}

// ConsensusResult is the finalized outcome of one cycle's ConsensusScoring
// phase. Immutable once created.
type ConsensusResult struct {
	Cycle       int64                     `json:"cycle"`
	Scores      map[string]MinerConsensus `json:"scores"`
	PublisherID string                    `json:"publisher_id"`
}

// MakeConsensusResult 根据每个miner的共识分数计算incentive并组装结果
// incentive是分数在该cycle全部分数之和里的占比，分数和为0时全部为0
func MakeConsensusResult(cycle int64, scores map[string]float64, publisherID string) *ConsensusResult {
	var total float64
	for _, s := range scores {
		total += s
	}

	res := &ConsensusResult{
		Cycle:       cycle,
		Scores:      make(map[string]MinerConsensus, len(scores)),
		PublisherID: publisherID,
	}
	for miner, s := range scores {
		incentive := 0.0
		if total > 0 {
			incentive = s / total
		}
		res.Scores[miner] = MinerConsensus{AdjustedScore: s, Incentive: incentive}
	}
	return res
}

//-----------------------------------------------------------------------------

// ScoreSample 一个validator给一个miner的打分
type ScoreSample struct {
	ValidatorID string  `json:"validator_id"`
	Score       float64 `json:"score"`
}

// ScoreBoard 按插入顺序记录miner -> 追加式的(validator, score)样本列表
// 保留原始样本是为了可审计：共识值能还原出是哪些validator贡献的
type ScoreBoard struct {
	board *orderedmap.OrderedMap[string, []ScoreSample]
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{
		board: orderedmap.NewOrderedMap[string, []ScoreSample](),
	}
}

// Add appends one sample to the miner's list, creating the list on first use.
func (sb *ScoreBoard) Add(minerID, validatorID string, score float64) {
	samples, _ := sb.board.Get(minerID)
	sb.board.Set(minerID, append(samples, ScoreSample{ValidatorID: validatorID, Score: score}))
}

// Samples returns the samples recorded for one miner, in insertion order.
func (sb *ScoreBoard) Samples(minerID string) []ScoreSample {
	samples, _ := sb.board.Get(minerID)
	return samples
}

// Miners returns every scored miner id in first-seen order.
func (sb *ScoreBoard) Miners() []string {
	return sb.board.Keys()
}

func (sb *ScoreBoard) Len() int {
	return sb.board.Len()
}

// Means 对每个miner的样本取无加权算术平均
func (sb *ScoreBoard) Means() map[string]float64 {
	means := make(map[string]float64, sb.board.Len())
	for el := sb.board.Front(); el != nil; el = el.Next() {
		scores := make([]float64, 0, len(el.Value))
		for _, sample := range el.Value {
			scores = append(scores, sample.Score)
		}
		means[el.Key] = utils.Avg(scores...)
	}
	return means
}
