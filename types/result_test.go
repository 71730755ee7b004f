package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeConsensusResultIncentives(t *testing.T) {
	res := MakeConsensusResult(5, map[string]float64{
		"miner-1": 0.9,
		"miner-2": 0.6,
	}, "val-a")

	require.EqualValues(t, 5, res.Cycle)
	require.Equal(t, "val-a", res.PublisherID)
	assert.InDelta(t, 0.9, res.Scores["miner-1"].AdjustedScore, 1e-9)
	assert.InDelta(t, 0.6, res.Scores["miner-2"].AdjustedScore, 1e-9)
	assert.InDelta(t, 0.6, res.Scores["miner-1"].Incentive, 1e-9) // 0.9/1.5
	assert.InDelta(t, 0.4, res.Scores["miner-2"].Incentive, 1e-9) // 0.6/1.5
}

func TestMakeConsensusResultZeroTotal(t *testing.T) {
	res := MakeConsensusResult(1, map[string]float64{"miner-1": 0, "miner-2": 0}, "val-a")

	// 分数全为0时incentive归零，不做除零
	for miner, mc := range res.Scores {
		assert.Zero(t, mc.Incentive, "miner %s", miner)
	}
}

func TestScoreBoardInsertionOrderAndMeans(t *testing.T) {
	board := NewScoreBoard()
	board.Add("miner-b", "val-a", 0.8)
	board.Add("miner-a", "val-a", 0.5)
	board.Add("miner-b", "val-b", 1.0)
	board.Add("miner-b", "val-c", 0.6)

	assert.Equal(t, []string{"miner-b", "miner-a"}, board.Miners(), "first-seen order, not sorted")
	assert.Equal(t, 2, board.Len())

	samples := board.Samples("miner-b")
	require.Len(t, samples, 3)
	assert.Equal(t, "val-a", samples[0].ValidatorID)
	assert.Equal(t, "val-c", samples[2].ValidatorID)

	means := board.Means()
	assert.InDelta(t, 0.8, means["miner-b"], 1e-9) // (0.8+1.0+0.6)/3
	assert.InDelta(t, 0.5, means["miner-a"], 1e-9)
}
