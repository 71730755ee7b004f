package consensus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
	"github.com/tendermint/tm-db/memdb"

	"subnetsync/coordination"
	"subnetsync/libs/retry"
	"subnetsync/types"
)

func newTestAggregator(t *testing.T, validatorID string, db tmdb.DB, expected []string, threshold int) (*Aggregator, coordination.Store) {
	store := coordination.NewKVStoreWithDB(db, log.TestingLogger())
	gate := coordination.NewGate(store, retry.Policy{
		Interval: 10 * time.Millisecond,
		Timeout:  200 * time.Millisecond,
	})
	agg := NewAggregator(validatorID, store, gate, expected, threshold)
	agg.SetLogger(log.TestingLogger())
	return agg, store
}

func registerScores(t *testing.T, store coordination.Store, validatorID string, cycle int64, scores map[string]float64) {
	payload, err := json.Marshal(types.ScoresPayload{Scores: scores})
	require.NoError(t, err)
	require.NoError(t, store.Register(types.NewPhaseEntry(validatorID, cycle, types.PhaseConsensusScoring, payload)))
}

func TestAggregatorMeanOverReadySet(t *testing.T) {
	db := memdb.NewDB()
	expected := []string{"val-a", "val-b", "val-c"}
	agg, store := newTestAggregator(t, "val-a", db, expected, 2)

	// val-b已经登记，val-c缺席：ready集合是{val-a, val-b}
	registerScores(t, store, "val-b", 7, map[string]float64{"miner-1": 1.0, "miner-2": 0.5})

	consensus := agg.CoordinateConsensus(context.Background(), 7, map[string]float64{"miner-1": 0.8})

	require.Len(t, consensus, 2)
	assert.InDelta(t, 0.9, consensus["miner-1"], 1e-9) // (0.8+1.0)/2
	assert.InDelta(t, 0.5, consensus["miner-2"], 1e-9) // val-b单方打分
}

func TestAggregatorBelowThresholdDegrades(t *testing.T) {
	db := memdb.NewDB()
	expected := []string{"val-a", "val-b", "val-c"}
	agg, _ := newTestAggregator(t, "val-a", db, expected, 2)

	// 只有自己登记，quorum(2)凑不齐
	consensus := agg.CoordinateConsensus(context.Background(), 3, map[string]float64{"miner-1": 0.8})

	assert.Empty(t, consensus)
}

func TestAggregatorSkipsUndecodablePayload(t *testing.T) {
	db := memdb.NewDB()
	expected := []string{"val-a", "val-b"}
	agg, store := newTestAggregator(t, "val-a", db, expected, 2)

	// 合法JSON但形状不对：Register收下它，聚合时解码失败被跳过
	require.NoError(t, store.Register(types.NewPhaseEntry("val-b", 4, types.PhaseConsensusScoring,
		json.RawMessage(`{"scores":{"miner-1":"high"}}`))))

	consensus := agg.CoordinateConsensus(context.Background(), 4, map[string]float64{"miner-1": 0.6})

	// val-b计入quorum但payload被跳过，均值只剩本地样本
	require.Len(t, consensus, 1)
	assert.InDelta(t, 0.6, consensus["miner-1"], 1e-9)
}

func TestAggregatorThreeValidators(t *testing.T) {
	db := memdb.NewDB()
	expected := []string{"val-a", "val-b", "val-c"}
	agg, store := newTestAggregator(t, "val-a", db, expected, 2)

	registerScores(t, store, "val-b", 11, map[string]float64{"miner-1": 1.0})
	registerScores(t, store, "val-c", 11, map[string]float64{"miner-1": 0.6})

	consensus := agg.CoordinateConsensus(context.Background(), 11, map[string]float64{"miner-1": 0.8})

	require.Len(t, consensus, 1)
	assert.InDelta(t, 0.8, consensus["miner-1"], 1e-9) // (0.8+1.0+0.6)/3
}
