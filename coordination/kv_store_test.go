package coordination

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tm-db/memdb"

	"subnetsync/types"
)

func newMemStore() *KVStore {
	return NewKVStoreWithDB(memdb.NewDB(), log.TestingLogger())
}

func TestRegisterAndQueryReady(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	require.NoError(t, kv.Register(types.NewPhaseEntry("val-b", 7, types.PhaseConsensusScoring, nil)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 7, types.PhaseConsensusScoring, nil)))
	// 其他(cycle, phase)的记录不应该混进来
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-c", 7, types.PhaseMetagraphUpdate, nil)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-c", 8, types.PhaseConsensusScoring, nil)))

	ready, err := kv.QueryReady(7, types.PhaseConsensusScoring)
	require.NoError(t, err)
	assert.Equal(t, []string{"val-a", "val-b"}, ready)

	ready, err = kv.QueryReady(9, types.PhaseConsensusScoring)
	require.NoError(t, err)
	assert.Empty(t, ready)
}

// 重复Register同一个key是幂等的，内容不同也不报冲突，last write wins
func TestRegisterIdempotent(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	first, err := json.Marshal(types.ScoresPayload{Scores: map[string]float64{"m1": 0.5}})
	require.NoError(t, err)
	second, err := json.Marshal(types.ScoresPayload{Scores: map[string]float64{"m1": 0.9}})
	require.NoError(t, err)

	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 3, types.PhaseConsensusScoring, first)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 3, types.PhaseConsensusScoring, second)))

	ready, err := kv.QueryReady(3, types.PhaseConsensusScoring)
	require.NoError(t, err)
	assert.Equal(t, []string{"val-a"}, ready)

	payload, found, err := kv.ReadPayload(3, types.PhaseConsensusScoring, "val-a")
	require.NoError(t, err)
	require.True(t, found)

	var scores types.ScoresPayload
	require.NoError(t, json.Unmarshal(payload, &scores))
	assert.Equal(t, 0.9, scores.Scores["m1"])
}

func TestRegisterRejectsInvalidEntry(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	assert.ErrorIs(t, kv.Register(types.NewPhaseEntry("", 0, types.PhaseTaskAssignment, nil)), types.ErrEmptyValidatorID)
	assert.ErrorIs(t, kv.Register(types.NewPhaseEntry("val-a", -1, types.PhaseTaskAssignment, nil)), types.ErrNegativeCycle)
	assert.ErrorIs(t, kv.Register(types.PhaseEntry{ValidatorID: "val-a", Cycle: 0, Phase: types.CyclePhase(0xff)}), types.ErrInvalidPhase)
}

func TestReadPayloadAbsent(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	payload, found, err := kv.ReadPayload(1, types.PhaseConsensusScoring, "val-x")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, payload)
}

func TestCleanupRetainsRecentCycles(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	for cycle := int64(0); cycle < 10; cycle++ {
		require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", cycle, types.PhaseTaskAssignment, nil)))
	}

	// current=9, retain=3 -> cycle < 6 的记录全部清除
	require.NoError(t, kv.Cleanup(9, 3))

	for cycle := int64(0); cycle < 6; cycle++ {
		ready, err := kv.QueryReady(cycle, types.PhaseTaskAssignment)
		require.NoError(t, err)
		assert.Empty(t, ready, "cycle %d should be cleaned", cycle)
	}
	for cycle := int64(6); cycle < 10; cycle++ {
		ready, err := kv.QueryReady(cycle, types.PhaseTaskAssignment)
		require.NoError(t, err)
		assert.Equal(t, []string{"val-a"}, ready, "cycle %d should be retained", cycle)
	}
}

func TestCleanupNoopOnYoungStore(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()

	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 0, types.PhaseTaskAssignment, nil)))
	require.NoError(t, kv.Cleanup(2, 3))

	ready, err := kv.QueryReady(0, types.PhaseTaskAssignment)
	require.NoError(t, err)
	assert.Equal(t, []string{"val-a"}, ready)
}
