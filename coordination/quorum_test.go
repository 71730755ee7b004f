package coordination

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	"subnetsync/libs/retry"
	"subnetsync/types"
)

func newTestGate(kv *KVStore, timeout time.Duration) *Gate {
	gate := NewGate(kv, retry.Policy{Interval: 10 * time.Millisecond, Timeout: timeout})
	gate.SetLogger(log.TestingLogger())
	return gate
}

func TestWaitForQuorumImmediate(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()
	gate := newTestGate(kv, time.Second)

	expected := []string{"val-a", "val-b", "val-c"}
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 1, types.PhaseConsensusScoring, nil)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-b", 1, types.PhaseConsensusScoring, nil)))

	ready := gate.WaitForQuorum(context.Background(), 1, types.PhaseConsensusScoring, expected, 2)
	assert.Equal(t, []string{"val-a", "val-b"}, ready)
}

// 注册陆续到达时，凑够阈值立即返回，不等满员也不等超时
func TestWaitForQuorumStaggered(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()
	gate := newTestGate(kv, 5*time.Second)

	expected := []string{"val-a", "val-b", "val-c"}
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 2, types.PhaseConsensusScoring, nil)))

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = kv.Register(types.NewPhaseEntry("val-b", 2, types.PhaseConsensusScoring, nil))
	}()

	start := time.Now()
	ready := gate.WaitForQuorum(context.Background(), 2, types.PhaseConsensusScoring, expected, 2)
	assert.Equal(t, []string{"val-a", "val-b"}, ready)
	assert.Less(t, time.Since(start), time.Second, "should return as soon as the threshold is met")
}

// 超时不报错，返回当时的部分集合
func TestWaitForQuorumTimeout(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()
	gate := newTestGate(kv, 100*time.Millisecond)

	expected := []string{"val-a", "val-b", "val-c"}
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 3, types.PhaseConsensusScoring, nil)))

	start := time.Now()
	ready := gate.WaitForQuorum(context.Background(), 3, types.PhaseConsensusScoring, expected, 2)
	assert.Equal(t, []string{"val-a"}, ready)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second, "should not wait past the timeout")
}

// expected之外的登记不计入quorum
func TestWaitForQuorumIgnoresStrangers(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()
	gate := newTestGate(kv, 100*time.Millisecond)

	expected := []string{"val-a", "val-b"}
	require.NoError(t, kv.Register(types.NewPhaseEntry("val-a", 4, types.PhaseConsensusScoring, nil)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("intruder", 4, types.PhaseConsensusScoring, nil)))
	require.NoError(t, kv.Register(types.NewPhaseEntry("other", 4, types.PhaseConsensusScoring, nil)))

	ready := gate.WaitForQuorum(context.Background(), 4, types.PhaseConsensusScoring, expected, 2)
	assert.Equal(t, []string{"val-a"}, ready)
	for _, id := range ready {
		assert.Contains(t, expected, id)
	}
}

func TestWaitForQuorumCancel(t *testing.T) {
	kv := newMemStore()
	defer kv.Close()
	gate := newTestGate(kv, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	ready := gate.WaitForQuorum(ctx, 5, types.PhaseConsensusScoring, []string{"val-a"}, 1)
	assert.Empty(t, ready)
	assert.Less(t, time.Since(start), time.Second)
}
