package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subnetsync/config"
	"subnetsync/types"
)

func TestStrategyForMode(t *testing.T) {
	for _, mode := range []config.ConsensusMode{config.ModeContinuous, config.ModeSynchronized, config.ModeFlexible} {
		strategy, err := strategyForMode(mode)
		require.NoError(t, err)
		assert.Equal(t, mode, strategy.Mode())
	}

	_, err := strategyForMode(config.ConsensusMode("bogus"))
	assert.Error(t, err)
}

func TestStrategySyncPhases(t *testing.T) {
	continuous, _ := strategyForMode(config.ModeContinuous)
	synchronized, _ := strategyForMode(config.ModeSynchronized)
	flexible, _ := strategyForMode(config.ModeFlexible)

	for _, phase := range types.CyclePhases() {
		assert.False(t, continuous.SyncOn(phase), "continuous never syncs, phase %v", phase)
		assert.True(t, synchronized.SyncOn(phase), "synchronized always syncs, phase %v", phase)
	}

	assert.False(t, flexible.SyncOn(types.PhaseTaskAssignment))
	assert.False(t, flexible.SyncOn(types.PhaseTaskExecution))
	assert.True(t, flexible.SyncOn(types.PhaseConsensusScoring))
	assert.True(t, flexible.SyncOn(types.PhaseMetagraphUpdate))
}
