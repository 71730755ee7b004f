package node

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"

	cfg "subnetsync/config"
	tasksmock "subnetsync/tasks/mock"
)

func TestNodeStartStop(t *testing.T) {
	config := cfg.ResetTestRoot("node_start_stop")
	defer os.RemoveAll(config.RootDir)
	// 随机端口，避免并发测试抢占
	config.RPC.ListenAddress = "tcp://127.0.0.1:0"
	config.Cycle.EpochAnchor = time.Now().Unix()

	node, err := NewNode(config, log.TestingLogger(), WithTaskLayer(&tasksmock.Layer{
		Miners: []string{"miner-1"},
		Scores: map[string]float64{"miner-1": 0.7},
	}))
	require.NoError(t, err)

	require.NoError(t, node.Start())
	assert.True(t, node.IsRunning())
	assert.True(t, node.MetricSet().HasMetrics("orchestrator"))

	// 等orchestrator完整跑完至少一个cycle
	deadline := time.Now().Add(10 * time.Second)
	for node.Orchestrator().LastCompletedCycle() < 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	assert.GreaterOrEqual(t, node.Orchestrator().LastCompletedCycle(), int64(0))

	require.NoError(t, node.Stop())
	node.Wait()
}

func TestNodeRejectsInvalidConfig(t *testing.T) {
	config := cfg.ResetTestRoot("node_invalid_config")
	defer os.RemoveAll(config.RootDir)
	config.ValidatorID = ""

	_, err := NewNode(config, log.TestingLogger())
	assert.Error(t, err)
}
