package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"subnetsync/types"
)

const (
	// DefaultDirPerm is the default permission for the root directory tree.
	DefaultDirPerm = 0700

	defaultConfigDir = "config"
	defaultDataDir   = "data"

	defaultConfigFileName    = "config.toml"
	defaultNodeStateFileName = "node_state.json"
	defaultCoordinationDir   = "coordination"
)

// ConsensusMode 决定validator在每个phase进入前是否和其他validator同步
type ConsensusMode string

const (
	// ModeContinuous: 任何phase都不等待其他validator，不提供共识保证
	ModeContinuous = ConsensusMode("continuous")
	// ModeSynchronized: 每个phase进入前都要register并等待quorum
	ModeSynchronized = ConsensusMode("synchronized")
	// ModeFlexible: 任务下发独立进行，但打分和链上更新必须同步
	ModeFlexible = ConsensusMode("flexible")
)

func (m ConsensusMode) Valid() bool {
	switch m {
	case ModeContinuous, ModeSynchronized, ModeFlexible:
		return true
	}
	return false
}

// Config defines the top-level configuration for a subnetsync node.
type Config struct {
	BaseConfig `mapstructure:",squash"`

	Cycle *CycleConfig `mapstructure:"cycle"`
	RPC   *RPCConfig   `mapstructure:"rpc"`
}

// DefaultConfig returns a default configuration for a subnetsync node.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig: DefaultBaseConfig(),
		Cycle:      DefaultCycleConfig(),
		RPC:        DefaultRPCConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing:
// 短周期，单validator可成quorum
func TestConfig() *Config {
	return &Config{
		BaseConfig: TestBaseConfig(),
		Cycle:      TestCycleConfig(),
		RPC:        DefaultRPCConfig(),
	}
}

// SetRoot sets the RootDir for all sub-config paths.
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Cycle.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [cycle] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration for a subnetsync node.
type BaseConfig struct {
	// The root directory for all data.
	RootDir string `mapstructure:"home"`

	// A custom human readable name for this node
	Moniker string `mapstructure:"moniker"`

	// ValidatorID 本节点在expected_validators里登记用的唯一标识
	// 唯一性由部署配置保证，本核心不做认证
	ValidatorID string `mapstructure:"validator_id"`

	// Output level for logging
	LogLevel string `mapstructure:"log_level"`

	// Path to the JSON file holding the last completed cycle
	NodeState string `mapstructure:"node_state_file"`

	// Directory holding the coordination key-value store
	Coordination string `mapstructure:"coordination_dir"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		Moniker:      defaultMoniker,
		LogLevel:     "main:info,state:info,*:error",
		NodeState:    filepath.Join(defaultDataDir, defaultNodeStateFileName),
		Coordination: filepath.Join(defaultDataDir, defaultCoordinationDir),
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.ValidatorID = "validator-test"
	return cfg
}

func (cfg BaseConfig) ValidateBasic() error {
	if cfg.ValidatorID == "" {
		return fmt.Errorf("validator_id must not be empty")
	}
	return nil
}

// NodeStateFile returns the full path to the node state file.
func (cfg BaseConfig) NodeStateFile() string {
	return rootify(cfg.NodeState, cfg.RootDir)
}

// CoordinationDir returns the full path to the coordination store directory.
func (cfg BaseConfig) CoordinationDir() string {
	return rootify(cfg.Coordination, cfg.RootDir)
}

// ConfigFile returns the full path to the config file.
func (cfg BaseConfig) ConfigFile() string {
	return rootify(filepath.Join(defaultConfigDir, defaultConfigFileName), cfg.RootDir)
}

//-----------------------------------------------------------------------------
// CycleConfig

// CycleConfig carries everything the phase clock and the orchestrator need:
// 所有validator共享同一个epoch anchor和phase时长，
// 这样不需要协商就能算出一致的(cycle, phase)
type CycleConfig struct {
	// Unix seconds of the shared epoch anchor. Every validator of the subnet
	// must be configured with the same value.
	EpochAnchor int64 `mapstructure:"epoch_anchor"`

	TaskAssignment   time.Duration `mapstructure:"task_assignment"`
	TaskExecution    time.Duration `mapstructure:"task_execution"`
	ConsensusScoring time.Duration `mapstructure:"consensus_scoring"`
	MetagraphUpdate  time.Duration `mapstructure:"metagraph_update"`

	Mode ConsensusMode `mapstructure:"mode"`

	// 参与协调的validator全集，quorum阈值取其简单多数
	ExpectedValidators []string `mapstructure:"expected_validators"`

	QuorumTimeout time.Duration `mapstructure:"quorum_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`

	TickInterval   time.Duration `mapstructure:"tick_interval"`
	FailureBackoff time.Duration `mapstructure:"failure_backoff"`

	// Number of past cycles whose coordination entries are retained.
	RetainCycles int64 `mapstructure:"retain_cycles"`

	// Upper bound of the consensus results cache.
	MaxCachedResults int `mapstructure:"max_cached_results"`
}

// DefaultCycleConfig returns a default configuration for the cycle engine.
func DefaultCycleConfig() *CycleConfig {
	return &CycleConfig{
		EpochAnchor:      1704067200, // 2024-01-01T00:00:00Z
		TaskAssignment:   120 * time.Second,
		TaskExecution:    120 * time.Second,
		ConsensusScoring: 30 * time.Second,
		MetagraphUpdate:  30 * time.Second,
		Mode:             ModeFlexible,
		QuorumTimeout:    20 * time.Second,
		PollInterval:     2 * time.Second,
		TickInterval:     10 * time.Second,
		FailureBackoff:   30 * time.Second,
		RetainCycles:     3,
		MaxCachedResults: 10,
	}
}

// TestCycleConfig returns a configuration with sub-second phases.
func TestCycleConfig() *CycleConfig {
	cfg := DefaultCycleConfig()
	cfg.TaskAssignment = 300 * time.Millisecond
	cfg.TaskExecution = 300 * time.Millisecond
	cfg.ConsensusScoring = 400 * time.Millisecond
	cfg.MetagraphUpdate = 200 * time.Millisecond
	cfg.ExpectedValidators = []string{"validator-test"}
	cfg.QuorumTimeout = time.Second
	cfg.PollInterval = 20 * time.Millisecond
	cfg.TickInterval = 50 * time.Millisecond
	cfg.FailureBackoff = 100 * time.Millisecond
	return cfg
}

// CycleDuration 返回一个完整cycle的时长，即四个phase时长之和
func (cfg *CycleConfig) CycleDuration() time.Duration {
	return cfg.TaskAssignment + cfg.TaskExecution + cfg.ConsensusScoring + cfg.MetagraphUpdate
}

// PhaseDuration returns the configured duration of one phase.
func (cfg *CycleConfig) PhaseDuration(phase types.CyclePhase) time.Duration {
	switch phase {
	case types.PhaseTaskAssignment:
		return cfg.TaskAssignment
	case types.PhaseTaskExecution:
		return cfg.TaskExecution
	case types.PhaseConsensusScoring:
		return cfg.ConsensusScoring
	case types.PhaseMetagraphUpdate:
		return cfg.MetagraphUpdate
	}
	return 0
}

// QuorumThreshold 返回quorum阈值：expected_validators的简单多数
func (cfg *CycleConfig) QuorumThreshold() int {
	return len(cfg.ExpectedValidators)/2 + 1
}

func (cfg *CycleConfig) ValidateBasic() error {
	if cfg.EpochAnchor < 0 {
		return fmt.Errorf("epoch_anchor must not be negative")
	}
	for _, phase := range types.CyclePhases() {
		if cfg.PhaseDuration(phase) <= 0 {
			return fmt.Errorf("%v duration must be positive", phase)
		}
	}
	if !cfg.Mode.Valid() {
		return fmt.Errorf("unknown consensus mode %q", cfg.Mode)
	}
	if len(cfg.ExpectedValidators) == 0 {
		return fmt.Errorf("expected_validators must not be empty")
	}
	if cfg.QuorumTimeout <= 0 {
		return fmt.Errorf("quorum_timeout must be positive")
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if cfg.RetainCycles < 0 {
		return fmt.Errorf("retain_cycles must not be negative")
	}
	return nil
}

//-----------------------------------------------------------------------------
// RPCConfig

// RPCConfig defines the configuration options for the RPC server.
type RPCConfig struct {
	// TCP or UNIX socket address for the RPC server to listen on
	ListenAddress string `mapstructure:"laddr"`

	// Maximum number of simultaneous connections
	MaxOpenConnections int `mapstructure:"max_open_connections"`
}

// DefaultRPCConfig returns a default configuration for the RPC server.
func DefaultRPCConfig() *RPCConfig {
	return &RPCConfig{
		ListenAddress:      "tcp://127.0.0.1:26657",
		MaxOpenConnections: 900,
	}
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

var defaultMoniker = func() string {
	moniker, err := os.Hostname()
	if err != nil {
		moniker = "anonymous"
	}
	return moniker
}()
