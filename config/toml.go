package config

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"text/template"

	tmos "github.com/tendermint/tendermint/libs/os"
	tmrand "github.com/tendermint/tendermint/libs/rand"
)

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't
// exist, and panics if it fails.
func EnsureRoot(rootDir string) {
	if err := tmos.EnsureDir(rootDir, DefaultDirPerm); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), DefaultDirPerm); err != nil {
		panic(err.Error())
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultDataDir), DefaultDirPerm); err != nil {
		panic(err.Error())
	}
}

// WriteConfigFile renders config using the template and writes it to
// configFilePath.
func WriteConfigFile(configFilePath string, config *Config) {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, config); err != nil {
		panic(err)
	}

	tmos.MustWriteFile(configFilePath, buffer.Bytes(), 0644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/myawesomeapp/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.subnetsync" by default, but could be changed via $SUBNETSYNCHOME env
# variable or --home cmd flag.

#######################################################
###         Main Base Config Options                ###
#######################################################

# A custom human readable name for this node
moniker = "{{ .BaseConfig.Moniker }}"

# Unique id this validator registers coordination entries under.
# Uniqueness across the subnet is a deployment responsibility.
validator_id = "{{ .BaseConfig.ValidatorID }}"

# Output level for logging, including package level options
log_level = "{{ .BaseConfig.LogLevel }}"

# Path to the JSON file holding the last completed cycle
node_state_file = "{{ js .BaseConfig.NodeState }}"

# Directory holding the coordination key-value store
coordination_dir = "{{ js .BaseConfig.Coordination }}"

#######################################################
###            Cycle Engine Configuration           ###
#######################################################
[cycle]

# Unix seconds of the shared epoch anchor.
# Every validator of the subnet must use the same value.
epoch_anchor = {{ .Cycle.EpochAnchor }}

# Per-phase durations. The four phases partition one cycle.
task_assignment = "{{ .Cycle.TaskAssignment }}"
task_execution = "{{ .Cycle.TaskExecution }}"
consensus_scoring = "{{ .Cycle.ConsensusScoring }}"
metagraph_update = "{{ .Cycle.MetagraphUpdate }}"

# One of: "continuous", "synchronized", "flexible"
mode = "{{ .Cycle.Mode }}"

# Validator ids participating in coordination. Quorum is a simple majority.
expected_validators = [{{ range $i, $v := .Cycle.ExpectedValidators }}{{ if $i }}, {{ end }}"{{ $v }}"{{ end }}]

# How long to wait for a quorum before continuing degraded.
quorum_timeout = "{{ .Cycle.QuorumTimeout }}"

# Interval between coordination store polls while waiting for quorum.
poll_interval = "{{ .Cycle.PollInterval }}"

# Interval between orchestrator ticks.
tick_interval = "{{ .Cycle.TickInterval }}"

# Pause after a failed phase handler before resuming the loop.
failure_backoff = "{{ .Cycle.FailureBackoff }}"

# Number of past cycles whose coordination entries are retained.
retain_cycles = {{ .Cycle.RetainCycles }}

# Upper bound of the consensus results cache.
max_cached_results = {{ .Cycle.MaxCachedResults }}

#######################################################
###       RPC Server Configuration Options          ###
#######################################################
[rpc]

# TCP or UNIX socket address for the RPC server to listen on
laddr = "{{ .RPC.ListenAddress }}"

# Maximum number of simultaneous connections
max_open_connections = {{ .RPC.MaxOpenConnections }}
`

/****** these are for test settings ***********/

// ResetTestRoot 在临时目录下生成一套可用的测试配置和目录结构
func ResetTestRoot(testName string) *Config {
	return ResetTestRootWithChainID(testName, "")
}

func ResetTestRootWithChainID(testName string, suffix string) *Config {
	// create a unique, concurrency-safe test directory under os.TempDir()
	rootDir, err := ioutil.TempDir("", fmt.Sprintf("%s-%s_", suffix, testName))
	if err != nil {
		panic(err)
	}
	EnsureRoot(rootDir)

	config := TestConfig().SetRoot(rootDir)
	config.ValidatorID = fmt.Sprintf("validator-%s", tmrand.Str(6))
	config.Cycle.ExpectedValidators = []string{config.ValidatorID}

	if !tmos.FileExists(config.ConfigFile()) {
		WriteConfigFile(config.ConfigFile(), config)
	}
	return config
}
