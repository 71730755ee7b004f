package node

import (
	"net"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	"subnetsync/blockchain"
	blockchainmock "subnetsync/blockchain/mock"
	cfg "subnetsync/config"
	"subnetsync/consensus"
	"subnetsync/coordination"
	"subnetsync/cycle"
	"subnetsync/libs/metric"
	"subnetsync/metagraph"
	metagraphmock "subnetsync/metagraph/mock"
	"subnetsync/rpc"
	"subnetsync/state"
	"subnetsync/tasks"
	tasksmock "subnetsync/tasks/mock"
)

type Provider func(*cfg.Config, log.Logger) (*Node, error)

// Node 把一个validator进程的所有组件组装起来：
// coordination store、orchestrator、node state和RPC server
type Node struct {
	service.BaseService

	// config
	config *cfg.Config

	// storage
	coordStore coordination.Store
	nodeState  state.Store

	// external backends, swappable via Option
	taskLayer     tasks.Layer
	chainClient   blockchain.Client
	graphProvider metagraph.Provider
	metrics       *consensus.Metrics

	// service
	orchestrator *consensus.Orchestrator
	metricSet    *metric.MetricSet

	rpcListener net.Listener
}

type Option func(*Node)

// WithTaskLayer overrides the task execution backend.
func WithTaskLayer(layer tasks.Layer) Option {
	return func(n *Node) { n.taskLayer = layer }
}

// WithBlockchainClient overrides the chain submission client.
func WithBlockchainClient(client blockchain.Client) Option {
	return func(n *Node) { n.chainClient = client }
}

// WithMetagraphProvider overrides the metagraph registry view.
func WithMetagraphProvider(provider metagraph.Provider) Option {
	return func(n *Node) { n.graphProvider = provider }
}

// WithConsensusMetrics overrides the orchestrator instrument set.
func WithConsensusMetrics(m *consensus.Metrics) Option {
	return func(n *Node) { n.metrics = m }
}

// DefaultNewNode returns a node with mock external backends and prometheus
// instrumentation wired in.
// 生产部署用NewNode加Option替换task层和链客户端
func DefaultNewNode(config *cfg.Config, logger log.Logger) (*Node, error) {
	return NewNode(config, logger,
		WithConsensusMetrics(consensus.PrometheusMetrics("subnetsync", "validator", config.ValidatorID)),
	)
}

func NewNode(config *cfg.Config, logger log.Logger, options ...Option) (*Node, error) {
	if err := config.ValidateBasic(); err != nil {
		return nil, err
	}

	node := &Node{
		config: config,
		// 默认的外部后端都是内存mock，让节点不接真实子网也能跑起来
		taskLayer:     &tasksmock.Layer{},
		chainClient:   &blockchainmock.Client{},
		graphProvider: &metagraphmock.Provider{},
		metrics:       consensus.NopMetrics(),
	}
	node.BaseService = *service.NewBaseService(logger, "Node", node)
	for _, option := range options {
		option(node)
	}

	// 协调存储打不开是致命错误，节点直接拒绝启动
	coordStore, err := coordination.NewKVStore("coordination", config.CoordinationDir(), logger.With("module", "coordination"))
	if err != nil {
		return nil, err
	}
	node.coordStore = coordStore
	node.nodeState = state.NewFileStore(config.NodeStateFile(), logger.With("module", "state"))

	orchestrator, err := consensus.NewOrchestrator(
		config.Cycle,
		config.ValidatorID,
		cycle.NewClock(config.Cycle),
		node.coordStore,
		node.nodeState,
		node.taskLayer,
		node.chainClient,
		node.graphProvider,
		consensus.WithMetrics(node.metrics),
	)
	if err != nil {
		node.coordStore.Close()
		return nil, err
	}
	orchestrator.SetLogger(logger.With("module", "consensus"))
	node.orchestrator = orchestrator

	node.metricSet = metric.NewMetricSet()
	if err := node.metricSet.SetMetrics("orchestrator", orchestrator.MetricItem()); err != nil {
		node.coordStore.Close()
		return nil, err
	}

	return node, nil
}

func (n *Node) OnStart() error {
	rpc.SetEnvironment(&rpc.Environment{
		Config:       n.config,
		Orchestrator: n.orchestrator,
		Store:        n.coordStore,
		MetricSet:    n.metricSet,
	})

	listener, err := rpc.StartRPCServer(n.config.RPC, n.Logger.With("module", "rpc"))
	if err != nil {
		return err
	}
	n.rpcListener = listener

	return n.orchestrator.Start()
}

func (n *Node) OnStop() {
	if err := n.orchestrator.Stop(); err != nil {
		n.Logger.Error("stopping orchestrator", "err", err)
	}

	if n.rpcListener != nil {
		if err := n.rpcListener.Close(); err != nil {
			n.Logger.Error("closing rpc listener", "err", err)
		}
	}

	if err := n.coordStore.Close(); err != nil {
		n.Logger.Error("closing coordination store", "err", err)
	}
}

// Orchestrator returns the cycle state machine driving this node.
func (n *Node) Orchestrator() *consensus.Orchestrator {
	return n.orchestrator
}

func (n *Node) MetricSet() *metric.MetricSet {
	return n.metricSet
}
