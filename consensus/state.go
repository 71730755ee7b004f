package consensus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/libs/service"

	"subnetsync/blockchain"
	"subnetsync/config"
	"subnetsync/coordination"
	"subnetsync/cycle"
	"subnetsync/libs/retry"
	"subnetsync/metagraph"
	"subnetsync/state"
	"subnetsync/tasks"
	"subnetsync/types"
)

// Orchestrator 驱动一个validator按cycle phase推进的状态机
//
// 主循环默认每10s tick一次：tick先从Clock算出当前的(cycle, phase)，
// 再按mode策略决定进入前要不要同步，最后执行该phase的工作。
// 每个(cycle, phase)的工作只做一次，后续落在同一phase的tick是no-op。
//
// phase handler里的任何失败都在循环边界捕获：记日志、退避、继续，
// 一个坏的cycle不会让节点退出。只有启动期的资源获取失败是致命的。
type Orchestrator struct {
	service.BaseService

	config *config.CycleConfig

	validatorID string

	clock     *cycle.Clock
	store     coordination.Store
	gate      *coordination.Gate
	agg       *Aggregator
	results   *ResultsCache
	nodeState state.Store

	// 外部协作者
	tasks tasks.Layer
	chain blockchain.Client
	graph metagraph.Provider

	strategy syncStrategy
	metrics  *Metrics
	metric   *orchestratorMetric

	// cancellation of the tick routine; every suspension point
	// (tick sleep, quorum poll, backoff) selects on it
	ctx    context.Context
	cancel context.CancelFunc

	mtx sync.Mutex
	// last cycle whose MetagraphUpdate finished, mirrors the durable record
	lastCompleted int64
	// (cycle, phase) whose work already ran
	handledCycle int64
	handledPhase types.CyclePhase
	handledAny   bool
	// cycle for which store cleanup already ran
	cleanedCycle int64
	// miners selected during TaskAssignment of the current cycle
	selectedMiners []string
	// scores waiting for MetagraphUpdate, plus whether they are a
	// local-only fallback
	pendingScores   map[string]float64
	pendingDegraded bool
}

type OrchestratorOption func(*Orchestrator)

// WithMetrics attaches a go-kit instrument set (prometheus in production).
func WithMetrics(m *Metrics) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

func NewOrchestrator(
	cfg *config.CycleConfig,
	validatorID string,
	clock *cycle.Clock,
	store coordination.Store,
	nodeState state.Store,
	taskLayer tasks.Layer,
	chain blockchain.Client,
	graph metagraph.Provider,
	options ...OrchestratorOption,
) (*Orchestrator, error) {
	strategy, err := strategyForMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	gate := coordination.NewGate(store, retry.Policy{
		Interval: cfg.PollInterval,
		Timeout:  cfg.QuorumTimeout,
	})

	o := &Orchestrator{
		config:        cfg,
		validatorID:   validatorID,
		clock:         clock,
		store:         store,
		gate:          gate,
		agg:           NewAggregator(validatorID, store, gate, cfg.ExpectedValidators, cfg.QuorumThreshold()),
		results:       NewResultsCache(cfg.MaxCachedResults),
		nodeState:     nodeState,
		tasks:         taskLayer,
		chain:         chain,
		graph:         graph,
		strategy:      strategy,
		metrics:       NopMetrics(),
		metric:        newOrchestratorMetric(validatorID, string(cfg.Mode)),
		lastCompleted: -1,
		cleanedCycle:  -1,
	}
	o.BaseService = *service.NewBaseService(nil, "ORCHESTRATOR", o)

	for _, opt := range options {
		opt(o)
	}
	return o, nil
}

func (o *Orchestrator) SetLogger(l log.Logger) {
	o.Logger = l
	o.gate.SetLogger(l.With("module", "quorum"))
	o.agg.SetLogger(l.With("module", "aggregator"))
}

// MetricItem exposes the JSON metric snapshot for the metric registry.
func (o *Orchestrator) MetricItem() *orchestratorMetric {
	return o.metric
}

func (o *Orchestrator) OnStart() error {
	ns := o.nodeState.Load()
	o.mtx.Lock()
	o.lastCompleted = ns.LastCompletedCycle
	o.mtx.Unlock()
	o.metric.MarkCompletedCycle(ns.LastCompletedCycle)

	o.ctx, o.cancel = context.WithCancel(context.Background())
	go o.tickRoutine()

	o.Logger.Info("orchestrator started",
		"validator", o.validatorID,
		"mode", o.strategy.Mode(),
		"resume_from_cycle", ns.NextCycle())
	return nil
}

func (o *Orchestrator) OnStop() {
	o.cancel()
	o.metric.MarkIsWorking(false)
	o.Logger.Info("orchestrator stopped")
}

// LastCompletedCycle returns the newest cycle whose MetagraphUpdate
// finished.
func (o *Orchestrator) LastCompletedCycle() int64 {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.lastCompleted
}

// Results returns the cache of finalized per-cycle consensus results.
func (o *Orchestrator) Results() *ResultsCache {
	return o.results
}

// Position returns the current (cycle, phase) and the time remaining in
// the phase.
func (o *Orchestrator) Position() (int64, types.CyclePhase, time.Duration) {
	now := time.Now()
	phase, _, remaining := o.clock.PhaseAt(now)
	return o.clock.CycleAt(now), phase, remaining
}

func (o *Orchestrator) Mode() config.ConsensusMode {
	return o.strategy.Mode()
}

func (o *Orchestrator) ValidatorID() string {
	return o.validatorID
}

//-----------------------------------------------------------------------------
// main loop

// tickRoutine 用和quorum轮询同一个retry.Policy实现tick循环，
// 只有ctx取消能让它退出
func (o *Orchestrator) tickRoutine() {
	o.metric.MarkIsWorking(true)
	policy := retry.Policy{Interval: o.config.TickInterval}
	_, _ = policy.Do(o.ctx, func() (bool, error) {
		o.tick()
		return false, nil
	})
	o.Logger.Info("tick routine quit")
}

func (o *Orchestrator) tick() {
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("phase handler panicked", "panic", r)
			o.metrics.PhaseFailures.Add(1)
			o.backoff()
		}
	}()

	now := time.Now()
	if !o.clock.InSchedule(now) {
		// 时钟落在epoch anchor之前：记一次skew，这个tick什么都不做
		o.metrics.ClockSkewEvents.Add(1)
		o.metric.MarkClockSkew()
		o.Logger.Error("tick outside configured schedule, defaulting to idle TaskAssignment", "now", now)
		return
	}

	cycleNum := o.clock.CycleAt(now)
	phase, _, remaining := o.clock.PhaseAt(now)

	o.metrics.Cycle.Set(float64(cycleNum))
	o.metrics.Phase.Set(float64(phase))
	o.metric.MarkPosition(cycleNum, phase.String())

	if o.alreadyHandled(cycleNum, phase) {
		return
	}

	if cycleNum <= o.LastCompletedCycle() {
		// 重启恢复：该cycle已经完整跑过MetagraphUpdate，等下一个cycle
		o.Logger.Debug("cycle already completed, waiting", "cycle", cycleNum, "phase", phase)
		o.markHandled(cycleNum, phase)
		return
	}

	o.Logger.Debug("enter phase", "cycle", cycleNum, "phase", phase, "remaining", remaining)
	if err := o.enterPhase(cycleNum, phase); err != nil {
		o.Logger.Error("phase handler failed", "cycle", cycleNum, "phase", phase, "err", err)
		o.metrics.PhaseFailures.Add(1)
		o.backoff()
		return
	}
	o.markHandled(cycleNum, phase)
}

func (o *Orchestrator) enterPhase(cycleNum int64, phase types.CyclePhase) error {
	switch phase {
	case types.PhaseTaskAssignment:
		return o.enterTaskAssignment(cycleNum)
	case types.PhaseTaskExecution:
		return o.enterTaskExecution(cycleNum)
	case types.PhaseConsensusScoring:
		return o.enterConsensusScoring(cycleNum)
	case types.PhaseMetagraphUpdate:
		return o.enterMetagraphUpdate(cycleNum)
	}
	return nil
}

//-----------------------------------------------------------------------------
// phase handlers

// enterTaskAssignment 挑选miner并下发任务
// flexible模式下不同步进入，保证任务分发的响应性
func (o *Orchestrator) enterTaskAssignment(cycleNum int64) error {
	o.maybeCleanup(cycleNum)

	if o.strategy.SyncOn(types.PhaseTaskAssignment) {
		o.syncPhase(cycleNum, types.PhaseTaskAssignment)
	}

	miners, err := o.tasks.SelectMiners(cycleNum)
	if err != nil {
		return err
	}
	if len(miners) == 0 {
		o.Logger.Info("no miners selected this cycle", "cycle", cycleNum)
		o.setSelectedMiners(nil)
		return nil
	}

	if err := o.tasks.SendTasks(o.ctx, cycleNum, miners); err != nil {
		return err
	}
	o.setSelectedMiners(miners)

	o.Logger.Info("tasks sent", "cycle", cycleNum, "miners", len(miners))
	return nil
}

// enterTaskExecution miner在干活，validator只登记存在感(synchronized模式)
func (o *Orchestrator) enterTaskExecution(cycleNum int64) error {
	if o.strategy.SyncOn(types.PhaseTaskExecution) {
		o.syncPhase(cycleNum, types.PhaseTaskExecution)
	}
	o.Logger.Debug("waiting for miner results", "cycle", cycleNum, "miners", len(o.getSelectedMiners()))
	return nil
}

// enterConsensusScoring 本地打分，然后按mode决定是否聚合共识
func (o *Orchestrator) enterConsensusScoring(cycleNum int64) error {
	local, err := o.tasks.ScoreMinerResults()
	if err != nil {
		return err
	}

	agreed := local
	degraded := false
	if o.strategy.SyncOn(types.PhaseConsensusScoring) {
		agreed = o.agg.CoordinateConsensus(o.ctx, cycleNum, local)
		if len(agreed) == 0 {
			// 没有共识(quorum未达成或没有重叠的打分)：回退本地分数，
			// 本cycle不产出ConsensusResult
			degraded = true
			agreed = local
			o.metrics.DegradedCycles.Add(1)
			o.metric.MarkDegraded()
		}
	}

	o.setPendingScores(agreed, degraded)

	if !degraded {
		result := types.MakeConsensusResult(cycleNum, agreed, o.validatorID)
		o.results.Put(cycleNum, result)
		o.Logger.Info("consensus result cached", "cycle", cycleNum, "miners", len(agreed))
	}
	return nil
}

// enterMetagraphUpdate 同步(synchronized/flexible)后把分数提交上链，
// 提交失败走单边本地应用，最后持久化last_completed_cycle
func (o *Orchestrator) enterMetagraphUpdate(cycleNum int64) error {
	if o.strategy.SyncOn(types.PhaseMetagraphUpdate) {
		ready := o.syncPhase(cycleNum, types.PhaseMetagraphUpdate)
		if len(ready) < o.config.QuorumThreshold() {
			// 协调失败不阻塞：显式降级为单边应用本地结果
			o.Logger.Error("metagraph quorum not reached, applying unilaterally",
				"cycle", cycleNum, "ready", len(ready))
		}
	}

	scores, degraded := o.getPendingScores()
	if len(scores) == 0 {
		// 节点可能在cycle中途启动，没经过ConsensusScoring
		o.Logger.Info("no scores to submit", "cycle", cycleNum)
		o.completeCycle(cycleNum)
		return nil
	}

	scores = o.dropDeregisteredMiners(scores)
	o.submitScores(cycleNum, scores, degraded)
	o.completeCycle(cycleNum)
	return nil
}

//-----------------------------------------------------------------------------
// helpers

// syncPhase register+等quorum，返回当时的ready集合
// 等不齐不报错，caller按集合大小自行降级
func (o *Orchestrator) syncPhase(cycleNum int64, phase types.CyclePhase) []string {
	entry := types.NewPhaseEntry(o.validatorID, cycleNum, phase, nil)
	if err := o.store.Register(entry); err != nil {
		o.Logger.Error("register phase entry failed", "cycle", cycleNum, "phase", phase, "err", err)
	}

	ready := o.gate.WaitForQuorum(o.ctx, cycleNum, phase, o.config.ExpectedValidators, o.config.QuorumThreshold())
	o.metrics.QuorumSize.Set(float64(len(ready)))
	o.metric.MarkQuorumSize(len(ready))
	return ready
}

// dropDeregisteredMiners 过滤掉已经不在metagraph里的miner，
// metagraph查询失败时原样提交
func (o *Orchestrator) dropDeregisteredMiners(scores map[string]float64) map[string]float64 {
	if o.graph == nil {
		return scores
	}
	miners, err := o.graph.GetAllMiners()
	if err != nil {
		o.Logger.Error("metagraph query failed, submitting unfiltered scores", "err", err)
		return scores
	}
	if len(miners) == 0 {
		return scores
	}

	filtered := make(map[string]float64, len(scores))
	for minerID, score := range scores {
		if _, ok := miners[minerID]; ok {
			filtered[minerID] = score
		}
	}
	if dropped := len(scores) - len(filtered); dropped > 0 {
		o.Logger.Info("dropped scores of deregistered miners", "dropped", dropped)
	}
	return filtered
}

func (o *Orchestrator) submitScores(cycleNum int64, scores map[string]float64, degraded bool) {
	result := types.MakeConsensusResult(cycleNum, scores, o.validatorID)
	tx, err := json.Marshal(blockchain.MetagraphTx{
		Cycle:       cycleNum,
		Scores:      result.Scores,
		ValidatorID: o.validatorID,
	})
	if err != nil {
		o.Logger.Error("marshal metagraph tx failed", "cycle", cycleNum, "err", err)
		return
	}

	txID, err := o.chain.SubmitAndConfirm(o.ctx, tx)
	if err != nil {
		// 提交失败也不阻塞cycle推进：单边应用本地结果
		o.Logger.Error("metagraph submission failed, applying locally",
			"cycle", cycleNum, "degraded", degraded, "err", err)
		o.metrics.SubmissionFallbacks.Add(1)
		return
	}

	o.metrics.Submissions.Add(1)
	o.Logger.Info("metagraph updated", "cycle", cycleNum, "tx", txID, "degraded", degraded, "miners", len(scores))
}

// completeCycle 先落盘再推进内存计数
// 落盘失败只记日志：内存计数照常推进，重启后最多重复处理一个cycle
func (o *Orchestrator) completeCycle(cycleNum int64) {
	if err := o.nodeState.Save(cycleNum); err != nil {
		o.Logger.Error("persist node state failed, cycle may be reprocessed after restart",
			"cycle", cycleNum, "err", err)
	}

	o.mtx.Lock()
	o.lastCompleted = cycleNum
	o.pendingScores = nil
	o.pendingDegraded = false
	o.selectedMiners = nil
	o.mtx.Unlock()

	o.metric.MarkCompletedCycle(cycleNum)
	o.Logger.Info("cycle completed", "cycle", cycleNum)
}

// maybeCleanup 每个cycle最多清理一次过期的协调记录
func (o *Orchestrator) maybeCleanup(cycleNum int64) {
	o.mtx.Lock()
	due := cycleNum > o.cleanedCycle
	if due {
		o.cleanedCycle = cycleNum
	}
	o.mtx.Unlock()
	if !due {
		return
	}

	if err := o.store.Cleanup(cycleNum, o.config.RetainCycles); err != nil {
		o.Logger.Error("coordination cleanup failed", "cycle", cycleNum, "err", err)
	}
}

func (o *Orchestrator) backoff() {
	select {
	case <-o.ctx.Done():
	case <-time.After(o.config.FailureBackoff):
	}
}

func (o *Orchestrator) alreadyHandled(cycleNum int64, phase types.CyclePhase) bool {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.handledAny && o.handledCycle == cycleNum && o.handledPhase == phase
}

func (o *Orchestrator) markHandled(cycleNum int64, phase types.CyclePhase) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	o.handledAny = true
	o.handledCycle = cycleNum
	o.handledPhase = phase
}

func (o *Orchestrator) setSelectedMiners(miners []string) {
	o.mtx.Lock()
	o.selectedMiners = miners
	o.mtx.Unlock()
}

func (o *Orchestrator) getSelectedMiners() []string {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.selectedMiners
}

func (o *Orchestrator) setPendingScores(scores map[string]float64, degraded bool) {
	o.mtx.Lock()
	o.pendingScores = scores
	o.pendingDegraded = degraded
	o.mtx.Unlock()
}

func (o *Orchestrator) getPendingScores() (map[string]float64, bool) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.pendingScores, o.pendingDegraded
}
