package consensus

import (
	"sync"

	"subnetsync/types"
)

const DefaultMaxCachedResults = 10

// ResultsCache 按插入顺序缓存每个cycle的最终共识结果
//
// 淘汰按插入顺序(FIFO)，不按cycle数值：结果乱序到达时可能先淘汰数值更新
// 的cycle，这里保留该行为不做排序修正
type ResultsCache struct {
	mtx sync.RWMutex

	maxCycles int
	order     []int64
	results   map[int64]*types.ConsensusResult
}

func NewResultsCache(maxCycles int) *ResultsCache {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCachedResults
	}
	return &ResultsCache{
		maxCycles: maxCycles,
		results:   make(map[int64]*types.ConsensusResult),
	}
}

// Put inserts the cycle's result, evicting the oldest inserted entry when
// the cache is full. Re-putting an existing cycle replaces the value but
// keeps its original insertion position.
func (rc *ResultsCache) Put(cycle int64, result *types.ConsensusResult) {
	rc.mtx.Lock()
	defer rc.mtx.Unlock()

	if _, exists := rc.results[cycle]; exists {
		rc.results[cycle] = result
		return
	}

	rc.order = append(rc.order, cycle)
	rc.results[cycle] = result

	if len(rc.order) > rc.maxCycles {
		oldest := rc.order[0]
		rc.order = rc.order[1:]
		delete(rc.results, oldest)
	}
}

// Get returns the cached result for the cycle, if present.
func (rc *ResultsCache) Get(cycle int64) (*types.ConsensusResult, bool) {
	rc.mtx.RLock()
	defer rc.mtx.RUnlock()

	result, ok := rc.results[cycle]
	return result, ok
}

// Cycles 按插入顺序返回当前缓存的cycle
func (rc *ResultsCache) Cycles() []int64 {
	rc.mtx.RLock()
	defer rc.mtx.RUnlock()

	cycles := make([]int64, len(rc.order))
	copy(cycles, rc.order)
	return cycles
}

func (rc *ResultsCache) Len() int {
	rc.mtx.RLock()
	defer rc.mtx.RUnlock()
	return len(rc.order)
}
