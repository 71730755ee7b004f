package metric

import (
	"errors"
	"sync"
)

var (
	ErrMetricLabelExist = errors.New("metric label already exist")
)

func NewMetricSet() *MetricSet {
	return &MetricSet{
		metrics: make(map[string]MetricItem),
	}
}

// MetricSet 按label维护各模块注册的MetricItem，通过rpc对外暴露
type MetricSet struct {
	mtx     sync.RWMutex
	metrics map[string]MetricItem
}

// SetMetrics - 根据label设置对应的Metrics，label已存在时返回error
func (ms *MetricSet) SetMetrics(label string, item MetricItem) error {
	if ms.HasMetrics(label) {
		return ErrMetricLabelExist
	}

	ms.mtx.Lock()
	ms.metrics[label] = item
	ms.mtx.Unlock()
	return nil
}

func (ms *MetricSet) HasMetrics(label string) bool {
	ms.mtx.RLock()
	_, existed := ms.metrics[label]
	ms.mtx.RUnlock()
	return existed
}

func (ms *MetricSet) GetMetrics(label string) MetricItem {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	item, existed := ms.metrics[label]
	if !existed {
		return nil
	}
	return item
}

// RemoveMetrics 注销label对应的MetricItem，不存在时为no-op
func (ms *MetricSet) RemoveMetrics(label string) {
	ms.mtx.Lock()
	delete(ms.metrics, label)
	ms.mtx.Unlock()
}

func (ms *MetricSet) GetAlllabels() []string {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	keys := make([]string, 0, len(ms.metrics))
	for k := range ms.metrics {
		keys = append(keys, k)
	}

	return keys
}

// Snapshot 一次性取出所有label -> JSON快照
func (ms *MetricSet) Snapshot() map[string]string {
	ms.mtx.RLock()
	defer ms.mtx.RUnlock()

	snap := make(map[string]string, len(ms.metrics))
	for label, item := range ms.metrics {
		snap[label] = item.JSONString()
	}
	return snap
}
