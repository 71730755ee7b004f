package metric

// MetricItem - 一个独立的模块对应一个MetricItem
// 模块自己负责快照的并发安全
type MetricItem interface {
	JSONString() string
}

type mockMetricItem struct {
	name string
}

func (mock *mockMetricItem) JSONString() string {
	return mock.name
}
