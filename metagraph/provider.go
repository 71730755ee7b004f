package metagraph

// NodeInfo 是metagraph里一个参与者(miner或validator)的登记信息
// stake/trust在这里只是透传的元数据：共识聚合刻意不使用它们做加权
type NodeInfo struct {
	Stake              float64   `json:"stake"`
	Trust              float64   `json:"trust"`
	Endpoint           string    `json:"endpoint"`
	PerformanceHistory []float64 `json:"performance_history"`
	HistoryHash        string    `json:"history_hash"`
}

// Provider 是metagraph数据的外部协作者接口
type Provider interface {
	GetAllMiners() (map[string]NodeInfo, error)
	GetAllValidators() (map[string]NodeInfo, error)
}
