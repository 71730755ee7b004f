/*
Package consensus drives one validator through the recurring cycle phases
and aggregates per-validator miner scores into one consensus score map.

状态机按墙上时钟推进：
  TaskAssignment -> TaskExecution -> ConsensusScoring -> MetagraphUpdate
MetagraphUpdate结束后进入下一个cycle的TaskAssignment。

(cycle, phase)由cycle.Clock从共享的epoch anchor推导，不靠任何节点间消息。
validator之间唯一的通道是coordination.Store：进入需要同步的phase前，
validator先Register自己的登记记录，再用coordination.Gate轮询等待
expected_validators的简单多数到齐。

等不齐quorum永远不是异常：Gate返回部分集合，orchestrator带着本地结果
降级推进。整体取舍是liveness优先于强一致，一个坏的cycle不会让节点退出。
*/
package consensus
