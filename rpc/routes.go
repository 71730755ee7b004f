package rpc

import rpc "github.com/tendermint/tendermint/rpc/jsonrpc/server"

var Routes = map[string]*rpc.RPCFunc{
	"status":           rpc.NewRPCFunc(Status, ""),
	"consensus_result": rpc.NewRPCFunc(ConsensusResult, "cycle"),
	"ready_set":        rpc.NewRPCFunc(ReadySet, "cycle,phase"),
	"metrics":          rpc.NewRPCFunc(JSONMetrics, "label"),
}
