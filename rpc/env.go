package rpc

import (
	"subnetsync/config"
	"subnetsync/consensus"
	"subnetsync/coordination"
	"subnetsync/libs/metric"
)

var env *Environment

func SetEnvironment(e *Environment) {
	env = e
}

type Environment struct {
	Config       *config.Config
	Orchestrator *consensus.Orchestrator
	Store        coordination.Store

	MetricSet *metric.MetricSet
}
