package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/tendermint/tendermint/libs/log"
)

// coordbench 压测validator的RPC面：以固定速率轮询status等方法，
// 输出请求延迟分布，用来观察quorum等待对RPC响应性的影响
func main() {
	var (
		target      = flag.String("target", "127.0.0.1:26657", "validator RPC host:port")
		method      = flag.String("method", "status", "RPC method to poll")
		connections = flag.Int("c", 1, "websocket connections")
		rate        = flag.Int("r", 10, "requests per second per connection")
		duration    = flag.Duration("T", 10*time.Second, "bench duration")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logger := log.NewNopLogger()
	if *verbose {
		logger = log.NewTMLogger(log.NewSyncWriter(os.Stdout))
	}

	p := newPollster(*target, *method, *connections, *rate)
	p.SetLogger(logger)

	if err := p.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	time.Sleep(*duration)

	p.Stop()
	p.Report()
}
