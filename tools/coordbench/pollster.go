package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/tendermint/tendermint/libs/log"
	jsonrpc "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

const (
	sendTimeout = 10 * time.Second
	// see https://github.com/tendermint/tendermint/blob/master/rpc/jsonrpc/server
	pingPeriod = (30 * 9 / 10) * time.Second
)

// pollster 用N条websocket连接以固定速率请求某个RPC方法，
// 统计每个请求的往返延迟
type pollster struct {
	Target      string
	Method      string
	Rate        int // 每条连接每秒的请求数
	Connections int

	conns       []*websocket.Conn
	connsBroken []bool
	startingWg  sync.WaitGroup
	endingWg    sync.WaitGroup
	stopped     bool

	latency metrics.Histogram
	errs    metrics.Counter

	logger log.Logger
}

func newPollster(target, method string, connections, rate int) *pollster {
	return &pollster{
		Target:      target,
		Method:      method,
		Rate:        rate,
		Connections: connections,
		conns:       make([]*websocket.Conn, connections),
		connsBroken: make([]bool, connections),
		latency:     metrics.NewHistogram(metrics.NewUniformSample(1000)),
		errs:        metrics.NewCounter(),
		logger:      log.NewNopLogger(),
	}
}

// SetLogger lets you set your own logger
func (p *pollster) SetLogger(l log.Logger) {
	p.logger = l
}

// Start opens N = `p.Connections` connections to the target and creates a
// request loop for each connection.
func (p *pollster) Start() error {
	p.stopped = false

	for i := 0; i < p.Connections; i++ {
		c, _, err := connect(p.Target)
		if err != nil {
			return err
		}
		p.conns[i] = c
	}

	p.startingWg.Add(p.Connections)
	p.endingWg.Add(p.Connections)
	for i := 0; i < p.Connections; i++ {
		go p.requestLoop(i)
	}

	p.startingWg.Wait()
	return nil
}

// Stop closes the connections.
func (p *pollster) Stop() {
	p.stopped = true
	p.endingWg.Wait()
	for _, c := range p.conns {
		c.Close()
	}
}

// Report prints the latency distribution observed so far.
func (p *pollster) Report() {
	snapshot := p.latency.Snapshot()
	fmt.Printf("method=%s requests=%d errors=%d\n", p.Method, snapshot.Count(), p.errs.Count())
	if snapshot.Count() == 0 {
		return
	}
	fmt.Printf("latency ms: min=%.2f mean=%.2f p95=%.2f max=%.2f\n",
		float64(snapshot.Min())/1e6,
		snapshot.Mean()/1e6,
		snapshot.Percentile(0.95)/1e6,
		float64(snapshot.Max())/1e6,
	)
}

// requestLoop 同步地发请求、等响应，往返计入latency直方图
func (p *pollster) requestLoop(connIndex int) {
	started := false
	// Close the starting waitgroup, in the event that this fails to start
	defer func() {
		if !started {
			p.startingWg.Done()
		}
		p.endingWg.Done()
	}()
	c := p.conns[connIndex]

	c.SetPingHandler(func(message string) error {
		err := c.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(sendTimeout))
		if err == websocket.ErrCloseSent {
			return nil
		} else if e, ok := err.(net.Error); ok && e.Temporary() {
			return nil
		}
		return err
	})

	logger := p.logger.With("addr", c.RemoteAddr())

	interval := time.Second / time.Duration(p.Rate)
	reqTicker := time.NewTicker(interval)
	pingsTicker := time.NewTicker(pingPeriod)
	defer func() {
		pingsTicker.Stop()
		reqTicker.Stop()
	}()

	for {
		select {
		case <-reqTicker.C:
			if !started {
				p.startingWg.Done()
				started = true
			}

			start := time.Now()
			if err := p.roundTrip(c, connIndex); err != nil {
				p.errs.Inc(1)
				logger.Error(err.Error())
				p.connsBroken[connIndex] = true
				return
			}
			p.latency.Update(time.Since(start).Nanoseconds())

		case <-pingsTicker.C:
			// go-rpc server closes the connection in the absence of pings
			c.SetWriteDeadline(time.Now().Add(sendTimeout))
			if err := c.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				err = errors.Wrap(err,
					fmt.Sprintf("failed to write ping message on conn #%d", connIndex))
				logger.Error(err.Error())
				p.connsBroken[connIndex] = true
			}
		}

		if p.stopped {
			// To cleanly close a connection, a client should send a close
			// frame and wait for the server to close the connection.
			c.SetWriteDeadline(time.Now().Add(sendTimeout))
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				err = errors.Wrap(err,
					fmt.Sprintf("failed to write close message on conn #%d", connIndex))
				logger.Error(err.Error())
				p.connsBroken[connIndex] = true
			}

			return
		}
	}
}

func (p *pollster) roundTrip(c *websocket.Conn, connIndex int) error {
	c.SetWriteDeadline(time.Now().Add(sendTimeout))
	err := c.WriteJSON(jsonrpc.RPCRequest{
		JSONRPC: "2.0",
		ID:      jsonrpc.JSONRPCStringID("coordbench"),
		Method:  p.Method,
		Params:  json.RawMessage(`{}`),
	})
	if err != nil {
		return errors.Wrapf(err, "request send failed on connection #%d", connIndex)
	}

	c.SetReadDeadline(time.Now().Add(sendTimeout))
	var resp jsonrpc.RPCResponse
	if err := c.ReadJSON(&resp); err != nil {
		return errors.Wrapf(err, "response read failed on connection #%d", connIndex)
	}
	if resp.Error != nil {
		return errors.Errorf("rpc error on connection #%d: %v", connIndex, resp.Error)
	}
	return nil
}

func connect(host string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: host, Path: "/websocket"}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}
