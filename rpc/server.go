package rpc

import (
	"net"
	"net/http"

	"github.com/tendermint/tendermint/libs/log"
	rpcserver "github.com/tendermint/tendermint/rpc/jsonrpc/server"

	"subnetsync/config"
)

// StartRPCServer serves Routes over HTTP and /websocket on the configured
// listen address, returning the bound listener.
// caller负责在关机时Close listener
func StartRPCServer(cfg *config.RPCConfig, logger log.Logger) (net.Listener, error) {
	serverCfg := rpcserver.DefaultConfig()
	if cfg.MaxOpenConnections != 0 {
		serverCfg.MaxOpenConnections = cfg.MaxOpenConnections
	}

	listener, err := rpcserver.Listen(cfg.ListenAddress, serverCfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	rpcserver.RegisterRPCFuncs(mux, Routes, logger)

	wm := rpcserver.NewWebsocketManager(Routes)
	wm.SetLogger(logger.With("protocol", "websocket"))
	mux.HandleFunc("/websocket", wm.WebsocketHandler)

	go func() {
		if err := rpcserver.Serve(listener, mux, logger, serverCfg); err != nil {
			logger.Error("rpc server terminated", "err", err)
		}
	}()

	logger.Info("rpc server started", "addr", cfg.ListenAddress)
	return listener, nil
}
