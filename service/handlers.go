// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package service

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cjson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/wrappers"
)

const (
	RPCEndpoint     = "/rpc"
	MetricsEndpoint = "/metrics"
)

// CreateHandlers returns the HTTP handlers of [svc], keyed by path. The RPC
// handler serves both the stateful and the static service. Metrics gathered
// by [gatherer] are served as well, if it is not nil.
func CreateHandlers(svc *Service, gatherer prometheus.Gatherer) (map[string]http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")

	errs := wrappers.Errs{}
	errs.Add(
		server.RegisterService(svc, Name),
		server.RegisterService(CreateStaticService(), StaticName),
	)
	if errs.Errored() {
		return nil, errs.Err
	}

	handlers := map[string]http.Handler{
		RPCEndpoint: server,
	}
	if gatherer != nil {
		handlers[MetricsEndpoint] = promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	}
	return handlers, nil
}

// NewMux mounts [handlers] on a fresh ServeMux.
func NewMux(handlers map[string]http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	for path, handler := range handlers {
		mux.Handle(path, handler)
	}
	return mux
}
