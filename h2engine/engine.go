package h2engine

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"golang.org/x/net/http2"

	"github.com/joeycumines/gmf"
	"github.com/joeycumines/gmf/shard"
)

// Engine implements gmf.Engine using golang.org/x/net/http2's
// cleartext (h2c, "prior knowledge") server, one connection at a time
// via http2.Server.ServeConn, which exposes a per-connection serve
// entry point rather than owning its own listener, so it composes with
// this module's own Acceptor instead of competing with it.
type Engine struct {
	srv  *http2.Server
	opts *engineOptions
}

// New constructs an Engine ready to hand to gmf.WithEngine.
func New(opts ...Option) *Engine {
	cfg := resolveEngineOptions(opts)
	return &Engine{
		srv: &http2.Server{
			MaxReadFrameSize:             cfg.maxReadFrameSize,
			MaxConcurrentStreams:         cfg.maxConcurrentStreams,
			IdleTimeout:                  cfg.idleTimeout,
			PermitProhibitedCipherSuites: false,
		},
		opts: cfg,
	}
}

// ServeConn implements gmf.Engine. golang.org/x/net/http2 owns the
// goroutines that read frames off conn and invoke Handler per request,
// but every actual service dispatch is handed to exec so it runs
// tracked by, and drains with, the accepting Shard rather than on an
// http2-owned goroutine outside the shard's accounting.
func (e *Engine) ServeConn(ctx context.Context, conn net.Conn, svc gmf.ServiceRef, exec shard.Executor) error {
	handler := &grpcHandler{svc: svc, exec: exec}
	e.srv.ServeConn(conn, &http2.ServeConnOpts{
		Context: ctx,
		Handler: handler,
	})
	return nil
}

// grpcHandler adapts gmf.ServiceRef to http.Handler, doing the minimal
// gRPC wire framing (5-byte length-prefix in, 5-byte length-prefix out,
// grpc-status/grpc-message trailers) needed for a gRPC connection to
// actually work end to end, without decoding the message payload
// itself.
type grpcHandler struct {
	svc  gmf.ServiceRef
	exec shard.Executor
}

func (h *grpcHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/grpc")

	body, err := readGRPCMessage(r.Body)
	if err != nil {
		writeGRPCStatus(w, 13, fmt.Sprintf("failed to read request message: %v", err))
		return
	}

	req := &gmf.Request{
		Method: r.URL.Path,
		Header: r.Header,
		Body:   body,
	}

	// The call itself runs on the owning Shard's executor, not on this
	// http2-owned goroutine, so it is tracked by the Shard's wait group
	// and finishes draining before the Shard reports itself terminated.
	var resp *gmf.Response
	task, err := h.exec.Spawn(r.Context(), func(ctx context.Context) error {
		var callErr error
		resp, callErr = h.svc.Call(ctx, req)
		return callErr
	})
	if err != nil {
		writeGRPCStatus(w, 14, fmt.Sprintf("failed to schedule request on shard: %v", err))
		return
	}
	if err := task.Wait(); err != nil {
		writeGRPCStatus(w, 2, err.Error())
		return
	}

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(http.StatusOK)
	if err := writeGRPCMessage(w, resp.Body); err != nil {
		return
	}

	status := "0"
	message := ""
	if resp.Trailer != nil {
		if v := resp.Trailer.Get("Grpc-Status"); v != "" {
			status = v
		}
		message = resp.Trailer.Get("Grpc-Message")
	}
	w.Header().Set(http.TrailerPrefix+"Grpc-Status", status)
	w.Header().Set(http.TrailerPrefix+"Grpc-Message", message)
}

// writeGRPCStatus reports an RPC-level failure entirely via HTTP/2
// trailers, per the gRPC wire protocol: the HTTP status stays 200, and
// the caller distinguishes success from failure using grpc-status.
func writeGRPCStatus(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(http.StatusOK)
	w.Header().Set(http.TrailerPrefix+"Grpc-Status", fmt.Sprintf("%d", code))
	w.Header().Set(http.TrailerPrefix+"Grpc-Message", message)
}
