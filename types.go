package gmf

import (
	"context"
	"net"
	"net/http"

	"github.com/joeycumines/gmf/shard"
)

// Request is one undecoded gRPC call arriving over HTTP/2. Body is
// exactly one gRPC message frame with its 5-byte length-prefix already
// stripped; decoding it into a protobuf message (or anything else) is
// the caller's concern, not this module's.
type Request struct {
	// Method is the fully-qualified gRPC method, e.g.
	// "/helloworld.Greeter/SayHello".
	Method string
	Header http.Header
	Body   []byte
}

// Response is what a ServiceRef returns for one Request.
type Response struct {
	Header  http.Header
	Body    []byte
	Trailer http.Header // grpc-status / grpc-message belong here
}

// ServiceRef is the one downward interface this module depends on: a
// single call-and-response unit of work, method-routed by whatever
// Engine is driving the connection. A ServiceRef value is shared, never
// copied, across every concurrent call on every shard - if it holds
// mutable state, that state must be safe for concurrent use.
type ServiceRef interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// ServiceFunc adapts a plain function to a ServiceRef, mirroring
// net/http.HandlerFunc.
type ServiceFunc func(ctx context.Context, req *Request) (*Response, error)

// Call implements ServiceRef.
func (f ServiceFunc) Call(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Engine is the external, out-of-scope collaborator this module hands
// admitted, preface-complete connections to: an HTTP/2 server that
// knows how to frame gRPC and route by Request.Method, using exec for
// any auxiliary work it needs to fan out (per-stream goroutines, etc.)
// so that work stays accounted for on the right shard.
type Engine interface {
	ServeConn(ctx context.Context, conn net.Conn, svc ServiceRef, exec shard.Executor) error
}
