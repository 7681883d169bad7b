package gmf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceFunc_Call(t *testing.T) {
	var gotReq *Request
	f := ServiceFunc(func(ctx context.Context, req *Request) (*Response, error) {
		gotReq = req
		return &Response{Body: []byte("ok")}, nil
	})

	var svc ServiceRef = f
	resp, err := svc.Call(context.Background(), &Request{Method: "/x"})
	require.NoError(t, err)
	require.Equal(t, "ok", string(resp.Body))
	require.Equal(t, "/x", gotReq.Method)
}
