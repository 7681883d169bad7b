package gmf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveServerOptions_defaults(t *testing.T) {
	cfg, err := resolveServerOptions(nil)
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.maxConnections)
	require.Equal(t, 0, cfg.shards)
	require.False(t, cfg.reusePort)
	require.Equal(t, time.Duration(0), cfg.prefaceSniffTimeout)
}

func TestResolveServerOptions_appliesOverrides(t *testing.T) {
	cfg, err := resolveServerOptions([]Option{
		WithShards(4),
		WithMaxConnections(10),
		WithReusePort(true),
		WithPrefaceSniffTimeout(2 * time.Second),
	})
	require.NoError(t, err)
	require.Equal(t, 4, cfg.shards)
	require.Equal(t, 10, cfg.maxConnections)
	require.True(t, cfg.reusePort)
	require.Equal(t, 2*time.Second, cfg.prefaceSniffTimeout)
}

func TestResolveServerOptions_nilOptionIgnored(t *testing.T) {
	cfg, err := resolveServerOptions([]Option{nil, WithShards(2), nil})
	require.NoError(t, err)
	require.Equal(t, 2, cfg.shards)
}
