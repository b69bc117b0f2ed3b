package transport

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T, cfg ServerConfig) *Server {
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv.Server(), hs)
	go srv.Start()
	t.Cleanup(srv.Stop)
	return srv
}

func TestServerAndClient(t *testing.T) {
	srv := startServer(t, ServerConfig{Address: "127.0.0.1:0"})
	assert.NotEqual(t, "127.0.0.1:0", srv.Address())

	client, err := NewClient(nil)
	require.NoError(t, err)
	conn, err := client.NewConnection(srv.Address())
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestInterceptorsSeeRemotePeer(t *testing.T) {
	type seen struct{ addr, name string }
	ch := make(chan seen, 1)
	intercept := func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		addr, name := RemotePeer(ctx)
		ch <- seen{addr, name}
		return handler(ctx, req)
	}
	srv := startServer(t, ServerConfig{
		Address:           "127.0.0.1:0",
		UnaryInterceptors: []grpc.UnaryServerInterceptor{intercept},
	})

	client, err := NewClient(nil)
	require.NoError(t, err)
	conn, err := client.NewConnection(srv.Address())
	require.NoError(t, err)
	defer conn.Close()

	ctx := WithClientName(context.Background(), "tester")
	_, err = healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	got := <-ch
	assert.Equal(t, "tester", got.name)
	assert.Contains(t, got.addr, "127.0.0.1:")
}

func TestNewServerErrors(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.EqualError(t, err, "missing address parameter")

	_, err = NewServer(ServerConfig{Address: "127.0.0.1:0", TLS: &TLSOptions{UseTLS: true}})
	assert.EqualError(t, err, "both Key and Certificate are required when using TLS")

	_, err = NewServer(ServerConfig{Address: "127.0.0.1:0", TLS: &TLSOptions{
		UseTLS: true, Certificate: []byte("junk"), Key: []byte("junk"),
	}})
	assert.Error(t, err)
}

func TestClientTLSOptions(t *testing.T) {
	_, err := NewClient(&TLSOptions{UseTLS: true, ServerRootCAs: [][]byte{[]byte("not a pem")}})
	assert.EqualError(t, err, "error adding server root certificate")

	_, err = NewClient(&TLSOptions{UseTLS: true, RequireClientCert: true})
	assert.EqualError(t, err, "both Key and Certificate are required when using mutual TLS")

	c, err := NewClient(&TLSOptions{UseTLS: false})
	require.NoError(t, err)
	assert.Nil(t, c.tlsConfig)
}

func TestDialTimeout(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)
	client.SetTimeout(200 * time.Millisecond)
	// nothing listens on port 1
	_, err = client.NewConnection("127.0.0.1:1")
	assert.Error(t, err)
}

func TestLoadTLSOptions(t *testing.T) {
	opts, err := LoadTLSOptions("", "", "")
	require.NoError(t, err)
	assert.False(t, opts.UseTLS)

	dir, err := ioutil.TempDir("", "tls")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	ca := filepath.Join(dir, "ca.pem")
	require.NoError(t, ioutil.WriteFile(ca, []byte("ca"), 0600))

	opts, err = LoadTLSOptions("", "", ca)
	require.NoError(t, err)
	assert.True(t, opts.UseTLS)
	assert.Equal(t, [][]byte{[]byte("ca")}, opts.ServerRootCAs)

	_, err = LoadTLSOptions(filepath.Join(dir, "missing.pem"), "", "")
	assert.Error(t, err)
}
