package node

import (
	"context"
	"io/ioutil"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db/memorydb"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/common/utils"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"github.com/zhigui-projects/go-quizledger/quiz"
	"github.com/zhigui-projects/go-quizledger/rpc"
	"github.com/zhigui-projects/go-quizledger/transport"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const aliceAddr = "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf"

func writeKey(t *testing.T, dir string) (string, crypto.Address) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	path := filepath.Join(dir, "admin.key")
	require.NoError(t, ioutil.WriteFile(path, []byte(crypto.PrivateKeyHex(key)+"\n"), 0600))
	return path, crypto.PubkeyToAddress(key.PubKey())
}

func testConfig(t *testing.T) (*Config, crypto.Address) {
	dir, err := ioutil.TempDir("", "quizledger-node")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	keyFile, admin := writeKey(t, dir)
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Port = 0
	cfg.AdminKeyFile = keyFile
	cfg.FeeBasisPoints = 100
	cfg.Alloc = []string{aliceAddr + "=5ether"}
	return cfg, admin
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.AdminKeyFile = "admin.key"
		return c
	}
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"no key", func(c *Config) { c.AdminKeyFile = "" }, "admin key file is required"},
		{"no listen address", func(c *Config) { c.ListenAddress = "" }, "listen address is required"},
		{"bad port", func(c *Config) { c.Port = 70000 }, "invalid port 70000"},
		{"half tls", func(c *Config) { c.TLSCertFile = "cert.pem" }, "TLS requires both a certificate and a key file"},
		{"fee", func(c *Config) { c.FeeBasisPoints = 10001 }, "fee basis points 10001 exceed 10000"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "unknown log format [xml]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.EqualError(t, c.Validate(), tt.errMsg)
		})
	}

	c := valid()
	c.Operator = "0x1234"
	assert.Error(t, c.Validate())
	c = valid()
	c.Alloc = []string{"nonsense"}
	assert.Error(t, c.Validate())
}

func TestParseAlloc(t *testing.T) {
	allocs, err := ParseAlloc([]string{aliceAddr + "=2ether", aliceAddr + " = 1000"})
	require.NoError(t, err)
	require.Len(t, allocs, 2)
	assert.Equal(t, aliceAddr, allocs[0].Account.Hex())
	assert.Equal(t, 0, utils.MustParseEther("2").Cmp(allocs[0].Amount))
	assert.Equal(t, int64(1000), allocs[1].Amount.Int64())

	_, err = ParseAlloc([]string{aliceAddr + "=0"})
	assert.Error(t, err)
	_, err = ParseAlloc([]string{"0xzz=1"})
	assert.Error(t, err)
}

func TestBootstrapAndRestart(t *testing.T) {
	ctx := context.Background()
	cfg, admin := testConfig(t)
	alice, err := crypto.ParseAddress(aliceAddr)
	require.NoError(t, err)

	n, err := New(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, admin, n.Admin())

	owner, err := n.Funds().Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, owner)
	bps, err := n.Funds().FeeBasisPoints(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), bps)
	ok, err := n.Quiz().HasRole(ctx, access.OperatorRole, admin)
	require.NoError(t, err)
	assert.True(t, ok, "operator defaults to the admin")

	bal, err := n.Ledger().NativeBalance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, utils.MustParseEther("5").Cmp(bal))
	n.Stop()

	// a restart finds both services initialized and credits nothing again
	n, err = New(ctx, cfg)
	require.NoError(t, err)
	defer n.Stop()
	bal, err = n.Ledger().NativeBalance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, utils.MustParseEther("5").Cmp(bal))
}

func TestGenesisIsAtomic(t *testing.T) {
	ctx := context.Background()
	cfg, admin := testConfig(t)
	alice, err := crypto.ParseAddress(aliceAddr)
	require.NoError(t, err)

	database := memorydb.New()
	l, err := ledger.New(database)
	require.NoError(t, err)
	n := &Node{cfg: cfg, admin: admin, db: database, ledger: l,
		funds: funds.NewManager(l), quiz: quiz.NewVerifier(l)}

	// a failing allocation rolls back the initialization with it
	failing := []Allocation{{Account: alice, Amount: big.NewInt(1)}, {Account: alice, Amount: big.NewInt(0)}}
	_, err = l.Execute(ctx, admin, n.genesis(crypto.ZeroAddress, failing))
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindValidation), "got %v", err)

	bal, err := l.NativeBalance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign())
	owner, err := n.Funds().Owner(ctx)
	require.NoError(t, err)
	assert.True(t, owner.IsZero())

	require.NoError(t, n.bootstrap(ctx))
	bal, err = l.NativeBalance(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 0, utils.MustParseEther("5").Cmp(bal))
	owner, err = n.Funds().Owner(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, owner)
}

func TestStartServes(t *testing.T) {
	ctx := context.Background()
	cfg, admin := testConfig(t)
	cfg.DataDir = ""
	cfg.Log = log.Config{Level: "error"}

	n, err := New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, n.Start())
	defer n.Stop()

	c, err := rpc.Dial(n.Address(), nil, nil)
	require.NoError(t, err)
	defer c.Close()
	info, err := c.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, admin, info.FundsOwner)

	gc, err := transport.NewClient(nil)
	require.NoError(t, err)
	conn, err := gc.NewConnection(n.Address())
	require.NoError(t, err)
	defer conn.Close()
	hc, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hc.Status)
}

func TestNewRejectsBadKey(t *testing.T) {
	cfg, _ := testConfig(t)
	require.NoError(t, ioutil.WriteFile(cfg.AdminKeyFile, []byte("not a key"), 0600))
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
