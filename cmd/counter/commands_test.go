package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/counter"
)

var createdPattern = regexp.MustCompile(`created counter (\w+) with value (\d+)`)

type testEnv struct {
	ctx context.Context
	cli *cli
	out *bytes.Buffer
}

func setup(t *testing.T) *testEnv {
	ctx := context.Background()
	out := &bytes.Buffer{}

	config := defaultCLIConfig
	config.Backend = backendLocal
	config.Store = storeMemory

	c, cleanup, err := newCLI(ctx, &config, out)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return &testEnv{
		ctx: ctx,
		cli: c,
		out: out,
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	e.out.Reset()
	err := e.cli.run(e.ctx, args)
	return e.out.String(), err
}

func (e *testEnv) create(t *testing.T, args ...string) string {
	out, err := e.run(t, append([]string{"create"}, args...)...)
	require.NoError(t, err)

	matches := createdPattern.FindStringSubmatch(out)
	require.Len(t, matches, 3, out)
	return matches[1]
}

func TestCLI_CounterLifecycle(t *testing.T) {
	env := setup(t)

	address := env.create(t, "10")

	out, err := env.run(t, "get", address)
	require.NoError(t, err)
	assert.Contains(t, out, "counter "+address+": 10")

	out, err = env.run(t, "increment", address, "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Program log: Account incremented with 5")
	assert.Contains(t, out, "counter "+address+": 15")

	out, err = env.run(t, "decrement", address, "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Program log: Account decremented with 20")
	assert.Contains(t, out, "counter "+address+": 4294967291")

	out, err = env.run(t, "initialize", address, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "counter "+address+": 3")
}

func TestCLI_List(t *testing.T) {
	env := setup(t)

	first := env.create(t)
	second := env.create(t, "7")

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, first+": 0")
	assert.Contains(t, out, second+": 7")
}

func TestCLI_ListOverRPC(t *testing.T) {
	keys := make([]ed25519.PublicKey, 2)
	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = pub
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "getProgramAccounts", req.Method)

		var result []map[string]interface{}
		for i, key := range keys {
			data := (&counter.CounterAccount{Value: uint32(10 * (i + 1))}).Marshal()
			result = append(result, map[string]interface{}{
				"pubkey": base58.Encode(key),
				"account": map[string]interface{}{
					"lamports":   uint64(1_000_000),
					"owner":      base58.Encode(counter.PROGRAM_ID),
					"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
					"executable": false,
				},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}))
	}))
	defer server.Close()

	out := &bytes.Buffer{}
	c := &cli{
		log:     logrus.StandardLogger().WithField("type", "counter/cli"),
		backend: newRPCBackend(solana.New(server.URL), solana.CommitmentConfirmed),
		program: counter.PROGRAM_ID,
		out:     out,
	}

	require.NoError(t, c.run(context.Background(), []string{"list"}))
	assert.Contains(t, out.String(), base58.Encode(keys[0])+": 10")
	assert.Contains(t, out.String(), base58.Encode(keys[1])+": 20")
}

func TestCLI_Airdrop(t *testing.T) {
	env := setup(t)

	out, err := env.run(t, "airdrop", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "airdropped 1000 lamports to "+base58.Encode(env.cli.payerKey()))

	info, err := env.cli.backend.GetAccountInfo(env.ctx, env.cli.payerKey())
	require.NoError(t, err)
	assert.EqualValues(t, defaultCLIConfig.AirdropLamports+1000, info.Lamports)
}

func TestCLI_Errors(t *testing.T) {
	env := setup(t)

	_, err := env.run(t)
	assert.True(t, errors.Is(err, errUsage))

	_, err = env.run(t, "unknown")
	assert.True(t, errors.Is(err, errUsage))

	_, err = env.run(t, "increment", "only-one-arg")
	assert.True(t, errors.Is(err, errUsage))

	_, err = env.run(t, "create", "1", "2")
	assert.True(t, errors.Is(err, errUsage))

	_, err = env.run(t, "get", "not-base58-0OIl")
	assert.Error(t, err)

	_, err = env.run(t, "increment", base58.Encode(make([]byte, 32)), "-1")
	assert.Error(t, err)

	missing, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, err = env.run(t, "get", base58.Encode(missing))
	assert.True(t, errors.Is(err, solana.ErrNoAccountInfo))
}

func TestCLI_IncrementUninitialized(t *testing.T) {
	env := setup(t)

	// Accounts that were never created are system owned and empty
	missing, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	out, err := env.run(t, "increment", base58.Encode(missing), "1")
	require.Error(t, err)
	assert.Contains(t, out, "failed")

	var txErr *solana.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, solana.InstructionErrorInvalidAccountData, txErr.InstructionError().ErrorKey())
}

func TestCLI_CustomProgramID(t *testing.T) {
	program, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	config := defaultCLIConfig
	config.Backend = backendLocal
	config.ProgramID = base58.Encode(program)

	out := &bytes.Buffer{}
	c, cleanup, err := newCLI(context.Background(), &config, out)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, c.run(context.Background(), []string{"create", "2"}))
	matches := createdPattern.FindStringSubmatch(out.String())
	require.Len(t, matches, 3)

	address, err := parseAddress(matches[1])
	require.NoError(t, err)

	info, err := c.backend.GetAccountInfo(context.Background(), address)
	require.NoError(t, err)
	assert.EqualValues(t, program, info.Owner)
	assert.NotEqual(t, counter.PROGRAM_ID, info.Owner)
}

func TestNewCLI_InvalidConfig(t *testing.T) {
	for _, mutate := range []func(c *cliConfig){
		func(c *cliConfig) { c.Backend = "unknown" },
		func(c *cliConfig) { c.Backend = backendLocal; c.Store = "unknown" },
		func(c *cliConfig) { c.ProgramID = "invalid" },
	} {
		config := defaultCLIConfig
		mutate(&config)

		_, _, err := newCLI(context.Background(), &config, &bytes.Buffer{})
		assert.Error(t, err)
	}
}

func TestCLI_Memo(t *testing.T) {
	config := defaultCLIConfig
	config.Backend = backendLocal
	config.Memo = "counting"

	out := &bytes.Buffer{}
	c, cleanup, err := newCLI(context.Background(), &config, out)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, c.run(context.Background(), []string{"create", "1"}))
	assert.Contains(t, out.String(), `Program log: Memo (len 8): "counting"`)
}

func TestCLI_ComputeBudget(t *testing.T) {
	config := defaultCLIConfig
	config.Backend = backendLocal
	config.ComputeUnitPrice = 1000
	config.ComputeUnitLimit = 10_000

	out := &bytes.Buffer{}
	c, cleanup, err := newCLI(context.Background(), &config, out)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, c.run(context.Background(), []string{"create", "7"}))
	assert.Contains(t, out.String(), "Program ComputeBudget111111111111111111111111111111 success")
	assert.Contains(t, out.String(), "with value 7")
}
