package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/counter-program/pkg/app"
	"github.com/code-payments/counter-program/pkg/ledger/account"
	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/computebudget"
	"github.com/code-payments/counter-program/pkg/solana/counter"
	"github.com/code-payments/counter-program/pkg/solana/memo"
	"github.com/code-payments/counter-program/pkg/solana/runtime"

	pg "github.com/code-payments/counter-program/pkg/database/postgres"
	memory_account_store "github.com/code-payments/counter-program/pkg/ledger/account/memory"
	postgres_account_store "github.com/code-payments/counter-program/pkg/ledger/account/postgres"
)

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	os.Exit(run(flag.Args()))
}

func run(args []string) int {
	log := logrus.StandardLogger().WithField("type", "cmd/counter")

	env, err := app.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("failed to load environment")
		return 1
	}
	defer env.Shutdown()

	config, err := loadCLIConfig()
	if err != nil {
		log.WithError(err).Error("failed to load counter config")
		return 1
	}

	ctx := env.Context(context.Background())

	c, cleanup, err := newCLI(ctx, config, os.Stdout)
	if err != nil {
		log.WithError(err).Error("failed to setup cli")
		return 1
	}
	defer cleanup()

	if err := c.run(ctx, args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			usage()
			return 2
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newCLI(ctx context.Context, config *cliConfig, out io.Writer) (*cli, func(), error) {
	log := logrus.StandardLogger().WithField("type", "cmd/counter")
	cleanup := func() {}

	program := counter.PROGRAM_ID
	if len(config.ProgramID) > 0 {
		decoded, err := parseAddress(config.ProgramID)
		if err != nil {
			return nil, nil, errors.Wrap(err, "invalid program id")
		}
		program = decoded
	}

	var payer ed25519.PrivateKey
	if len(config.Keypair) > 0 {
		loaded, err := loadKeypair(config.Keypair)
		if err != nil {
			return nil, nil, err
		}
		payer = loaded
	} else {
		_, generated, err := ed25519.GenerateKey(nil)
		if err != nil {
			return nil, nil, err
		}
		payer = generated
		log.WithField("payer", base58.Encode(generated.Public().(ed25519.PublicKey))).Info("using ephemeral payer")
	}

	var b backend
	switch config.Backend {
	case backendRPC:
		b = newRPCBackend(solana.New(solana.ResolveEndpoint(config.RPCEndpoint)), solana.CommitmentFromString(config.Commitment))

	case backendLocal:
		var accounts account.Store
		switch config.Store {
		case storeMemory:
			accounts = memory_account_store.New()
		case storePostgres:
			db, err := pg.Open(&pg.Config{
				User:     config.PostgresUser,
				Password: config.PostgresPassword,
				Host:     config.PostgresHost,
				Port:     config.PostgresPort,
				DbName:   config.PostgresDbName,
				Traced:   true,
			})
			if err != nil {
				return nil, nil, err
			}
			cleanup = func() { db.Close() }
			accounts = postgres_account_store.New(db.DB)
		default:
			return nil, nil, errors.Errorf("unknown store %q", config.Store)
		}

		rt := runtime.New(accounts, runtime.WithEnvConfigs())
		if err := rt.RegisterProgram(program, counter.Process); err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := rt.RegisterProgram(memo.ProgramKey, memo.Process); err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := rt.RegisterProgram(computebudget.ProgramKey, computebudget.Process); err != nil {
			cleanup()
			return nil, nil, err
		}

		payerKey := payer.Public().(ed25519.PublicKey)
		if config.AirdropLamports > 0 {
			if err := rt.Airdrop(ctx, payerKey, config.AirdropLamports); err != nil {
				cleanup()
				return nil, nil, errors.Wrap(err, "error funding payer")
			}
		}

		b = newLocalBackend(rt, accounts)

	default:
		return nil, nil, errors.Errorf("unknown backend %q", config.Backend)
	}

	return &cli{
		log:     log,
		backend: b,
		payer:   payer,
		program: program,
		memo:    config.Memo,
		out:     out,

		computeUnitPrice: config.ComputeUnitPrice,
		computeUnitLimit: config.ComputeUnitLimit,
	}, cleanup, nil
}

func usage() {
	var lines []string
	for _, cmd := range commands {
		lines = append(lines, "  "+cmd.usage)
	}
	sort.Strings(lines)

	fmt.Fprintf(os.Stderr, "usage: counter [-config path] <command> [args]\n\ncommands:\n%s\n\n", strings.Join(lines, "\n"))
	flag.PrintDefaults()
}
