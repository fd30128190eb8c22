package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/counter-program/pkg/solana"
	"github.com/code-payments/counter-program/pkg/solana/computebudget"
	"github.com/code-payments/counter-program/pkg/solana/counter"
	"github.com/code-payments/counter-program/pkg/solana/memo"
	"github.com/code-payments/counter-program/pkg/solana/system"
)

var errUsage = errors.New("invalid usage")

type cli struct {
	log     *logrus.Entry
	backend backend
	payer   ed25519.PrivateKey
	program ed25519.PublicKey
	memo    string
	out     io.Writer

	computeUnitPrice uint64
	computeUnitLimit uint32
}

type command struct {
	usage string
	args  int
	run   func(c *cli, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"airdrop":    {"airdrop <lamports>", 1, (*cli).airdrop},
	"create":     {"create [value]", -1, (*cli).create},
	"initialize": {"initialize <counter> <value>", 2, (*cli).initialize},
	"increment":  {"increment <counter> <value>", 2, (*cli).increment},
	"decrement":  {"decrement <counter> <value>", 2, (*cli).decrement},
	"get":        {"get <counter>", 1, (*cli).get},
	"list":       {"list", 0, (*cli).list},
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return errors.Wrapf(errUsage, "unknown command %q", args[0])
	}
	if cmd.args >= 0 && len(args)-1 != cmd.args {
		return errors.Wrapf(errUsage, "usage: %s", cmd.usage)
	}
	if cmd.args < 0 && len(args) > 2 {
		return errors.Wrapf(errUsage, "usage: %s", cmd.usage)
	}

	c.log.WithField("command", args[0]).Debug("running command")
	return cmd.run(c, ctx, args[1:])
}

func (c *cli) payerKey() ed25519.PublicKey {
	return c.payer.Public().(ed25519.PublicKey)
}

func (c *cli) airdrop(ctx context.Context, args []string) error {
	lamports, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid lamports")
	}

	if err := c.backend.Airdrop(ctx, c.payerKey(), lamports); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "airdropped %d lamports to %s\n", lamports, base58.Encode(c.payerKey()))
	return nil
}

// create allocates a new counter account owned by the program and
// initializes it within the same transaction.
func (c *cli) create(ctx context.Context, args []string) error {
	var value uint32
	if len(args) == 1 {
		parsed, err := parseValue(args[0])
		if err != nil {
			return err
		}
		value = parsed
	}

	_, counterKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return err
	}
	address := counterKey.Public().(ed25519.PublicKey)

	rent, err := c.backend.MinimumBalanceForRentExemption(ctx, counter.CounterAccountSize)
	if err != nil {
		return errors.Wrap(err, "error getting rent exemption balance")
	}

	txn := c.newTransaction(
		system.CreateAccount(c.payerKey(), address, c.program, rent, counter.CounterAccountSize),
		counter.NewProgramInstruction(c.program, &counter.InstructionAccounts{Counter: address}, &counter.Instruction{
			Type:  counter.InstructionTypeInitialize,
			Value: value,
		}),
	)

	if err := c.submit(ctx, txn, c.payer, counterKey); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "created counter %s with value %d\n", base58.Encode(address), value)
	return nil
}

func (c *cli) initialize(ctx context.Context, args []string) error {
	return c.update(ctx, counter.InstructionTypeInitialize, args)
}

func (c *cli) increment(ctx context.Context, args []string) error {
	return c.update(ctx, counter.InstructionTypeIncrement, args)
}

func (c *cli) decrement(ctx context.Context, args []string) error {
	return c.update(ctx, counter.InstructionTypeDecrement, args)
}

func (c *cli) update(ctx context.Context, instructionType counter.InstructionType, args []string) error {
	address, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	value, err := parseValue(args[1])
	if err != nil {
		return err
	}

	txn := c.newTransaction(
		counter.NewProgramInstruction(c.program, &counter.InstructionAccounts{Counter: address}, &counter.Instruction{
			Type:  instructionType,
			Value: value,
		}),
	)
	if err := c.submit(ctx, txn, c.payer); err != nil {
		return err
	}

	return c.printCounter(ctx, address)
}

func (c *cli) get(ctx context.Context, args []string) error {
	address, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	return c.printCounter(ctx, address)
}

func (c *cli) list(ctx context.Context, _ []string) error {
	accounts, err := c.backend.GetProgramAccounts(ctx, c.program)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		value, err := counter.CounterFromAccountInfo(account.Info, c.program)
		if err != nil {
			fmt.Fprintf(c.out, "%s: %v\n", base58.Encode(account.Address), err)
			continue
		}
		fmt.Fprintf(c.out, "%s: %d\n", base58.Encode(account.Address), value.Value)
	}
	return nil
}

func (c *cli) newTransaction(instructions ...solana.Instruction) solana.Transaction {
	var prefix []solana.Instruction
	if c.computeUnitLimit > 0 {
		prefix = append(prefix, computebudget.SetComputeUnitLimit(c.computeUnitLimit))
	}
	if c.computeUnitPrice > 0 {
		prefix = append(prefix, computebudget.SetComputeUnitPrice(c.computeUnitPrice))
	}
	if len(c.memo) > 0 {
		prefix = append(prefix, memo.Instruction(c.memo))
	}
	instructions = append(prefix, instructions...)
	return solana.NewTransaction(c.payerKey(), instructions...)
}

func (c *cli) submit(ctx context.Context, txn solana.Transaction, signers ...ed25519.PrivateKey) error {
	result, err := c.backend.Submit(ctx, txn, signers...)
	if result != nil {
		for _, line := range result.Logs {
			fmt.Fprintln(c.out, line)
		}
	}
	if err != nil {
		c.log.WithError(err).Debug("transaction failed")
		return errors.Wrap(err, "transaction failed")
	}

	fmt.Fprintf(c.out, "signature: %s\n", result.Signature)
	return nil
}

func (c *cli) printCounter(ctx context.Context, address ed25519.PublicKey) error {
	info, err := c.backend.GetAccountInfo(ctx, address)
	if err != nil {
		return errors.Wrapf(err, "error getting counter %s", base58.Encode(address))
	}

	value, err := counter.CounterFromAccountInfo(*info, c.program)
	if err != nil {
		return errors.Wrapf(err, "error decoding counter %s", base58.Encode(address))
	}

	fmt.Fprintf(c.out, "counter %s: %d\n", base58.Encode(address), value.Value)
	return nil
}

func parseAddress(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %q", value)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid address length %q", value)
	}
	return decoded, nil
}

func parseValue(value string) (uint32, error) {
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid value %q", value)
	}
	return uint32(parsed), nil
}
