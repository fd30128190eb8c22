package runtime

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// InvokeContext is handed to a program for a single instruction. Logs
// written through it are collected for the whole transaction.
type InvokeContext struct {
	ctx              context.Context
	log              *logrus.Entry
	programID        ed25519.PublicKey
	instructionIndex int
	logs             *[]string
}

// NewInvokeContext returns a standalone InvokeContext, which is useful when
// executing a program outside of a transaction.
func NewInvokeContext(ctx context.Context, programID ed25519.PublicKey) *InvokeContext {
	var logs []string
	return newInvokeContext(ctx, logrus.StandardLogger().WithField("type", "solana/runtime"), programID, 0, &logs)
}

func newInvokeContext(ctx context.Context, log *logrus.Entry, programID ed25519.PublicKey, index int, logs *[]string) *InvokeContext {
	return &InvokeContext{
		ctx: ctx,
		log: log.WithFields(logrus.Fields{
			"program":     base58.Encode(programID),
			"instruction": index,
		}),
		programID:        programID,
		instructionIndex: index,
		logs:             logs,
	}
}

func (c *InvokeContext) Context() context.Context {
	return c.ctx
}

func (c *InvokeContext) ProgramID() ed25519.PublicKey {
	return c.programID
}

func (c *InvokeContext) InstructionIndex() int {
	return c.instructionIndex
}

// Log records a program log message
func (c *InvokeContext) Log(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	c.log.Debug(msg)
	c.appendLog("Program log: " + msg)
}

// Logs returns every log line recorded so far in the transaction
func (c *InvokeContext) Logs() []string {
	logs := make([]string, len(*c.logs))
	copy(logs, *c.logs)
	return logs
}

func (c *InvokeContext) appendLog(line string) {
	*c.logs = append(*c.logs, line)
}
