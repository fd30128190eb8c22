package runtime

import (
	"context"
)

// accountStorageOverhead is the number of bytes charged for every account
// on top of its data.
const accountStorageOverhead = 128

// MinimumBalanceForRentExemption returns the lamports an account holding
// size bytes of data needs to be rent exempt.
func (r *Runtime) MinimumBalanceForRentExemption(ctx context.Context, size uint64) uint64 {
	return minimumBalance(ctx, r.conf, size)
}

func minimumBalance(ctx context.Context, c *conf, size uint64) uint64 {
	perByteYear := c.lamportsPerByteYear.Get(ctx)
	years := c.exemptionThresholdYears.Get(ctx)
	return (accountStorageOverhead + size) * perByteYear * years
}
