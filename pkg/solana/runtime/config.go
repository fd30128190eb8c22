package runtime

import (
	"github.com/code-payments/counter-program/pkg/config"
	"github.com/code-payments/counter-program/pkg/config/env"
	"github.com/code-payments/counter-program/pkg/config/memory"
	"github.com/code-payments/counter-program/pkg/config/wrapper"
)

const (
	envConfigPrefix = "RUNTIME_"

	MaxAccountDataSizeConfigEnvName = envConfigPrefix + "MAX_ACCOUNT_DATA_SIZE"
	defaultMaxAccountDataSize       = 10 * 1024

	LamportsPerByteYearConfigEnvName = envConfigPrefix + "LAMPORTS_PER_BYTE_YEAR"
	defaultLamportsPerByteYear       = 3480

	ExemptionThresholdYearsConfigEnvName = envConfigPrefix + "EXEMPTION_THRESHOLD_YEARS"
	defaultExemptionThresholdYears       = 2

	LamportsPerSignatureConfigEnvName = envConfigPrefix + "LAMPORTS_PER_SIGNATURE"
	defaultLamportsPerSignature       = 5000

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	MaxTransactionsPerSecondPerPayerConfigEnvName = envConfigPrefix + "MAX_TRANSACTIONS_PER_SECOND_PER_PAYER"
	defaultMaxTransactionsPerSecondPerPayer       = 0
)

type conf struct {
	maxAccountDataSize      config.Uint64
	lamportsPerByteYear     config.Uint64
	exemptionThresholdYears config.Uint64
	lamportsPerSignature    config.Uint64
	lockStripes             config.Uint64

	// Zero disables rate limiting
	maxTransactionsPerSecondPerPayer config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			maxAccountDataSize:      env.NewUint64Config(MaxAccountDataSizeConfigEnvName, defaultMaxAccountDataSize),
			lamportsPerByteYear:     env.NewUint64Config(LamportsPerByteYearConfigEnvName, defaultLamportsPerByteYear),
			exemptionThresholdYears: env.NewUint64Config(ExemptionThresholdYearsConfigEnvName, defaultExemptionThresholdYears),
			lamportsPerSignature:    env.NewUint64Config(LamportsPerSignatureConfigEnvName, defaultLamportsPerSignature),
			lockStripes:             env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),

			maxTransactionsPerSecondPerPayer: env.NewUint64Config(MaxTransactionsPerSecondPerPayerConfigEnvName, defaultMaxTransactionsPerSecondPerPayer),
		}
	}
}

type testOverrides struct {
	maxAccountDataSize               uint64
	lamportsPerSignature             uint64
	maxTransactionsPerSecondPerPayer uint64
}

// WithTestConfigs returns configuration suitable for tests, with fees and
// rent set to their defaults unless overridden.
func WithTestConfigs() ConfigProvider {
	return withManualTestOverrides(&testOverrides{
		maxAccountDataSize:   defaultMaxAccountDataSize,
		lamportsPerSignature: defaultLamportsPerSignature,
	})
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			maxAccountDataSize:      wrapper.NewUint64Config(memory.NewConfig(overrides.maxAccountDataSize), defaultMaxAccountDataSize),
			lamportsPerByteYear:     wrapper.NewUint64Config(memory.NewConfig(uint64(defaultLamportsPerByteYear)), defaultLamportsPerByteYear),
			exemptionThresholdYears: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultExemptionThresholdYears)), defaultExemptionThresholdYears),
			lamportsPerSignature:    wrapper.NewUint64Config(memory.NewConfig(overrides.lamportsPerSignature), defaultLamportsPerSignature),
			lockStripes:             wrapper.NewUint64Config(memory.NewConfig(uint64(16)), defaultLockStripes),

			maxTransactionsPerSecondPerPayer: wrapper.NewUint64Config(memory.NewConfig(overrides.maxTransactionsPerSecondPerPayer), defaultMaxTransactionsPerSecondPerPayer),
		}
	}
}
