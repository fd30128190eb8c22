package main

import (
	"github.com/spf13/viper"

	"github.com/code-payments/counter-program/pkg/solana"
)

const (
	backendRPC   = "rpc"
	backendLocal = "local"

	storeMemory   = "memory"
	storePostgres = "postgres"
)

type cliConfig struct {
	// Backend is either "rpc", to talk to a cluster, or "local" to execute
	// transactions in process.
	Backend string `mapstructure:"backend"`

	// RPCEndpoint is a URL or a cluster moniker such as "devnet"
	RPCEndpoint string `mapstructure:"rpc_endpoint"`
	Commitment  string `mapstructure:"commitment"`

	// Keypair is a file URL to a JSON encoded keypair, as written by
	// solana-keygen. An ephemeral keypair is used when empty.
	Keypair string `mapstructure:"keypair"`

	// ProgramID overrides the address of the counter program
	ProgramID string `mapstructure:"program_id"`

	// Memo is attached to every transaction when set
	Memo string `mapstructure:"memo"`

	// ComputeUnitPrice and ComputeUnitLimit add compute budget instructions
	// to every transaction when non-zero
	ComputeUnitPrice uint64 `mapstructure:"compute_unit_price"`
	ComputeUnitLimit uint32 `mapstructure:"compute_unit_limit"`

	// Store selects the account store of the local backend
	Store string `mapstructure:"store"`

	PostgresHost     string `mapstructure:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password"`
	PostgresDbName   string `mapstructure:"postgres_db_name"`

	// AirdropLamports funds the payer of the local backend on startup
	AirdropLamports uint64 `mapstructure:"airdrop_lamports"`
}

var defaultCLIConfig = cliConfig{
	Backend:     backendRPC,
	RPCEndpoint: string(solana.EnvironmentLocal),
	Commitment:  "confirmed",

	Store: storeMemory,

	PostgresHost:   "localhost",
	PostgresPort:   5432,
	PostgresUser:   "postgres",
	PostgresDbName: "counter",

	AirdropLamports: 1_000_000_000,
}

func init() {
	_ = viper.BindEnv("backend", "COUNTER_BACKEND")

	_ = viper.BindEnv("rpc_endpoint", "COUNTER_RPC_ENDPOINT")
	_ = viper.BindEnv("commitment", "COUNTER_COMMITMENT")

	_ = viper.BindEnv("keypair", "COUNTER_KEYPAIR")
	_ = viper.BindEnv("program_id", "COUNTER_PROGRAM_ID")
	_ = viper.BindEnv("memo", "COUNTER_MEMO")

	_ = viper.BindEnv("compute_unit_price", "COUNTER_COMPUTE_UNIT_PRICE")
	_ = viper.BindEnv("compute_unit_limit", "COUNTER_COMPUTE_UNIT_LIMIT")

	_ = viper.BindEnv("store", "COUNTER_STORE")

	_ = viper.BindEnv("postgres_host", "COUNTER_POSTGRES_HOST")
	_ = viper.BindEnv("postgres_port", "COUNTER_POSTGRES_PORT")
	_ = viper.BindEnv("postgres_user", "COUNTER_POSTGRES_USER")
	_ = viper.BindEnv("postgres_password", "COUNTER_POSTGRES_PASSWORD")
	_ = viper.BindEnv("postgres_db_name", "COUNTER_POSTGRES_DB_NAME")

	_ = viper.BindEnv("airdrop_lamports", "COUNTER_AIRDROP_LAMPORTS")
}

func loadCLIConfig() (*cliConfig, error) {
	config := defaultCLIConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
