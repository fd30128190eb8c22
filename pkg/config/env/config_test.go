package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/counter-program/pkg/config"
)

func TestConfig_ReadsOnEveryGet(t *testing.T) {
	const env = "ENV_CONFIG_TEST_VAR"
	c := NewConfig(env)

	v, err := c.Get(context.Background())
	assert.Nil(t, v)
	assert.Equal(t, config.ErrNoValue, err)

	t.Setenv(env, " value ")
	v, err = c.Get(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []byte("value"), v)

	t.Setenv(env, "  ")
	_, err = c.Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)
}

func TestTypedConfigs(t *testing.T) {
	t.Setenv("ENV_CONFIG_TEST_UINT64", "10240")
	t.Setenv("ENV_CONFIG_TEST_BOOL", "true")
	t.Setenv("ENV_CONFIG_TEST_DURATION", "1500ms")

	ctx := context.Background()
	assert.EqualValues(t, 10240, NewUint64Config("ENV_CONFIG_TEST_UINT64", 1).Get(ctx))
	assert.EqualValues(t, 1, NewUint64Config("ENV_CONFIG_TEST_MISSING", 1).Get(ctx))
	assert.Equal(t, "fallback", NewStringConfig("ENV_CONFIG_TEST_MISSING", "fallback").Get(ctx))
	assert.Equal(t, 1500*time.Millisecond, NewDurationConfig("ENV_CONFIG_TEST_DURATION", time.Second).Get(ctx))

	// Keys are upper cased before lookup
	assert.True(t, NewBoolConfig("env_config_test_bool", false).Get(ctx))
}
