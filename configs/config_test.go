package configs

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDeploy(t *testing.T) Deploy {
	t.Helper()

	cfg, err := DefaultConfig()
	require.NoError(t, err)

	d := cfg.Deploy
	d.Signers = map[string]string{"alice": "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"}
	d.Tokens = []Token{{EthContract: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", EthSymbol: "MKR", Symbol: "wMKR", Name: "Wrapped Maker", Decimals: 18}}
	return d
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DeploymentTargetLive, cfg.Deploy.Target)
	assert.Equal(t, 5*time.Minute, cfg.Deploy.Gateway.CallTimeout)
	assert.Equal(t, 2*time.Second, cfg.Deploy.Gateway.ReadyInterval)
	assert.Equal(t, int64(100), cfg.Deploy.Governance.Erc20WrappingFees)
	assert.Equal(t, int64(500_000), cfg.Deploy.Governance.Erc721UnwrappingFees)
	assert.Equal(t, "set_administrator", cfg.Deploy.Entrypoints.SetAdmin)
	assert.True(t, strings.HasSuffix(cfg.Deploy.Metadata.Minter.URI, "/minter.json"))
	assert.Empty(t, cfg.Deploy.Signers)
	assert.Empty(t, cfg.Deploy.Tokens)

	require.NoError(t, cfg.Compile.Validate())
	assert.Len(t, cfg.Compile.Sources, 4)
	assert.False(t, cfg.Compile.Enabled, "sources are listed but compilation is opt-in")
}

func TestApplyDefaults(t *testing.T) {
	v := viper.New()
	require.NoError(t, ApplyDefaults(v))

	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
deploy:
  threshold: 2
  signers:
    Alice: tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx
    bob: tz1gjaF81ZRRvdzjobyfVNsAeSC6PScjfQwN
  gateway:
    url: http://relay:9000
compile:
  enabled: true
`)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, 2, cfg.Deploy.Threshold)
	assert.Equal(t, "http://relay:9000", cfg.Deploy.Gateway.URL)
	assert.Equal(t, 5*time.Minute, cfg.Deploy.Gateway.CallTimeout, "unset keys keep the defaults")
	assert.Contains(t, cfg.Deploy.Signers, "alice", "viper lowercases map keys")
	assert.Equal(t, "michelson", cfg.Deploy.ContractsDir)
	assert.True(t, cfg.Compile.Enabled)
	assert.Len(t, cfg.Compile.Sources, 4)
}

func TestDeployValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := validDeploy(t)
		assert.NoError(t, d.Validate())
	})

	t.Run("collects every problem", func(t *testing.T) {
		d := validDeploy(t)
		d.Target = "mainnet"
		d.Threshold = 3
		d.Tokens = nil
		d.Metadata.Quorum = MetadataSource{}
		d.Governance.Erc20WrappingFees = -5

		err := d.Validate()
		require.Error(t, err)
		for _, want := range []string{
			"deploy.target must be either",
			"deploy.threshold",
			"deploy.tokens is required",
			"deploy.metadata.quorum",
			"deploy.governance.erc20-wrapping-fees",
		} {
			assert.Contains(t, err.Error(), want)
		}
	})

	t.Run("live requires a gateway url", func(t *testing.T) {
		d := validDeploy(t)
		d.Gateway.URL = ""
		assert.ErrorContains(t, d.Validate(), "deploy.gateway.url")
	})

	t.Run("dry-run requires an identity", func(t *testing.T) {
		d := validDeploy(t)
		d.Target = DeploymentTargetDryRun
		d.Gateway.URL = ""
		assert.ErrorContains(t, d.Validate(), "deploy.identity")

		d.Identity = "tz1KqTpEZ7Yob7QbPE4Hy4Wo8fHG8LhKxZSx"
		assert.NoError(t, d.Validate())
	})
}

func TestCompileValidate(t *testing.T) {
	c := Compile{Sources: map[string]CompileSource{"minter": {}}}

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compile.image is required")
	assert.Contains(t, err.Error(), "compile.sources.minter.file is required")
}
