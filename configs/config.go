package configs

import (
	"errors"
	"fmt"
	"time"
)

var Values Config

type (
	Config struct {
		LogLevel string  `mapstructure:"log-level"`
		Deploy   Deploy  `mapstructure:"deploy"`
		Compile  Compile `mapstructure:"compile"`
	}

	Deploy struct {
		Network      string  `mapstructure:"network"`
		Identity     string  `mapstructure:"identity"`
		Target       string  `mapstructure:"target"`
		Gateway      Gateway `mapstructure:"gateway"`
		ContractsDir string  `mapstructure:"contracts-dir"`
		StateDir     string  `mapstructure:"state-dir"`
		OutputDir    string  `mapstructure:"output-dir"`
		ExplorerURL  string  `mapstructure:"explorer-url"`
		Resume       bool    `mapstructure:"resume"`

		// Signers maps signer labels to key hashes. Labels are read
		// lowercased.
		Signers     map[string]string `mapstructure:"signers"`
		Threshold   int               `mapstructure:"threshold"`
		Tokens      []Token           `mapstructure:"tokens"`
		Nft         []Nft             `mapstructure:"nft"`
		Metadata    Metadata          `mapstructure:"metadata"`
		Governance  Governance        `mapstructure:"governance"`
		Entrypoints Entrypoints       `mapstructure:"entrypoints"`
	}

	Gateway struct {
		URL           string        `mapstructure:"url"`
		CallTimeout   time.Duration `mapstructure:"call-timeout"`
		ReadyAttempts int           `mapstructure:"ready-attempts"`
		ReadyInterval time.Duration `mapstructure:"ready-interval"`
	}

	Token struct {
		EthContract string `mapstructure:"eth-contract"`
		EthSymbol   string `mapstructure:"eth-symbol"`
		Symbol      string `mapstructure:"symbol"`
		Name        string `mapstructure:"name"`
		Decimals    int    `mapstructure:"decimals"`
	}

	Nft struct {
		EthContract string `mapstructure:"eth-contract"`
		EthSymbol   string `mapstructure:"eth-symbol"`
		Symbol      string `mapstructure:"symbol"`
		Name        string `mapstructure:"name"`
	}

	Metadata struct {
		FungibleLedger MetadataSource `mapstructure:"fungible-ledger"`
		NftLedger      MetadataSource `mapstructure:"nft-ledger"`
		Quorum         MetadataSource `mapstructure:"quorum"`
		Minter         MetadataSource `mapstructure:"minter"`
	}

	// MetadataSource points at remote metadata or at a JSON file stored
	// inline. File takes precedence over URI.
	MetadataSource struct {
		URI  string `mapstructure:"uri"`
		File string `mapstructure:"file"`
	}

	Governance struct {
		Contract             string `mapstructure:"contract"`
		FeesContract         string `mapstructure:"fees-contract"`
		Erc20WrappingFees    int64  `mapstructure:"erc20-wrapping-fees"`
		Erc20UnwrappingFees  int64  `mapstructure:"erc20-unwrapping-fees"`
		Erc721WrappingFees   int64  `mapstructure:"erc721-wrapping-fees"`
		Erc721UnwrappingFees int64  `mapstructure:"erc721-unwrapping-fees"`
	}

	Entrypoints struct {
		SetAdmin     string `mapstructure:"set-admin"`
		ConfirmAdmin string `mapstructure:"confirm-admin"`
	}

	Compile struct {
		// Enabled makes the bridge command compile before deploying.
		Enabled    bool                     `mapstructure:"enabled"`
		Image      string                   `mapstructure:"image"`
		Dockerfile string                   `mapstructure:"dockerfile"`
		Repository Repository               `mapstructure:"repository"`
		SourcesDir string                   `mapstructure:"sources-dir"`
		OutputDir  string                   `mapstructure:"output-dir"`
		Sources    map[string]CompileSource `mapstructure:"sources"`
	}

	// Repository, when set, is cloned into the sources directory before
	// compiling.
	Repository struct {
		URL string `mapstructure:"url"`
		Ref string `mapstructure:"ref"`
	}

	CompileSource struct {
		File       string `mapstructure:"file"`
		Entrypoint string `mapstructure:"entrypoint"`
	}
)

const (
	DeploymentTargetLive   = "live"
	DeploymentTargetDryRun = "dry-run"
)

// Validate checks that every required setting is present. Values are
// checked in depth when the deployment plan is built.
func (c *Deploy) Validate() error {
	var errs []error

	switch c.Target {
	case "":
		errs = append(errs, errors.New("deploy.target is required"))
	case DeploymentTargetLive:
		if c.Gateway.URL == "" {
			errs = append(errs, errors.New("deploy.gateway.url is required for live deployments"))
		}
	case DeploymentTargetDryRun:
		if c.Identity == "" {
			errs = append(errs, errors.New("deploy.identity is required for dry-run deployments"))
		}
	default:
		errs = append(errs, fmt.Errorf("deploy.target must be either '%s' or '%s'", DeploymentTargetLive, DeploymentTargetDryRun))
	}

	if c.Gateway.CallTimeout < 0 {
		errs = append(errs, errors.New("deploy.gateway.call-timeout must not be negative"))
	}
	if c.ContractsDir == "" {
		errs = append(errs, errors.New("deploy.contracts-dir is required"))
	}
	if c.StateDir == "" {
		errs = append(errs, errors.New("deploy.state-dir is required"))
	}
	if len(c.Signers) == 0 {
		errs = append(errs, errors.New("deploy.signers is required"))
	}
	if c.Threshold < 1 || c.Threshold > len(c.Signers) {
		errs = append(errs, fmt.Errorf("deploy.threshold must be between 1 and the number of signers (%d)", len(c.Signers)))
	}
	if len(c.Tokens) == 0 {
		errs = append(errs, errors.New("deploy.tokens is required"))
	}
	for i, token := range c.Tokens {
		if token.EthContract == "" {
			errs = append(errs, fmt.Errorf("deploy.tokens[%d].eth-contract is required", i))
		}
		if token.Symbol == "" {
			errs = append(errs, fmt.Errorf("deploy.tokens[%d].symbol is required", i))
		}
	}
	for i, nft := range c.Nft {
		if nft.EthContract == "" {
			errs = append(errs, fmt.Errorf("deploy.nft[%d].eth-contract is required", i))
		}
		if nft.Symbol == "" {
			errs = append(errs, fmt.Errorf("deploy.nft[%d].symbol is required", i))
		}
	}

	for name, src := range map[string]MetadataSource{
		"fungible-ledger": c.Metadata.FungibleLedger,
		"nft-ledger":      c.Metadata.NftLedger,
		"quorum":          c.Metadata.Quorum,
		"minter":          c.Metadata.Minter,
	} {
		if src.URI == "" && src.File == "" {
			errs = append(errs, fmt.Errorf("deploy.metadata.%s requires a uri or a file", name))
		}
	}

	fees := map[string]int64{
		"erc20-wrapping-fees":    c.Governance.Erc20WrappingFees,
		"erc20-unwrapping-fees":  c.Governance.Erc20UnwrappingFees,
		"erc721-wrapping-fees":   c.Governance.Erc721WrappingFees,
		"erc721-unwrapping-fees": c.Governance.Erc721UnwrappingFees,
	}
	for name, fee := range fees {
		if fee < 0 {
			errs = append(errs, fmt.Errorf("deploy.governance.%s must not be negative", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("deploy configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Compile) Validate() error {
	var errs []error

	if c.Image == "" {
		errs = append(errs, errors.New("compile.image is required"))
	}
	if c.SourcesDir == "" {
		errs = append(errs, errors.New("compile.sources-dir is required"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("compile.output-dir is required"))
	}
	if len(c.Sources) == 0 {
		errs = append(errs, errors.New("compile.sources is required"))
	}
	for name, src := range c.Sources {
		if src.File == "" {
			errs = append(errs, fmt.Errorf("compile.sources.%s.file is required", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("compile configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
