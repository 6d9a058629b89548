package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/compose-network/bridge-deployer/configs"
	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/handoff"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem"
	"github.com/compose-network/bridge-deployer/internal/bridge/metadata"
	"github.com/compose-network/bridge-deployer/internal/bridge/storage"
)

// PlanFromConfig converts the deploy configuration into a deployment plan.
// Metadata files are read through reader and stored inline.
func PlanFromConfig(cfg configs.Deploy, identity domain.Address, reader filesystem.Reader) (Plan, error) {
	var errs []error

	plan := Plan{
		Identity: identity,
		Signers: domain.SignerSet{
			Signers:   make(map[string]domain.Address, len(cfg.Signers)),
			Threshold: cfg.Threshold,
		},
		Entrypoints: entrypointsFromConfig(cfg.Entrypoints),
	}

	for label, keyHash := range cfg.Signers {
		plan.Signers.Signers[label] = domain.Address(strings.TrimSpace(keyHash))
	}

	for _, token := range cfg.Tokens {
		plan.Tokens = append(plan.Tokens, domain.TokenSpec{
			ForeignContract: token.EthContract,
			ForeignSymbol:   token.EthSymbol,
			Symbol:          token.Symbol,
			Name:            token.Name,
			Decimals:        token.Decimals,
		})
	}
	for _, nft := range cfg.Nft {
		plan.Nfts = append(plan.Nfts, domain.NftSpec{
			ForeignContract: nft.EthContract,
			ForeignSymbol:   nft.EthSymbol,
			Symbol:          nft.Symbol,
			Name:            nft.Name,
		})
	}

	sources := []struct {
		field  string
		source configs.MetadataSource
		target *metadata.Metadata
	}{
		{"metadata.fungible-ledger", cfg.Metadata.FungibleLedger, &plan.Metadata.FungibleLedger},
		{"metadata.nft-ledger", cfg.Metadata.NftLedger, &plan.Metadata.NftLedger},
		{"metadata.quorum", cfg.Metadata.Quorum, &plan.Metadata.Quorum},
		{"metadata.minter", cfg.Metadata.Minter, &plan.Metadata.Minter},
	}
	for _, s := range sources {
		meta, err := loadMetadata(s.source, reader)
		if err != nil {
			errs = append(errs, &domain.ConfigError{Field: s.field, Err: err})
			continue
		}
		*s.target = meta
	}

	governance, err := governanceFromConfig(cfg.Governance)
	if err != nil {
		errs = append(errs, err)
	}
	plan.Governance = governance

	if len(errs) > 0 {
		return Plan{}, errors.Join(errs...)
	}

	return plan, nil
}

func loadMetadata(src configs.MetadataSource, reader filesystem.Reader) (metadata.Metadata, error) {
	if src.File == "" {
		return metadata.EncodeURI(src.URI)
	}

	var raw json.RawMessage
	if err := reader.ReadJSON(src.File, &raw); err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	return metadata.EncodeRawContent(raw)
}

func governanceFromConfig(cfg configs.Governance) (GovernancePlan, error) {
	var errs []error

	plan := GovernancePlan{
		Fees: storage.Fees{
			Erc20Wrapping:    cfg.Erc20WrappingFees,
			Erc20Unwrapping:  cfg.Erc20UnwrappingFees,
			Erc721Wrapping:   cfg.Erc721WrappingFees,
			Erc721Unwrapping: cfg.Erc721UnwrappingFees,
		},
	}

	if cfg.Contract != "" {
		addr, err := domain.ParseAddress(cfg.Contract)
		if err != nil {
			errs = append(errs, &domain.ConfigError{Field: "governance.contract", Err: err})
		}
		plan.Contract = addr
	}
	if cfg.FeesContract != "" {
		addr, err := domain.ParseAddress(cfg.FeesContract)
		if err != nil {
			errs = append(errs, &domain.ConfigError{Field: "governance.fees-contract", Err: err})
		}
		plan.FeesContract = addr
	}

	return plan, errors.Join(errs...)
}

func entrypointsFromConfig(cfg configs.Entrypoints) handoff.Entrypoints {
	entrypoints := handoff.DefaultEntrypoints()
	if cfg.SetAdmin != "" {
		entrypoints.SetAdmin = cfg.SetAdmin
	}
	if cfg.ConfirmAdmin != "" {
		entrypoints.ConfirmAdmin = cfg.ConfirmAdmin
	}
	return entrypoints
}

// compileSources lists the configured sources in origination order. Names
// other than the known contracts are rejected.
func compileSources(cfg configs.Compile) ([]contracts.Source, error) {
	known := make(map[contracts.Name]bool, len(contracts.Names))
	for _, name := range contracts.Names {
		known[name] = true
	}

	var errs []error
	for name := range cfg.Sources {
		if !known[contracts.Name(name)] {
			errs = append(errs, domain.NewConfigError("compile.sources."+name, "unknown contract"))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sources := make([]contracts.Source, 0, len(cfg.Sources))
	for _, name := range contracts.Names {
		src, ok := cfg.Sources[string(name)]
		if !ok {
			continue
		}
		sources = append(sources, contracts.Source{Name: name, File: src.File, Entrypoint: src.Entrypoint})
	}

	return sources, nil
}
