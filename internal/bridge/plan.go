package bridge

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/handoff"
	"github.com/compose-network/bridge-deployer/internal/bridge/metadata"
	"github.com/compose-network/bridge-deployer/internal/bridge/storage"
	"golang.org/x/crypto/blake2b"
)

type (
	// Plan is the complete input of a deployment.
	Plan struct {
		// Identity administers every contract until the handoff and keeps
		// the minter governance.
		Identity    domain.Address
		Signers     domain.SignerSet
		Tokens      []domain.TokenSpec
		Nfts        []domain.NftSpec
		Metadata    PlanMetadata
		Governance  GovernancePlan
		Entrypoints handoff.Entrypoints
	}

	PlanMetadata struct {
		FungibleLedger metadata.Metadata
		NftLedger      metadata.Metadata
		Quorum         metadata.Metadata
		Minter         metadata.Metadata
	}

	// GovernancePlan configures the minter governance. Empty contracts
	// default to the plan identity.
	GovernancePlan struct {
		Contract     domain.Address
		FeesContract domain.Address
		Fees         storage.Fees
	}
)

// Validate reports every problem of the plan at once.
func (p Plan) Validate() error {
	var errs []error

	if err := p.Identity.Validate(); err != nil {
		errs = append(errs, &domain.ConfigError{Field: "identity", Err: err})
	} else if p.Identity.IsContract() {
		errs = append(errs, domain.NewConfigError("identity", "%s is not an implicit account", p.Identity))
	}
	if err := p.Signers.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := storage.ValidateTokens(p.Tokens); err != nil {
		errs = append(errs, err)
	}
	if err := storage.ValidateNfts(p.Nfts); err != nil {
		errs = append(errs, err)
	}
	if err := p.Governance.Fees.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, m := range []struct {
		field string
		value metadata.Metadata
	}{
		{"metadata.fungible-ledger", p.Metadata.FungibleLedger},
		{"metadata.nft-ledger", p.Metadata.NftLedger},
		{"metadata.quorum", p.Metadata.Quorum},
		{"metadata.minter", p.Metadata.Minter},
	} {
		if len(m.value) == 0 {
			errs = append(errs, domain.NewConfigError(m.field, "metadata is required"))
		}
	}

	return errors.Join(errs...)
}

// Digest identifies the plan. A saved deployment is only resumed by a plan
// with the same digest.
func (p Plan) Digest() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// proposalOrder lists the ledgers in the order admin proposals are sent:
// the fungible ledger first, then the NFT ledgers in input order.
func (p Plan) proposalOrder(result *domain.DeploymentResult) []domain.Address {
	ledgers := []domain.Address{result.FungibleLedger}
	for _, nft := range p.Nfts {
		ledgers = append(ledgers, result.NftLedgers[nft.ForeignKey()])
	}
	return ledgers
}

// ledgersOf lists the ledgers in the order the minter confirms them: the NFT
// ledgers in input order followed by the fungible ledger.
func (p Plan) ledgersOf(result *domain.DeploymentResult) []domain.Address {
	ledgers := make([]domain.Address, 0, len(p.Nfts)+1)
	for _, nft := range p.Nfts {
		ledgers = append(ledgers, result.NftLedgers[nft.ForeignKey()])
	}
	return append(ledgers, result.FungibleLedger)
}
