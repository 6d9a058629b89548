package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	ErrAlreadyRecorded = errors.New("already recorded")
	ErrOutOfOrder      = errors.New("recorded out of dependency order")
)

// DeploymentResult holds the addresses produced by a deployment. Fields are
// filled in dependency order through the Record methods and never change once
// set, so a partial result always describes exactly the confirmed steps.
type DeploymentResult struct {
	FungibleLedger Address            `json:"fungible_ledger,omitempty"`
	NftLedgers     map[string]Address `json:"nft_ledgers,omitempty"`
	Quorum         Address            `json:"quorum,omitempty"`
	Minter         Address            `json:"minter,omitempty"`
	AdminProposed  []Address          `json:"admin_proposed,omitempty"`
	AdminConfirmed bool               `json:"admin_confirmed,omitempty"`
}

// NewDeploymentResult returns an empty result.
func NewDeploymentResult() *DeploymentResult {
	return &DeploymentResult{NftLedgers: make(map[string]Address)}
}

func (r *DeploymentResult) RecordFungibleLedger(addr Address) error {
	if r.FungibleLedger != "" {
		return fmt.Errorf("fungible ledger %w as %s", ErrAlreadyRecorded, r.FungibleLedger)
	}
	r.FungibleLedger = addr
	return nil
}

// RecordNftLedger records the ledger originated for the NFT collection whose
// foreign key (0x stripped address) is given.
func (r *DeploymentResult) RecordNftLedger(foreignKey string, addr Address) error {
	if r.FungibleLedger == "" {
		return fmt.Errorf("nft ledger %s %w: fungible ledger missing", foreignKey, ErrOutOfOrder)
	}
	if existing, ok := r.NftLedgers[foreignKey]; ok {
		return fmt.Errorf("nft ledger %s %w as %s", foreignKey, ErrAlreadyRecorded, existing)
	}
	if r.NftLedgers == nil {
		r.NftLedgers = make(map[string]Address)
	}
	r.NftLedgers[foreignKey] = addr
	return nil
}

func (r *DeploymentResult) RecordQuorum(addr Address) error {
	if r.Quorum != "" {
		return fmt.Errorf("quorum %w as %s", ErrAlreadyRecorded, r.Quorum)
	}
	if r.FungibleLedger == "" {
		return fmt.Errorf("quorum %w: fungible ledger missing", ErrOutOfOrder)
	}
	r.Quorum = addr
	return nil
}

func (r *DeploymentResult) RecordMinter(addr Address) error {
	if r.Minter != "" {
		return fmt.Errorf("minter %w as %s", ErrAlreadyRecorded, r.Minter)
	}
	if r.Quorum == "" || r.FungibleLedger == "" {
		return fmt.Errorf("minter %w: quorum or fungible ledger missing", ErrOutOfOrder)
	}
	r.Minter = addr
	return nil
}

// RecordAdminProposed marks ledger as having the minter as pending admin.
func (r *DeploymentResult) RecordAdminProposed(ledger Address) error {
	if r.Minter == "" {
		return fmt.Errorf("admin proposal %w: minter missing", ErrOutOfOrder)
	}
	if r.HasAdminProposed(ledger) {
		return fmt.Errorf("admin proposal for %s %w", ledger, ErrAlreadyRecorded)
	}
	r.AdminProposed = append(r.AdminProposed, ledger)
	return nil
}

// RecordAdminConfirmed marks the handoff as accepted by the minter.
func (r *DeploymentResult) RecordAdminConfirmed() error {
	if r.AdminConfirmed {
		return fmt.Errorf("admin confirmation %w", ErrAlreadyRecorded)
	}
	if len(r.AdminProposed) == 0 {
		return fmt.Errorf("admin confirmation %w: nothing proposed", ErrOutOfOrder)
	}
	r.AdminConfirmed = true
	return nil
}

func (r *DeploymentResult) HasAdminProposed(ledger Address) bool {
	return slices.Contains(r.AdminProposed, ledger)
}

// Clone returns a deep copy of r.
func (r *DeploymentResult) Clone() *DeploymentResult {
	if r == nil {
		return NewDeploymentResult()
	}

	clone := *r
	clone.NftLedgers = maps.Clone(r.NftLedgers)
	if clone.NftLedgers == nil {
		clone.NftLedgers = make(map[string]Address)
	}
	clone.AdminProposed = slices.Clone(r.AdminProposed)
	return &clone
}
