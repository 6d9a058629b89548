package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

type (
	// TokenSpec describes one fungible Ethereum asset wrapped by the bridge.
	TokenSpec struct {
		ForeignContract string
		ForeignSymbol   string
		Symbol          string
		Name            string
		Decimals        int
	}

	// NftSpec describes one Ethereum NFT collection wrapped by the bridge.
	NftSpec struct {
		ForeignContract string
		ForeignSymbol   string
		Symbol          string
		Name            string
	}

	// SignerSet is the quorum membership: signer label to key hash, plus the
	// number of signatures required.
	SignerSet struct {
		Signers   map[string]Address
		Threshold int
	}
)

// ForeignKey returns the foreign contract address without its 0x prefix, as
// used for minter storage keys.
func (t TokenSpec) ForeignKey() string {
	return StripForeignPrefix(t.ForeignContract)
}

// Validate checks every field of the spec.
func (t TokenSpec) Validate() error {
	var errs []error

	if err := validateForeignContract(t.ForeignContract); err != nil {
		errs = append(errs, err)
	}
	if t.ForeignSymbol == "" {
		errs = append(errs, errors.New("eth-symbol is required"))
	}
	if t.Symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if t.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if t.Decimals < 0 {
		errs = append(errs, fmt.Errorf("decimals must be non-negative, got %d", t.Decimals))
	}

	return errors.Join(errs...)
}

// ForeignKey returns the foreign contract address without its 0x prefix.
func (n NftSpec) ForeignKey() string {
	return StripForeignPrefix(n.ForeignContract)
}

// Validate checks every field of the spec.
func (n NftSpec) Validate() error {
	var errs []error

	if err := validateForeignContract(n.ForeignContract); err != nil {
		errs = append(errs, err)
	}
	if n.ForeignSymbol == "" {
		errs = append(errs, errors.New("eth-symbol is required"))
	}
	if n.Symbol == "" {
		errs = append(errs, errors.New("symbol is required"))
	}
	if n.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}

	return errors.Join(errs...)
}

// Validate checks the signer key hashes and that the threshold is reachable.
func (s SignerSet) Validate() error {
	if len(s.Signers) == 0 {
		return NewConfigError("signers", "at least one signer is required")
	}

	for label, addr := range s.Signers {
		if label == "" {
			return NewConfigError("signers", "signer label must not be empty")
		}
		if err := addr.Validate(); err != nil {
			return &ConfigError{Field: "signers." + label, Err: err}
		}
		if addr.IsContract() {
			return NewConfigError("signers."+label, "signer must be an implicit account, got %s", addr)
		}
	}

	if s.Threshold < 1 || s.Threshold > len(s.Signers) {
		return NewConfigError("threshold", "must be between 1 and %d, got %d", len(s.Signers), s.Threshold)
	}

	return nil
}

// StripForeignPrefix removes the 0x prefix of an Ethereum address.
func StripForeignPrefix(addr string) string {
	if after, ok := strings.CutPrefix(addr, "0x"); ok {
		return after
	}
	return strings.TrimPrefix(addr, "0X")
}

func validateForeignContract(addr string) error {
	if addr == "" {
		return errors.New("eth-contract is required")
	}
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return fmt.Errorf("eth-contract %q must be 0x prefixed", addr)
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("eth-contract %q is not a valid Ethereum address", addr)
	}
	return nil
}
