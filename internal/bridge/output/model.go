package output

import (
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"gopkg.in/yaml.v3"
)

type (
	Model struct {
		Network   string    `yaml:"network"`
		Deployer  Address   `yaml:"deployer"`
		Contracts Contracts `yaml:"contracts"`
		Tokens    []Token   `yaml:"tokens"`
		Handoff   Handoff   `yaml:"handoff"`
	}

	Contracts struct {
		FungibleLedger Contract    `yaml:"fungible-ledger"`
		NftLedgers     []NftLedger `yaml:"nft-ledgers,omitempty"`
		Quorum         Contract    `yaml:"quorum"`
		Minter         Contract    `yaml:"minter"`
	}

	// NftLedger is listed per collection in input order. Local symbols may
	// repeat, the foreign contract may not.
	NftLedger struct {
		EthContract SingleQuotedString `yaml:"eth-contract"`
		Symbol      string             `yaml:"symbol"`
		Contract    `yaml:",inline"`
	}

	Contract struct {
		Address  Address `yaml:"address"`
		Explorer string  `yaml:"explorer,omitempty"`
	}

	Token struct {
		EthContract SingleQuotedString `yaml:"eth-contract"`
		Symbol      string             `yaml:"symbol"`
		TokenID     int                `yaml:"token-id"`
	}

	Handoff struct {
		Proposed  []Address `yaml:"proposed"`
		Confirmed bool      `yaml:"confirmed"`
	}

	Address = domain.Address

	// SingleQuotedString keeps hex strings such as Ethereum addresses from
	// being read back as numbers.
	SingleQuotedString string
)

func (s SingleQuotedString) MarshalYAML() (any, error) {
	node := &yaml.Node{
		Kind:  yaml.ScalarNode,
		Style: yaml.SingleQuotedStyle,
		Value: string(s),
	}
	return node, nil
}
