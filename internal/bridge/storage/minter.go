package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/metadata"
)

const (
	DefaultErc20Fees  int64 = 100
	DefaultErc721Fees int64 = 500_000
)

type (
	// Fees are the governance fee parameters of the minter.
	Fees struct {
		Erc20Wrapping    int64
		Erc20Unwrapping  int64
		Erc721Wrapping   int64
		Erc721Unwrapping int64
	}

	// MinterParams gathers everything the minter storage depends on. The
	// ledger and quorum addresses must come from confirmed originations.
	MinterParams struct {
		Administrator  domain.Address
		Quorum         domain.Address
		FungibleLedger domain.Address
		Tokens         []domain.TokenSpec
		Nfts           []domain.NftSpec
		// NftLedgers maps NftSpec.ForeignKey to the originated ledger.
		NftLedgers map[string]domain.Address
		// GovernanceContract and FeesContract default to Administrator.
		GovernanceContract domain.Address
		FeesContract       domain.Address
		Fees               Fees
		Metadata           metadata.Metadata
	}

	// TokenRef points at one token of a multi-asset ledger. It is encoded as
	// the pair [ledger, token_id].
	TokenRef struct {
		Ledger  domain.Address
		TokenID uint64
	}

	MinterAdmin struct {
		Administrator domain.Address `json:"administrator"`
		Signer        domain.Address `json:"signer"`
		Paused        bool           `json:"paused"`
	}

	MinterAssets struct {
		Erc20Tokens  map[string]TokenRef       `json:"erc20_tokens"`
		Erc721Tokens map[string]domain.Address `json:"erc721_tokens"`
		Mints        map[string]struct{}       `json:"mints"`
	}

	Governance struct {
		Contract             domain.Address `json:"contract"`
		FeesContract         domain.Address `json:"fees_contract"`
		Erc20WrappingFees    int64          `json:"erc20_wrapping_fees"`
		Erc20UnwrappingFees  int64          `json:"erc20_unwrapping_fees"`
		Erc721WrappingFees   int64          `json:"erc721_wrapping_fees"`
		Erc721UnwrappingFees int64          `json:"erc721_unwrapping_fees"`
	}

	// MinterStorage is the initial storage of the minter.
	MinterStorage struct {
		Admin      MinterAdmin       `json:"admin"`
		Assets     MinterAssets      `json:"assets"`
		Governance Governance        `json:"governance"`
		Metadata   metadata.Metadata `json:"metadata"`
	}
)

// DefaultFees returns the fee schedule used when none is configured.
func DefaultFees() Fees {
	return Fees{
		Erc20Wrapping:    DefaultErc20Fees,
		Erc20Unwrapping:  DefaultErc20Fees,
		Erc721Wrapping:   DefaultErc721Fees,
		Erc721Unwrapping: DefaultErc721Fees,
	}
}

// Validate rejects negative fees.
func (f Fees) Validate() error {
	var errs []error
	check := func(name string, v int64) {
		if v < 0 {
			errs = append(errs, domain.NewConfigError("governance."+name, "fee must be non-negative, got %d", v))
		}
	}
	check("erc20-wrapping-fees", f.Erc20Wrapping)
	check("erc20-unwrapping-fees", f.Erc20Unwrapping)
	check("erc721-wrapping-fees", f.Erc721Wrapping)
	check("erc721-unwrapping-fees", f.Erc721Unwrapping)
	return errors.Join(errs...)
}

func (r TokenRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Ledger, r.TokenID})
}

func (r *TokenRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("token reference must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Ledger); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &r.TokenID)
}

// Minter builds the minter storage. The minter's signer is the quorum, while
// administration and governance stay with the configured identities.
func Minter(p MinterParams) (*MinterStorage, error) {
	if err := validateAdmin(p.Administrator); err != nil {
		return nil, err
	}
	if err := requireContract("quorum", p.Quorum); err != nil {
		return nil, err
	}
	if err := requireContract("fungible_ledger", p.FungibleLedger); err != nil {
		return nil, err
	}
	if err := ValidateTokens(p.Tokens); err != nil {
		return nil, err
	}
	if err := ValidateNfts(p.Nfts); err != nil {
		return nil, err
	}
	if err := p.Fees.Validate(); err != nil {
		return nil, err
	}
	if p.Metadata == nil {
		return nil, domain.NewConfigError("minter.metadata", "metadata is required")
	}

	governance, err := orDefault("governance.contract", p.GovernanceContract, p.Administrator)
	if err != nil {
		return nil, err
	}
	feesContract, err := orDefault("governance.fees-contract", p.FeesContract, p.Administrator)
	if err != nil {
		return nil, err
	}

	erc20 := make(map[string]TokenRef, len(p.Tokens))
	for i, token := range p.Tokens {
		erc20[token.ForeignKey()] = TokenRef{Ledger: p.FungibleLedger, TokenID: uint64(i)}
	}

	erc721 := make(map[string]domain.Address, len(p.Nfts))
	for i, nft := range p.Nfts {
		key := nft.ForeignKey()
		ledger, ok := p.NftLedgers[key]
		if !ok {
			return nil, domain.NewConfigError(fmt.Sprintf("nft[%d]", i), "no ledger originated for %s", nft.ForeignContract)
		}
		if err := requireContract(fmt.Sprintf("nft[%d].ledger", i), ledger); err != nil {
			return nil, err
		}
		erc721[key] = ledger
	}
	if len(p.NftLedgers) != len(p.Nfts) {
		return nil, domain.NewConfigError("nft", "%d ledgers given for %d collections", len(p.NftLedgers), len(p.Nfts))
	}

	return &MinterStorage{
		Admin: MinterAdmin{
			Administrator: p.Administrator,
			Signer:        p.Quorum,
		},
		Assets: MinterAssets{
			Erc20Tokens:  erc20,
			Erc721Tokens: erc721,
			Mints:        map[string]struct{}{},
		},
		Governance: Governance{
			Contract:             governance,
			FeesContract:         feesContract,
			Erc20WrappingFees:    p.Fees.Erc20Wrapping,
			Erc20UnwrappingFees:  p.Fees.Erc20Unwrapping,
			Erc721WrappingFees:   p.Fees.Erc721Wrapping,
			Erc721UnwrappingFees: p.Fees.Erc721Unwrapping,
		},
		Metadata: p.Metadata,
	}, nil
}

func requireContract(field string, addr domain.Address) error {
	if err := addr.Validate(); err != nil {
		return &domain.ConfigError{Field: field, Err: err}
	}
	if !addr.IsContract() {
		return domain.NewConfigError(field, "%s is not an originated contract", addr)
	}
	return nil
}

func orDefault(field string, addr, fallback domain.Address) (domain.Address, error) {
	if addr == "" {
		return fallback, nil
	}
	if err := addr.Validate(); err != nil {
		return "", &domain.ConfigError{Field: field, Err: err}
	}
	return addr, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}
