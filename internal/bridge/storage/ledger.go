package storage

import (
	"fmt"
	"strconv"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/metadata"
	"github.com/ethereum/go-ethereum/common"
)

// nftDecimals is the decimals value every NFT collection advertises.
const nftDecimals = "1"

type (
	// TokenInfo holds the hex encoded metadata fields of a token.
	TokenInfo struct {
		Decimals    string `json:"decimals"`
		EthContract string `json:"eth_contract"`
		EthSymbol   string `json:"eth_symbol"`
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
	}

	TokenMetadata struct {
		TokenID   uint64    `json:"token_id"`
		TokenInfo TokenInfo `json:"token_info"`
	}

	// FungibleAdmin pauses tokens individually.
	FungibleAdmin struct {
		Admin        domain.Address  `json:"admin"`
		PendingAdmin *domain.Address `json:"pending_admin"`
		Paused       map[uint64]bool `json:"paused"`
	}

	FungibleAssets struct {
		Ledger           map[string]uint64        `json:"ledger"`
		Operators        map[string]struct{}      `json:"operators"`
		TokenMetadata    map[uint64]TokenMetadata `json:"token_metadata"`
		TokenTotalSupply map[uint64]uint64        `json:"token_total_supply"`
	}

	// FungibleLedgerStorage is the initial storage of the multi-asset ledger.
	FungibleLedgerStorage struct {
		Admin    FungibleAdmin     `json:"admin"`
		Assets   FungibleAssets    `json:"assets"`
		Metadata metadata.Metadata `json:"metadata"`
	}

	// NftAdmin pauses the whole collection at once.
	NftAdmin struct {
		Admin        domain.Address  `json:"admin"`
		PendingAdmin *domain.Address `json:"pending_admin"`
		Paused       bool            `json:"paused"`
	}

	NftAssets struct {
		Ledger    map[string]domain.Address `json:"ledger"`
		Operators map[string]struct{}       `json:"operators"`
		TokenInfo TokenInfo                 `json:"token_info"`
	}

	// NftLedgerStorage is the initial storage of one NFT collection ledger.
	NftLedgerStorage struct {
		Admin    NftAdmin          `json:"admin"`
		Assets   NftAssets         `json:"assets"`
		Metadata metadata.Metadata `json:"metadata"`
	}
)

// FungibleLedger builds the multi-asset ledger storage. Token ids are the
// positions of the specs in tokens, so reordering the list changes ids.
func FungibleLedger(admin domain.Address, tokens []domain.TokenSpec, meta metadata.Metadata) (*FungibleLedgerStorage, error) {
	if err := validateAdmin(admin); err != nil {
		return nil, err
	}
	if err := ValidateTokens(tokens); err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, domain.NewConfigError("fungible_ledger.metadata", "metadata is required")
	}

	tokenMetadata := make(map[uint64]TokenMetadata, len(tokens))
	supply := make(map[uint64]uint64, len(tokens))
	for i, token := range tokens {
		id := uint64(i)
		tokenMetadata[id] = TokenMetadata{
			TokenID: id,
			TokenInfo: tokenInfo(
				strconv.Itoa(token.Decimals),
				token.ForeignContract,
				token.ForeignSymbol,
				token.Name,
				token.Symbol,
			),
		}
		supply[id] = 0
	}

	return &FungibleLedgerStorage{
		Admin: FungibleAdmin{
			Admin:  admin,
			Paused: map[uint64]bool{},
		},
		Assets: FungibleAssets{
			Ledger:           map[string]uint64{},
			Operators:        map[string]struct{}{},
			TokenMetadata:    tokenMetadata,
			TokenTotalSupply: supply,
		},
		Metadata: meta,
	}, nil
}

// NftLedger builds the storage of the ledger for a single NFT collection.
func NftLedger(admin domain.Address, nft domain.NftSpec, meta metadata.Metadata) (*NftLedgerStorage, error) {
	if err := validateAdmin(admin); err != nil {
		return nil, err
	}
	if err := nft.Validate(); err != nil {
		return nil, &domain.ConfigError{Field: "nft", Err: err}
	}
	if meta == nil {
		return nil, domain.NewConfigError("nft_ledger.metadata", "metadata is required")
	}

	return &NftLedgerStorage{
		Admin: NftAdmin{Admin: admin},
		Assets: NftAssets{
			Ledger:    map[string]domain.Address{},
			Operators: map[string]struct{}{},
			TokenInfo: tokenInfo(nftDecimals, nft.ForeignContract, nft.ForeignSymbol, nft.Name, nft.Symbol),
		},
		Metadata: meta,
	}, nil
}

// ValidateTokens checks each spec and rejects foreign contracts listed twice.
func ValidateTokens(tokens []domain.TokenSpec) error {
	if len(tokens) == 0 {
		return domain.NewConfigError("tokens", "at least one token is required")
	}

	seen := make(map[string]int, len(tokens))
	for i, token := range tokens {
		if err := token.Validate(); err != nil {
			return &domain.ConfigError{Field: fmt.Sprintf("tokens[%d]", i), Err: err}
		}
		key := normalizeKey(token.ForeignKey())
		if first, ok := seen[key]; ok {
			return domain.NewConfigError(fmt.Sprintf("tokens[%d]", i), "eth-contract %s already used by tokens[%d]", token.ForeignContract, first)
		}
		seen[key] = i
	}
	return nil
}

// ValidateNfts checks each spec and rejects collections listed twice.
func ValidateNfts(nfts []domain.NftSpec) error {
	seen := make(map[string]int, len(nfts))
	for i, nft := range nfts {
		if err := nft.Validate(); err != nil {
			return &domain.ConfigError{Field: fmt.Sprintf("nft[%d]", i), Err: err}
		}
		key := normalizeKey(nft.ForeignKey())
		if first, ok := seen[key]; ok {
			return domain.NewConfigError(fmt.Sprintf("nft[%d]", i), "eth-contract %s already used by nft[%d]", nft.ForeignContract, first)
		}
		seen[key] = i
	}
	return nil
}

func tokenInfo(decimals, ethContract, ethSymbol, name, symbol string) TokenInfo {
	return TokenInfo{
		Decimals:    hexString(decimals),
		EthContract: hexString(ethContract),
		EthSymbol:   hexString(ethSymbol),
		Name:        hexString(name),
		Symbol:      hexString(symbol),
	}
}

func hexString(s string) string {
	return common.Bytes2Hex([]byte(s))
}
