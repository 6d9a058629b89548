package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain/domaintest"
	fsjson "github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testInput(t *testing.T) Input {
	t.Helper()

	nft := domain.NftSpec{ForeignContract: "0x06012c8cf97BEaD5deAe237070F9587f8E7A266d", ForeignSymbol: "CK", Symbol: "wCK", Name: "Wrapped CryptoKitties"}

	result := domain.NewDeploymentResult()
	require.NoError(t, result.RecordFungibleLedger(domaintest.Contract(1)))
	require.NoError(t, result.RecordNftLedger(nft.ForeignKey(), domaintest.Contract(2)))
	require.NoError(t, result.RecordQuorum(domaintest.Contract(3)))

	return Input{
		Network:     "ghostnet",
		ExplorerURL: "https://better-call.dev/ghostnet",
		Deployer:    domaintest.Implicit(0xaa),
		Tokens: []domain.TokenSpec{
			{ForeignContract: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", ForeignSymbol: "MKR", Symbol: "wMKR", Name: "Wrapped Maker", Decimals: 18},
		},
		Nfts:   []domain.NftSpec{nft},
		Result: result,
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	in := testInput(t)

	path, err := NewGenerator(dir, fsjson.NewWriter()).Generate(in)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "eth-contract: '0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2'")

	var decoded Model
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "ghostnet", decoded.Network)
	assert.Equal(t, domaintest.Contract(1), decoded.Contracts.FungibleLedger.Address)
	assert.Equal(t, "https://better-call.dev/ghostnet/"+domaintest.Contract(1).String(), decoded.Contracts.FungibleLedger.Explorer)
	require.Len(t, decoded.Contracts.NftLedgers, 1)
	assert.Equal(t, "wCK", decoded.Contracts.NftLedgers[0].Symbol)
	assert.Equal(t, domaintest.Contract(2), decoded.Contracts.NftLedgers[0].Address)
	assert.Empty(t, decoded.Contracts.Minter.Address)
	assert.Empty(t, decoded.Contracts.Minter.Explorer)
	assert.Equal(t, []Token{{EthContract: "0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2", Symbol: "wMKR", TokenID: 0}}, decoded.Tokens)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, testInput(t)))

	assert.Equal(t,
		"FA2 contract: "+domaintest.Contract(1).String()+"\n"+
			"NFT contract (wCK, 0x06012c8cf97BEaD5deAe237070F9587f8E7A266d): "+domaintest.Contract(2).String()+"\n"+
			"Quorum contract: "+domaintest.Contract(3).String()+"\n"+
			"Minter contract: <not originated>\n"+
			"Admin handoff: 0 proposed, confirmed=false\n",
		buf.String())
}

func TestNftLedgersSharingASymbol(t *testing.T) {
	nfts := []domain.NftSpec{
		{ForeignContract: "0x06012c8cf97BEaD5deAe237070F9587f8E7A266d", ForeignSymbol: "CK", Symbol: "wNFT", Name: "Wrapped CryptoKitties"},
		{ForeignContract: "0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D", ForeignSymbol: "BAYC", Symbol: "wNFT", Name: "Wrapped Apes"},
	}

	in := testInput(t)
	in.Nfts = nfts
	in.Result = domain.NewDeploymentResult()
	require.NoError(t, in.Result.RecordFungibleLedger(domaintest.Contract(1)))
	require.NoError(t, in.Result.RecordNftLedger(nfts[0].ForeignKey(), domaintest.Contract(2)))
	require.NoError(t, in.Result.RecordNftLedger(nfts[1].ForeignKey(), domaintest.Contract(3)))

	model := BuildModel(in)
	require.Len(t, model.Contracts.NftLedgers, 2)
	assert.Equal(t, domaintest.Contract(2), model.Contracts.NftLedgers[0].Address)
	assert.Equal(t, domaintest.Contract(3), model.Contracts.NftLedgers[1].Address)
	assert.Equal(t, SingleQuotedString(nfts[1].ForeignContract), model.Contracts.NftLedgers[1].EthContract)

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, in))
	assert.Contains(t, buf.String(), "NFT contract (wNFT, "+nfts[0].ForeignContract+"): "+domaintest.Contract(2).String())
	assert.Contains(t, buf.String(), "NFT contract (wNFT, "+nfts[1].ForeignContract+"): "+domaintest.Contract(3).String())
}

func TestExplorerLink(t *testing.T) {
	assert.Empty(t, ExplorerLink("", domaintest.Contract(1)))
	assert.Empty(t, ExplorerLink("https://better-call.dev/ghostnet", ""))
	assert.Equal(t, "https://better-call.dev/mainnet/"+domaintest.Contract(1).String(), ExplorerLink("https://better-call.dev/mainnet/", domaintest.Contract(1)))
}
