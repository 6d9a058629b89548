package output

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"

	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem"
	"gopkg.in/yaml.v3"
)

const FileName = "output.yaml"

type (
	// Input is everything the output describes.
	Input struct {
		Network     string
		ExplorerURL string
		Deployer    domain.Address
		Tokens      []domain.TokenSpec
		Nfts        []domain.NftSpec
		Result      *domain.DeploymentResult
	}

	Generator struct {
		dir    string
		writer filesystem.Writer
	}
)

func NewGenerator(dir string, writer filesystem.Writer) *Generator {
	return &Generator{dir: dir, writer: writer}
}

// Generate writes output.yaml and returns its path.
func (g *Generator) Generate(in Input) (string, error) {
	data, err := yaml.Marshal(BuildModel(in))
	if err != nil {
		return "", fmt.Errorf("could not marshal output model: %w", err)
	}

	path := filepath.Join(g.dir, FileName)
	if err := g.writer.WriteBytes(path, data); err != nil {
		return "", fmt.Errorf("could not write output file: %w", err)
	}

	return path, nil
}

func BuildModel(in Input) Model {
	result := in.Result
	if result == nil {
		result = domain.NewDeploymentResult()
	}

	model := Model{
		Network:  in.Network,
		Deployer: in.Deployer,
		Contracts: Contracts{
			FungibleLedger: contract(in.ExplorerURL, result.FungibleLedger),
			Quorum:         contract(in.ExplorerURL, result.Quorum),
			Minter:         contract(in.ExplorerURL, result.Minter),
		},
		Handoff: Handoff{
			Proposed:  append([]Address{}, result.AdminProposed...),
			Confirmed: result.AdminConfirmed,
		},
	}

	for _, nft := range in.Nfts {
		addr, ok := result.NftLedgers[nft.ForeignKey()]
		if !ok {
			continue
		}
		model.Contracts.NftLedgers = append(model.Contracts.NftLedgers, NftLedger{
			EthContract: SingleQuotedString(nft.ForeignContract),
			Symbol:      nft.Symbol,
			Contract:    contract(in.ExplorerURL, addr),
		})
	}

	for i, token := range in.Tokens {
		model.Tokens = append(model.Tokens, Token{
			EthContract: SingleQuotedString(token.ForeignContract),
			Symbol:      token.Symbol,
			TokenID:     i,
		})
	}

	return model
}

// ExplorerLink returns the explorer page of addr, or "" without an explorer.
func ExplorerLink(explorerURL string, addr domain.Address) string {
	if explorerURL == "" || addr == "" {
		return ""
	}
	link, err := url.JoinPath(explorerURL, addr.String())
	if err != nil {
		return ""
	}
	return link
}

// PrintSummary writes a human readable list of the deployed contracts.
func PrintSummary(w io.Writer, in Input) error {
	m := BuildModel(in)

	lines := []string{
		fmt.Sprintf("FA2 contract: %s", orPending(m.Contracts.FungibleLedger.Address)),
	}

	for _, nft := range m.Contracts.NftLedgers {
		lines = append(lines, fmt.Sprintf("NFT contract (%s, %s): %s", nft.Symbol, nft.EthContract, nft.Address))
	}

	lines = append(lines,
		fmt.Sprintf("Quorum contract: %s", orPending(m.Contracts.Quorum.Address)),
		fmt.Sprintf("Minter contract: %s", orPending(m.Contracts.Minter.Address)),
		fmt.Sprintf("Admin handoff: %d proposed, confirmed=%t", len(m.Handoff.Proposed), m.Handoff.Confirmed),
	)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func contract(explorerURL string, addr domain.Address) Contract {
	return Contract{Address: addr, Explorer: ExplorerLink(explorerURL, addr)}
}

func orPending(addr domain.Address) string {
	if addr == "" {
		return "<not originated>"
	}
	return addr.String()
}
