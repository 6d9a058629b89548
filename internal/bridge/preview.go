package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/compose-network/bridge-deployer/configs"
	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/gateway"
	fsjson "github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem/json"
	"github.com/spf13/cobra"
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Print the initial storage of every bridge contract",
	Long:  "Runs the deployment against a dry-run gateway and prints the storage each origination would carry",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("running storage preview command")

		return previewStorage(cmd.Context(), configs.Values.Deploy, cmd.OutOrStdout())
	},
}

type storagePreview struct {
	Contract string         `json:"contract"`
	Address  domain.Address `json:"address"`
	Storage  any            `json:"storage"`
}

// previewStorage writes the storage documents in origination order. Addresses
// are the ones a dry run derives, not the live ones.
func previewStorage(ctx context.Context, cfg configs.Deploy, w io.Writer) error {
	if cfg.Identity == "" {
		return domain.NewConfigError("identity", "an identity is required to build storage")
	}
	identity := domain.Address(cfg.Identity)

	plan, err := PlanFromConfig(cfg, identity, fsjson.NewReader())
	if err != nil {
		return fmt.Errorf("failed to build deployment plan: %w", err)
	}

	code := make(contracts.Set, len(contracts.Names))
	for _, name := range contracts.Names {
		code[name] = contracts.Code{Name: name}
	}

	dryRun := gateway.NewDryRun(identity, "", nil)
	if _, err := NewOrchestrator(dryRun, code, nil, cfg.ExplorerURL).Deploy(ctx, plan, nil); err != nil {
		return err
	}

	var previews []storagePreview
	for _, entry := range dryRun.Journal() {
		if entry.Kind != gateway.KindOrigination {
			continue
		}
		previews = append(previews, storagePreview{Contract: entry.Contract, Address: entry.Address, Storage: entry.Storage})
	}

	data, err := json.MarshalIndent(previews, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
