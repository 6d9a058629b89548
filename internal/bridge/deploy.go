package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/compose-network/bridge-deployer/configs"
	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/domain"
	"github.com/compose-network/bridge-deployer/internal/bridge/gateway"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem"
	fsjson "github.com/compose-network/bridge-deployer/internal/bridge/infra/filesystem/json"
	"github.com/compose-network/bridge-deployer/internal/bridge/output"
	"github.com/compose-network/bridge-deployer/internal/bridge/state"
	"github.com/compose-network/bridge-deployer/internal/logger"
	"github.com/spf13/cobra"
)

const dryRunJournalFile = "dry-run.json"

// chainGateway is a gateway that can also name the account it submits from.
type chainGateway interface {
	gateway.Gateway
	gateway.IdentityProvider
}

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the bridge contracts",
	Long:  "Originates the ledgers, the quorum and the minter, then hands ledger administration to the minter",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("running bridge deployment command")

		if err := configs.Values.Deploy.Validate(); err != nil {
			return err
		}

		return runDeploy(cmd.Context(), configs.Values.Deploy, cmd.OutOrStdout())
	},
}

// runDeploy deploys the bridge and writes output.yaml. The output and the
// summary are written even when the deployment fails part way.
func runDeploy(ctx context.Context, cfg configs.Deploy, stdout io.Writer) error {
	log := logger.Named("bridge_deploy")
	reader, writer := fsjson.NewReader(), fsjson.NewWriter()

	stateManager := state.NewManager(cfg.StateDir, reader, writer)
	if err := stateManager.EnsureStateDir(); err != nil {
		return err
	}

	gw, closeGateway, err := newGateway(ctx, cfg, reader, writer)
	if err != nil {
		return err
	}
	defer closeGateway()

	identity, err := resolveIdentity(ctx, cfg, gw)
	if err != nil {
		return err
	}
	log.With("identity", identity, "target", cfg.Target).Info("deploying as identity")

	plan, err := PlanFromConfig(cfg, identity, reader)
	if err != nil {
		return fmt.Errorf("failed to build deployment plan: %w", err)
	}
	digest, err := plan.Digest()
	if err != nil {
		return err
	}

	prior, err := priorResult(stateManager, digest, cfg.Resume)
	if err != nil {
		return err
	}

	code, err := contracts.Load(cfg.ContractsDir)
	if err != nil {
		return err
	}

	orchestrator := NewOrchestrator(gw, code, stateManager.Recorder(digest), cfg.ExplorerURL)
	result, deployErr := orchestrator.Deploy(ctx, plan, prior)

	in := output.Input{
		Network:     cfg.Network,
		ExplorerURL: cfg.ExplorerURL,
		Deployer:    identity,
		Tokens:      plan.Tokens,
		Nfts:        plan.Nfts,
		Result:      result,
	}
	path, err := output.NewGenerator(cfg.OutputDir, writer).Generate(in)
	if err != nil {
		return errors.Join(deployErr, err)
	}
	log.With("path", path).Info("deployment output written")

	if err := output.PrintSummary(stdout, in); err != nil {
		return errors.Join(deployErr, fmt.Errorf("failed to print summary: %w", err))
	}

	return deployErr
}

func newGateway(ctx context.Context, cfg configs.Deploy, reader filesystem.Reader, writer filesystem.Writer) (chainGateway, func(), error) {
	switch cfg.Target {
	case configs.DeploymentTargetDryRun:
		journal := filepath.Join(cfg.StateDir, dryRunJournalFile)
		dryRun := gateway.NewDryRun(domain.Address(cfg.Identity), journal, writer)
		if cfg.Resume {
			if err := dryRun.Restore(reader); err != nil {
				return nil, nil, err
			}
		}
		return dryRun, func() {}, nil
	case configs.DeploymentTargetLive:
		rpcGateway, err := gateway.DialRPC(ctx, cfg.Gateway.URL, cfg.Gateway.CallTimeout)
		if err != nil {
			return nil, nil, err
		}
		if err := rpcGateway.WaitReady(ctx, cfg.Gateway.ReadyAttempts, cfg.Gateway.ReadyInterval); err != nil {
			rpcGateway.Close()
			return nil, nil, err
		}
		return rpcGateway, rpcGateway.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown deployment target: %s", cfg.Target)
	}
}

// resolveIdentity returns the configured identity, or asks the gateway for
// the account it submits from.
func resolveIdentity(ctx context.Context, cfg configs.Deploy, provider gateway.IdentityProvider) (domain.Address, error) {
	if cfg.Identity != "" {
		return domain.Address(cfg.Identity), nil
	}

	identity, err := provider.PublicKeyHash(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get identity from gateway: %w", err)
	}
	return identity, nil
}

// priorResult loads the saved deployment when resuming. Without resume a
// saved deployment is refused so that contracts are never originated twice.
func priorResult(manager *state.Manager, digest string, resume bool) (*domain.DeploymentResult, error) {
	log := logger.Named("bridge_deploy")

	if resume {
		prior, err := manager.LoadFor(digest)
		if errors.Is(err, state.ErrNoState) {
			log.Info("no saved deployment state, starting from the beginning")
			return nil, nil
		}
		return prior, err
	}

	_, err := manager.Load()
	switch {
	case errors.Is(err, state.ErrNoState):
		return nil, nil
	case err != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("'%s' already holds a deployment, resume it or remove the file", manager.Path())
	}
}
