package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/compose-network/bridge-deployer/configs"
	"github.com/compose-network/bridge-deployer/internal/bridge/contracts"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/docker"
	"github.com/compose-network/bridge-deployer/internal/bridge/infra/git"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile the bridge contracts from their LIGO sources",
	Long:  "Compiles the LIGO sources inside the LIGO docker image and writes one Michelson .tz file per contract",
	RunE: func(cmd *cobra.Command, args []string) error {
		slog.Info("running contract compilation command")

		if err := configs.Values.Compile.Validate(); err != nil {
			return err
		}

		if err := runCompile(cmd.Context(), configs.Values.Compile); err != nil {
			return fmt.Errorf("contract compilation failed: %w", err)
		}

		slog.Info("contract compilation completed successfully")

		return nil
	},
}

func runCompile(ctx context.Context, cfg configs.Compile) error {
	sources, err := compileSources(cfg)
	if err != nil {
		return err
	}

	if cfg.Repository.URL != "" {
		repo := git.Repository{URL: cfg.Repository.URL, Ref: cfg.Repository.Ref}
		if err := git.NewCloner().Clone(ctx, repo, cfg.SourcesDir); err != nil {
			return fmt.Errorf("failed to clone ligo sources: %w", err)
		}
	}

	cli, err := docker.New()
	if err != nil {
		return fmt.Errorf("failed to create docker client: %w", err)
	}
	defer cli.Close()

	if cfg.Dockerfile != "" {
		contextDir := filepath.Dir(cfg.Dockerfile)
		if err := cli.BuildImage(ctx, filepath.Base(cfg.Dockerfile), contextDir, cfg.Image); err != nil {
			return fmt.Errorf("failed to build ligo image: %w", err)
		}
	}

	compiler := contracts.NewCompiler(cli, cfg.Image, cfg.SourcesDir, cfg.OutputDir)

	return compiler.Compile(ctx, sources)
}
