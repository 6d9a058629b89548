package contracts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/compose-network/bridge-deployer/internal/bridge/infra/docker"
	"github.com/compose-network/bridge-deployer/internal/logger"
)

const (
	sourcesMountPath = "/contracts"
	outputMountPath  = "/out"
)

type (
	// ContainerRunner runs one-shot containers.
	ContainerRunner interface {
		ImageExists(ctx context.Context, imageName string) (bool, error)
		PullImage(ctx context.Context, imageName string) error
		Run(ctx context.Context, opts docker.RunOptions) (string, error)
	}

	// Source locates the LIGO entry file of a contract, relative to the
	// sources directory.
	Source struct {
		Name       Name
		File       string
		Entrypoint string
	}

	// Compiler compiles LIGO contracts to Michelson inside the LIGO image.
	Compiler struct {
		runner     ContainerRunner
		image      string
		sourcesDir string
		outputDir  string
		logger     *slog.Logger
	}
)

func NewCompiler(runner ContainerRunner, image, sourcesDir, outputDir string) *Compiler {
	return &Compiler{
		runner:     runner,
		image:      image,
		sourcesDir: sourcesDir,
		outputDir:  outputDir,
		logger:     logger.Named("contracts_compiler"),
	}
}

// Compile writes <name>.tz into the output directory for every source.
func (c *Compiler) Compile(ctx context.Context, sources []Source) error {
	c.logger.
		With("sources_dir", c.sourcesDir, "image", c.image).
		Info("starting contract compilation")

	if err := c.ensureImage(ctx); err != nil {
		return err
	}

	absSources, err := filepath.Abs(c.sourcesDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute sources path: %w", err)
	}
	absOutput, err := filepath.Abs(c.outputDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute output path: %w", err)
	}
	if err := os.MkdirAll(absOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, src := range sources {
		c.logger.With("name", src.Name, "file", src.File).Info("compiling contract")

		if _, err := c.runner.Run(ctx, docker.RunOptions{
			Image: c.image,
			Cmd:   compileArgs(src),
			Volumes: map[string]string{
				absSources: sourcesMountPath + ":ro",
				absOutput:  outputMountPath,
			},
			WorkDir:    sourcesMountPath,
			User:       fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
			AutoRemove: true,
		}); err != nil {
			return fmt.Errorf("failed to compile %s: %w", src.Name, err)
		}
	}

	c.logger.With("output_dir", absOutput).Info("contracts compiled successfully")

	return nil
}

func (c *Compiler) ensureImage(ctx context.Context) error {
	exists, err := c.runner.ImageExists(ctx, c.image)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}
	if exists {
		c.logger.With("image", c.image).Debug("ligo image already present")
		return nil
	}

	if err := c.runner.PullImage(ctx, c.image); err != nil {
		return fmt.Errorf("failed to pull ligo image: %w", err)
	}
	return nil
}

func compileArgs(src Source) []string {
	args := []string{
		"compile", "contract",
		sourcesMountPath + "/" + filepath.ToSlash(src.File),
		"--output-file", outputMountPath + "/" + src.Name.FileName(),
	}
	if src.Entrypoint != "" {
		args = append(args, "--entry-point", src.Entrypoint)
	}
	return args
}
