package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/compose-network/bridge-deployer/internal/logger"
)

// Repository is a git repository pinned to a branch or tag.
type Repository struct {
	URL string
	Ref string
}

// Cloner performs shallow clones with the git binary.
type Cloner struct {
	binary string
	logger *slog.Logger
}

func NewCloner() *Cloner {
	return &Cloner{binary: "git", logger: logger.Named("git_cloner")}
}

// Clone clones repo into dest. A dest that already holds a checkout is left
// untouched; any other non-empty dest is an error.
func (c *Cloner) Clone(ctx context.Context, repo Repository, dest string) error {
	if repo.URL == "" {
		return errors.New("repository url is required")
	}

	if _, err := os.Stat(filepath.Join(dest, ".git")); err == nil {
		c.logger.With("path", dest).Info("repository already cloned, skipping")
		return nil
	}
	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return fmt.Errorf("'%s' is not empty and is not a git checkout", dest)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	c.logger.With("url", repo.URL, "ref", repo.Ref, "path", dest).Info("cloning repository")

	cmd := exec.CommandContext(ctx, c.binary, cloneArgs(repo, dest)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	c.logger.With("path", dest).Info("repository cloned successfully")
	return nil
}

func cloneArgs(repo Repository, dest string) []string {
	args := []string{"clone", "--depth", "1"}
	if repo.Ref != "" {
		args = append(args, "--branch", repo.Ref)
	}
	return append(args, repo.URL, dest)
}
