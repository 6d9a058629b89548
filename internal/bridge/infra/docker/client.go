package docker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/compose-network/bridge-deployer/internal/logger"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/moby/go-archive"
)

type Client struct {
	cli    *client.Client
	logger *slog.Logger
}

// New creates a Docker client from the environment.
func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, err
	}

	return &Client{cli: cli, logger: logger.Named("docker_client")}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// ImageExists checks if an image is present locally.
func (c *Client) ImageExists(ctx context.Context, imageName string) (bool, error) {
	_, err := c.cli.ImageInspect(ctx, imageName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// PullImage pulls imageName and fails if the registry reports an error in
// the progress stream.
func (c *Client) PullImage(ctx context.Context, imageName string) error {
	c.logger.With("image", imageName).Info("pulling docker image")

	resp, err := c.cli.ImagePull(ctx, imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer resp.Close()

	if err := c.consumeProgress(resp, "pull"); err != nil {
		return err
	}

	c.logger.With("image", imageName).Info("docker image pulled successfully")
	return nil
}

// BuildImage builds tag from the Dockerfile at dockerfilePath, relative to
// contextPath.
func (c *Client) BuildImage(ctx context.Context, dockerfilePath, contextPath, tag string) error {
	c.logger.With("tag", tag, "dockerfile", dockerfilePath).Info("building docker image")

	buildContext, err := archive.TarWithOptions(contextPath, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}
	defer buildContext.Close()

	resp, err := c.cli.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfilePath,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to build image: %w", err)
	}
	defer resp.Body.Close()

	if err := c.consumeProgress(resp.Body, "build"); err != nil {
		return err
	}

	c.logger.With("tag", tag).Info("docker image built successfully")
	return nil
}

func (c *Client) consumeProgress(r io.Reader, op string) error {
	scanner := bufio.NewScanner(r)
	var streamErr error
	for scanner.Scan() {
		line := scanner.Text()
		c.logger.Debug(line)

		var msg struct {
			Error       string `json:"error"`
			ErrorDetail struct {
				Message string `json:"message"`
			} `json:"errorDetail"`
		}
		if err := json.Unmarshal([]byte(line), &msg); err == nil && msg.Error != "" {
			streamErr = fmt.Errorf("%s failed: %s", op, msg.Error)
			c.logger.With("error", msg.Error).Error("docker " + op + " error")
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s output: %w", op, err)
	}

	return streamErr
}
