package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

type RunOptions struct {
	Image      string
	Cmd        []string
	Env        []string
	Volumes    map[string]string // host:container
	WorkDir    string
	User       string
	AutoRemove bool
	StreamLogs bool
	CaptureOut bool
}

// Binds renders the volume mounts in a stable order.
func (o RunOptions) Binds() []string {
	binds := make([]string, 0, len(o.Volumes))
	for host, containerPath := range o.Volumes {
		binds = append(binds, fmt.Sprintf("%s:%s", host, containerPath))
	}
	sort.Strings(binds)
	return binds
}

// Run runs a container to completion and returns its stdout when CaptureOut
// is set.
func (c *Client) Run(ctx context.Context, opts RunOptions) (string, error) {
	config := &container.Config{
		Image:      opts.Image,
		Cmd:        opts.Cmd,
		Env:        opts.Env,
		WorkingDir: opts.WorkDir,
		User:       opts.User,
	}

	hostConfig := &container.HostConfig{
		AutoRemove: opts.AutoRemove,
		Binds:      opts.Binds(),
	}

	resp, err := c.cli.ContainerCreate(ctx, config, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}

	containerID := resp.ID
	c.logger.With("image", opts.Image, "container_id", containerID).Debug("container created")

	defer func() {
		if err != nil && !opts.AutoRemove {
			_ = c.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
		}
	}()

	// Attach before starting, auto-removed containers are gone once they exit.
	var stdout, stderr bytes.Buffer
	copied := make(chan struct{})

	attachResp, err := c.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to attach to container: %w", err)
	}
	defer attachResp.Close()

	go func() {
		defer close(copied)
		var outWriter, errWriter io.Writer = &stdout, &stderr
		if opts.StreamLogs {
			outWriter = io.MultiWriter(os.Stdout, &stdout)
			errWriter = io.MultiWriter(os.Stderr, &stderr)
		}
		_, _ = stdcopy.StdCopy(outWriter, errWriter, attachResp.Reader)
	}()

	if err = c.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}

	statusCh, errCh := c.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case waitErr := <-errCh:
		if waitErr != nil {
			err = waitErr
			return "", fmt.Errorf("error waiting for container: %w", waitErr)
		}
	case status := <-statusCh:
		select {
		case <-copied:
		case <-ctx.Done():
		}
		if status.StatusCode != 0 {
			err = fmt.Errorf("container exited with code %d", status.StatusCode)
			if output := stdout.String() + stderr.String(); output != "" {
				return "", fmt.Errorf("%w: %s", err, output)
			}
			return "", err
		}
	}

	if opts.CaptureOut {
		return stdout.String(), nil
	}

	return "", nil
}
