// Package docker runs benchmark programs inside a container image so every
// job sees the same toolchain and libraries regardless of the host.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"

	"github.com/signalnine/querymatrix/internal/process"
)

// containerWorkDir is where the host working directory is mounted.
const containerWorkDir = "/work"

// Runner implements process.Runner by starting one container per job. The
// host working directory is bind-mounted so relative dataset, test and
// output paths resolve the same way inside the container.
type Runner struct {
	Image       string
	HostDir     string
	Env         map[string]string
	CPULimit    float64
	MemoryLimit int64
	UserID      string
}

var _ process.Runner = (*Runner)(nil)

// ContainerCommand translates a host program path into the command run in
// the container. Relative paths stay relative to the mounted work dir.
func ContainerCommand(program string, args []string) []string {
	if !filepath.IsAbs(program) && !strings.HasPrefix(program, ".") && strings.Contains(program, "/") {
		program = "./" + program
	}
	return append([]string{program}, args...)
}

func (r *Runner) Run(ctx context.Context, program string, args []string) (*process.Result, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	hostDir := r.HostDir
	if hostDir == "" {
		if hostDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolving work dir: %w", err)
		}
	}
	hostDir, err = filepath.Abs(hostDir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}

	envSlice := make([]string, 0, len(r.Env))
	for k, v := range r.Env {
		envSlice = append(envSlice, k+"="+v)
	}
	sort.Strings(envSlice)

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: hostDir,
			Target: containerWorkDir,
		}},
		Init: &initTrue,
	}
	if r.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(r.CPULimit * 1e9)
	}
	if r.MemoryLimit > 0 {
		hostCfg.Memory = r.MemoryLimit
	}

	containerCfg := &container.Config{
		Image:      r.Image,
		Cmd:        ContainerCommand(program, args),
		Env:        envSlice,
		WorkingDir: containerWorkDir,
		Labels:     map[string]string{"querymatrix": "true"},
	}
	if r.UserID != "" {
		containerCfg.User = r.UserID
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	start := time.Now()
	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitResult := cli.ContainerWait(ctx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	errCh, resCh := waitResult.Error, waitResult.Result
	for {
		select {
		case err := <-errCh:
			if err == nil {
				errCh = nil
				continue
			}
			cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("waiting for container: %w", ctxErr)
			}
			return nil, fmt.Errorf("waiting for container: %w", err)
		case status := <-resCh:
			return &process.Result{
				ExitCode: int(status.StatusCode),
				Stderr:   containerStderr(cli, containerID),
				Duration: time.Since(start),
			}, nil
		}
	}
}

func containerStderr(cli *client.Client, containerID string) string {
	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStderr: true, Tail: "50"})
	if err != nil || logReader == nil {
		return ""
	}
	defer logReader.Close()
	return demuxStderr(logReader)
}

// demuxStderr extracts the stderr frames from a non-TTY container log
// stream. Output up to a malformed frame is kept.
func demuxStderr(r io.Reader) string {
	var stderr bytes.Buffer
	stdcopy.StdCopy(io.Discard, &stderr, r)
	return stderr.String()
}
