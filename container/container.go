package container

import (
	"archive/tar"
	"bytes"
	"context"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// ExecResult is the outcome of one script execution inside a container. A
// nonzero exit code is a result, not an error.
type ExecResult struct {
	ExitCode int
	Stdout   *bytes.Buffer
	Stderr   *bytes.Buffer
}

func createContainer(ctx context.Context, cli *client.Client, image, name string) (string, error) {
	response, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        image,
		WorkingDir:   workerWorkingDirectory,
		Tty:          false,
		AttachStdout: true,
		AttachStderr: true,
		AttachStdin:  true,
	}, nil, nil, nil, name)
	if err != nil {
		return "", err
	}
	return response.ID, nil
}

func startContainer(ctx context.Context, cli *client.Client, containerID string) error {
	return cli.ContainerStart(ctx, containerID, container.StartOptions{})
}

func stopContainer(ctx context.Context, cli *client.Client, containerID string) error {
	return cli.ContainerStop(ctx, containerID, container.StopOptions{})
}

func removeContainer(ctx context.Context, cli *client.Client, containerID string) error {
	return cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true})
}

// writeTextToContainer copies a single text file into the container at
// path/fileName. CopyToContainer consumes a tar stream, so the file is
// wrapped in a one-entry archive.
func writeTextToContainer(ctx context.Context, cli *client.Client, containerID, path, fileName, content string, mode int64) error {
	tarBuffer := bytes.NewBuffer(nil)
	tarWriter := tar.NewWriter(tarBuffer)

	header := &tar.Header{
		Name: fileName,
		Mode: mode,
		Size: int64(len(content)),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	if _, err := tarWriter.Write([]byte(content)); err != nil {
		return err
	}
	if err := tarWriter.Close(); err != nil {
		return err
	}

	return cli.CopyToContainer(ctx, containerID, path, tarBuffer, container.CopyToContainerOptions{})
}

// execScript runs a script inside the container and waits for it to finish,
// collecting stdout, stderr and the exit code.
func execScript(ctx context.Context, cli *client.Client, containerID, scriptPath string, env []string) (*ExecResult, error) {
	execCreateResponse, err := cli.ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          []string{"/bin/sh", scriptPath},
		Env:          env,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	})
	if err != nil {
		return nil, err
	}

	hijackedResponse, err := cli.ContainerExecAttach(ctx, execCreateResponse.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, err
	}
	defer hijackedResponse.Close()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	if _, err = stdcopy.StdCopy(stdout, stderr, hijackedResponse.Reader); err != nil {
		return nil, err
	}

	// The exec has finished once its output stream closes; only then is
	// the exit code meaningful.
	execInspectResponse, err := cli.ContainerExecInspect(ctx, execCreateResponse.ID)
	if err != nil {
		return nil, err
	}

	return &ExecResult{
		ExitCode: execInspectResponse.ExitCode,
		Stdout:   stdout,
		Stderr:   stderr,
	}, nil
}
