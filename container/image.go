package container

import (
	"archive/tar"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"DispatchEngine/log"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"go.uber.org/zap"
)

// BuildImage builds the worker execution image from a local build-context
// folder containing a Dockerfile.
func BuildImage(ctx context.Context, cli *client.Client, buildContextFolder, imageName string) error {
	log.L().Debug("Creating build context (tar archive)", zap.String("buildContextFolder", buildContextFolder))
	tarBuffer, err := createBuildContext(buildContextFolder)
	if err != nil {
		return fmt.Errorf("failed to create build context: %w", err)
	}

	log.L().Debug("Building worker image", zap.String("imageName", imageName))
	imageBuildResponse, err := cli.ImageBuild(ctx, tarBuffer, types.ImageBuildOptions{
		Dockerfile: "Dockerfile",
		Tags:       []string{imageName},
		Version:    types.BuilderV1,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to build worker image: %w", err)
	}
	defer imageBuildResponse.Body.Close()

	scanner := bufio.NewScanner(imageBuildResponse.Body)
	for scanner.Scan() {
		var message jsonmessage.JSONMessage
		if err := json.Unmarshal(scanner.Bytes(), &message); err != nil {
			return fmt.Errorf("failed to unmarshal build output: %w", err)
		}
		if message.Error != nil {
			return message.Error
		}
		if message.Stream != "" {
			log.L().Info(strings.ReplaceAll(message.Stream, "\n", ""))
		}
	}

	return scanner.Err()
}

// createBuildContext tars the build-context folder for the Docker daemon.
func createBuildContext(buildContextFolder string) (io.Reader, error) {
	buffer := new(bytes.Buffer)
	tarWriter := tar.NewWriter(buffer)

	err := filepath.Walk(buildContextFolder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relativePath, err := filepath.Rel(buildContextFolder, path)
		if err != nil {
			return err
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(relativePath)
		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tarWriter, file)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}

	return buffer, nil
}
