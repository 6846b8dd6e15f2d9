package container

import (
	"context"
	"fmt"
	"sync"

	"DispatchEngine/log"
	"DispatchEngine/pool"

	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExecutionRequest is the payload a Worker accepts: a shell script and the
// environment it runs with.
type ExecutionRequest struct {
	Script string
	Env    []string
}

// ExecutionResult is the completed outcome of an ExecutionRequest. A
// nonzero exit code is a valid result; only infrastructure problems (the
// daemon, the exec transport) surface as task errors.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Worker executes each payload inside its own dedicated, long-lived
// container. Isolation between workers is the container boundary.
type Worker struct {
	id          int
	cli         *client.Client
	containerID string
}

// WorkerSet creates and tracks the dedicated containers backing a pool, so
// they can be torn down together on shutdown.
type WorkerSet struct {
	cli   *client.Client
	image string

	mu      sync.Mutex
	workers []*Worker
}

func NewWorkerSet(cli *client.Client, image string) *WorkerSet {
	return &WorkerSet{cli: cli, image: image}
}

// Factory returns a pool.WorkerFactory that creates and starts one
// container per pool slot. ctx bounds container creation only.
func (s *WorkerSet) Factory(ctx context.Context) pool.WorkerFactory[*ExecutionRequest, *ExecutionResult] {
	return func(id int) (pool.Worker[*ExecutionRequest, *ExecutionResult], error) {
		name := fmt.Sprintf("dispatch-worker-%d-%s", id, uuid.NewString()[:8])

		log.L().Debug("Creating worker container", zap.Int("workerID", id), zap.String("name", name))
		containerID, err := createContainer(ctx, s.cli, s.image, name)
		if err != nil {
			return nil, fmt.Errorf("creating container for worker %d: %w", id, err)
		}
		if err := startContainer(ctx, s.cli, containerID); err != nil {
			_ = removeContainer(ctx, s.cli, containerID)
			return nil, fmt.Errorf("starting container for worker %d: %w", id, err)
		}

		w := &Worker{id: id, cli: s.cli, containerID: containerID}
		s.mu.Lock()
		s.workers = append(s.workers, w)
		s.mu.Unlock()
		return w, nil
	}
}

// Close stops and removes every container the set created. Call after the
// pool has drained; a worker mid-task loses its container.
func (s *WorkerSet) Close(ctx context.Context) error {
	s.mu.Lock()
	workers := s.workers
	s.workers = nil
	s.mu.Unlock()

	var firstErr error
	for _, w := range workers {
		if err := stopContainer(ctx, s.cli, w.containerID); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := removeContainer(ctx, s.cli, w.containerID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Post implements pool.Worker. The execution runs on its own goroutine and
// reports through done exactly once.
func (w *Worker) Post(ctx context.Context, payload *ExecutionRequest, done func(*ExecutionResult, error)) {
	go func() {
		done(w.execute(ctx, payload))
	}()
}

func (w *Worker) execute(ctx context.Context, payload *ExecutionRequest) (*ExecutionResult, error) {
	log.L().Debug("Writing job script to container", zap.Int("workerID", w.id))
	err := writeTextToContainer(ctx, w.cli, w.containerID, workerWorkingDirectory, jobScriptFileName, payload.Script, 0o755)
	if err != nil {
		return nil, fmt.Errorf("writing job script: %w", err)
	}

	log.L().Debug("Executing job script", zap.Int("workerID", w.id))
	result, err := execScript(ctx, w.cli, w.containerID, jobScriptPath, payload.Env)
	if err != nil {
		return nil, fmt.Errorf("executing job script: %w", err)
	}

	return &ExecutionResult{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout.String(),
		Stderr:   result.Stderr.String(),
	}, nil
}
