package server

import (
	"context"
	"errors"
	"time"

	"DispatchEngine/container"
	"DispatchEngine/log"
	"DispatchEngine/pool"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Submit implements EngineServer. Each request becomes one pool task; the
// RPC blocks until that task's future settles or the caller gives up.
func (s *Server) Submit(ctx context.Context, request *JobRequest) (*JobResponse, error) {
	if request.Script == "" {
		return nil, status.Error(codes.InvalidArgument, "script must not be empty")
	}

	taskID := uuid.New()
	log.L().Debug("Received job submission", zap.String("taskID", taskID.String()))
	s.metrics.TasksSubmitted.Inc()
	start := time.Now()

	future := s.pool.Submit(ctx, &container.ExecutionRequest{
		Script: request.Script,
		Env:    request.Env,
	})

	result, err := future.Await(ctx)
	if err != nil {
		s.metrics.TasksFailed.Inc()
		log.L().Error("Task failed", zap.Error(err), zap.String("taskID", taskID.String()))
		switch {
		case errors.Is(err, pool.ErrPoolStopped):
			return nil, status.Error(codes.Unavailable, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, status.FromContextError(err).Err()
		default:
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	s.metrics.TasksCompleted.Inc()
	s.metrics.TaskDuration.Observe(time.Since(start).Seconds())
	log.L().Debug("Task completed",
		zap.String("taskID", taskID.String()),
		zap.Int("exitCode", result.ExitCode))

	return &JobResponse{
		ID:       taskID.String(),
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
	}, nil
}
