package server

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"DispatchEngine/config"
	"DispatchEngine/container"
	"DispatchEngine/pool"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type testBackend struct {
	server *Server
	pool   pool.WorkerPool[*container.ExecutionRequest, *container.ExecutionResult]
	client *Client
}

// startTestServer serves the dispatch service over an in-memory listener,
// with workers running fn instead of containers.
func startTestServer(t *testing.T, size int, fn pool.TaskFunction[*container.ExecutionRequest, *container.ExecutionResult]) *testBackend {
	t.Helper()

	p, err := pool.New(pool.FuncFactory(fn), size)
	if err != nil {
		t.Fatalf("pool.New failed: %v", err)
	}

	s := NewWithPool(config.Default(), p)
	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = s.ServeListener(lis)
	}()

	client, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		s.grpcServer.Stop()
		p.Stop()
	})

	return &testBackend{server: s, pool: p, client: client}
}

func echoBackend(_ context.Context, workerID int, req *container.ExecutionRequest) (*container.ExecutionResult, error) {
	return &container.ExecutionResult{
		ExitCode: 0,
		Stdout:   "ran: " + req.Script,
	}, nil
}

func TestSubmitRoundTrip(t *testing.T) {
	b := startTestServer(t, 2, echoBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	response, err := b.client.Submit(ctx, &JobRequest{Script: "echo hello"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if response.ID == "" {
		t.Error("response carries no task ID")
	}
	if response.ExitCode != 0 || response.Stdout != "ran: echo hello" {
		t.Errorf("response = %+v", response)
	}

	if got := testutil.ToFloat64(b.server.metrics.TasksCompleted); got != 1 {
		t.Errorf("completed counter = %v, want 1", got)
	}
}

func TestSubmitReportsNonZeroExit(t *testing.T) {
	b := startTestServer(t, 1, func(_ context.Context, _ int, req *container.ExecutionRequest) (*container.ExecutionResult, error) {
		return &container.ExecutionResult{ExitCode: 3, Stderr: "boom"}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	response, err := b.client.Submit(ctx, &JobRequest{Script: "exit 3"})
	if err != nil {
		t.Fatalf("a nonzero exit code must not be an RPC error, got %v", err)
	}
	if response.ExitCode != 3 || response.Stderr != "boom" {
		t.Errorf("response = %+v", response)
	}
}

func TestSubmitRejectsEmptyScript(t *testing.T) {
	b := startTestServer(t, 1, echoBackend)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := b.client.Submit(ctx, &JobRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", err)
	}
}

func TestSubmitSurfacesTaskFailure(t *testing.T) {
	b := startTestServer(t, 1, func(_ context.Context, _ int, _ *container.ExecutionRequest) (*container.ExecutionResult, error) {
		return nil, errors.New("daemon unreachable")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := b.client.Submit(ctx, &JobRequest{Script: "true"})
	if status.Code(err) != codes.Internal {
		t.Fatalf("want Internal, got %v", err)
	}

	// A failed task leaves the pool fully usable.
	if got := testutil.ToFloat64(b.server.metrics.TasksFailed); got != 1 {
		t.Errorf("failed counter = %v, want 1", got)
	}
}

func TestSubmitAfterPoolStopped(t *testing.T) {
	b := startTestServer(t, 1, echoBackend)
	b.pool.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := b.client.Submit(ctx, &JobRequest{Script: "true"})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("want Unavailable, got %v", err)
	}
}

func TestEnvIsForwardedToWorkers(t *testing.T) {
	var seen []string
	done := make(chan struct{})
	b := startTestServer(t, 1, func(_ context.Context, _ int, req *container.ExecutionRequest) (*container.ExecutionResult, error) {
		seen = req.Env
		close(done)
		return &container.ExecutionResult{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := b.client.Submit(ctx, &JobRequest{Script: "env", Env: []string{"A=1", "B=2"}}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	<-done
	if len(seen) != 2 || seen[0] != "A=1" || seen[1] != "B=2" {
		t.Errorf("worker saw env %v", seen)
	}
}
