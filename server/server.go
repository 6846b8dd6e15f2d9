package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"DispatchEngine/config"
	"DispatchEngine/container"
	"DispatchEngine/log"
	"DispatchEngine/metrics"
	"DispatchEngine/pool"

	"github.com/docker/docker/client"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

type Server struct {
	cfg *config.Config

	listener   net.Listener
	grpcServer *grpc.Server
	httpServer *http.Server

	pool      pool.WorkerPool[*container.ExecutionRequest, *container.ExecutionResult]
	workerSet *container.WorkerSet
	metrics   *metrics.Metrics
}

func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// NewWithPool wires a server around a caller-provided pool, bypassing the
// Docker backend entirely.
func NewWithPool(cfg *config.Config, p pool.WorkerPool[*container.ExecutionRequest, *container.ExecutionResult]) *Server {
	s := New(cfg)
	s.pool = p
	s.bind()
	return s
}

// Initialize builds the Docker-backed worker pool and the listeners. The
// worker image is built first when a build context is configured.
func (s *Server) Initialize(ctx context.Context) error {
	log.L().Debug("Initializing server", zap.String("listenAddress", s.cfg.Server.ListenAddress))

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}

	if s.cfg.Docker.BuildContext != "" {
		if err := container.BuildImage(ctx, cli, s.cfg.Docker.BuildContext, s.cfg.Docker.Image); err != nil {
			return fmt.Errorf("failed to build worker image: %w", err)
		}
	}

	s.workerSet = container.NewWorkerSet(cli, s.cfg.Docker.Image)
	p, err := pool.New(s.workerSet.Factory(ctx), s.cfg.Pool.Size)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	s.pool = p
	s.bind()

	listener, err := net.Listen("tcp", s.cfg.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", s.cfg.Server.ListenAddress, err)
	}
	s.listener = listener

	return nil
}

func (s *Server) bind() {
	s.metrics = metrics.New(
		func() float64 { return float64(s.pool.QueueDepth()) },
		func() float64 { return float64(s.pool.InFlight()) },
	)
	s.grpcServer = grpc.NewServer()
	s.grpcServer.RegisterService(&serviceDesc, s)
}

// Serve blocks serving gRPC on the configured listener. The metrics
// endpoint runs on its own listener when configured.
func (s *Server) Serve() error {
	log.L().Info("Starting server",
		zap.String("listenAddress", s.cfg.Server.ListenAddress),
		zap.Int("poolSize", s.pool.Size()))

	if s.cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		s.httpServer = &http.Server{Addr: s.cfg.Server.MetricsAddress, Handler: mux}
		go func() {
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.L().Error("Metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	return s.grpcServer.Serve(s.listener)
}

// ServeListener serves gRPC on lis; used by tests and embedders.
func (s *Server) ServeListener(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Shutdown stops accepting RPCs, lets in-flight tasks settle within ctx,
// then tears the pool and its containers down.
func (s *Server) Shutdown(ctx context.Context) error {
	log.L().Info("Shutting down server")

	s.grpcServer.GracefulStop()

	if err := s.pool.Drain(ctx); err != nil {
		log.L().Warn("Pool did not drain before deadline", zap.Error(err))
	}
	s.pool.Stop()

	var err error
	if s.workerSet != nil {
		err = s.workerSet.Close(ctx)
	}
	if s.httpServer != nil {
		if herr := s.httpServer.Shutdown(ctx); herr != nil && err == nil {
			err = herr
		}
	}
	return err
}
