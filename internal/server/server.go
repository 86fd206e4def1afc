package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/programtree/internal/config"
	"github.com/emrgen/programtree/internal/jobs"
	"github.com/gobuffalo/packr"
	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpclogrus "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpcctxtags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpcvalidator "github.com/grpc-ecosystem/go-grpc-middleware/validator"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Server represents the server
type Server struct {
	cfg *config.Config
}

// NewServer creates a new server
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.cfg); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// NewGrpcServer returns a grpc server serving the program tree service and the health service.
func NewGrpcServer(deps *Dependencies) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcmiddleware.ChainUnaryServer(
			grpcctxtags.UnaryServerInterceptor(),
			grpclogrus.UnaryServerInterceptor(logrus.NewEntry(logrus.StandardLogger())),
			grpcrecovery.UnaryServerInterceptor(grpcrecovery.WithRecoveryHandler(func(p interface{}) error {
				logrus.Errorf("grpc handler panicked: %v", p)
				return status.Errorf(codes.Internal, "panic: %v", p)
			})),
			grpcvalidator.UnaryServerInterceptor(),
			UnaryCorrelationInterceptor(),
			// log the request time
			UnaryGrpcRequestTimeInterceptor(),
		)),
	)

	RegisterProgramTreeServiceServer(grpcServer, NewProgramTreeServer(deps.Bus))

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	return grpcServer, healthServer
}

// Start starts the grpc and http servers
func Start(cfg *config.Config) error {
	var err error
	config.SetupLogging(cfg.Log)

	grpcPort := ":" + cfg.Server.GrpcPort
	httpPort := ":" + cfg.Server.HttpPort

	deps, err := NewDependencies(cfg, config.GetDb(cfg))
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logrus.Errorf("error closing dependencies: %v", err)
		}
	}()

	gl, err := net.Listen("tcp", grpcPort)
	if err != nil {
		return err
	}

	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	grpcServer, healthServer := NewGrpcServer(deps)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	apiMux := http.NewServeMux()
	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(openapiDocs)))
	restMux, err := NewRestHandler(NewProgramTreeServer(deps.Bus))
	if err != nil {
		return err
	}
	apiMux.Handle("/", restMux)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", CorrelationHeader},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(apiMux),
	}

	executor := jobs.NewTaskExecutor(nil, scheduledJobs(cfg, deps))
	executor.Run()
	defer executor.Stop()

	// make sure to wait for the servers to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	// Start the rest server
	go func() {
		defer wg.Done()
		logrus.Info("starting rest server on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting rest server: %v", err)
			}
		}
		logrus.Infof("rest server stopped")
	}()

	// Start the grpc server
	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting grpc server on: ", grpcPort)
		if err := grpcServer.Serve(gl); err != nil {
			logrus.Infof("grpc failed to start: %v", err)
		}
		logrus.Infof("grpc server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	err = restServer.Shutdown(context.Background())
	if err != nil {
		logrus.Errorf("error stopping rest server: %v", err)
	}

	wg.Wait()

	return nil
}

func scheduledJobs(cfg *config.Config, deps *Dependencies) []jobs.CronJob {
	if !cfg.Postpone.Enabled {
		return nil
	}
	logrus.Infof("postponing the trees of %d on %q", cfg.Postpone.Year, cfg.Postpone.Schedule)
	return []jobs.CronJob{
		jobs.NewPostponeTreesTask(cfg.Postpone.Schedule, cfg.Postpone.Year, deps.Store, deps.Bus),
	}
}
