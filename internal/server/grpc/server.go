// Package grpc exposes the catalog, the uploader, the dead job listing and
// account registration as the FilesService gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/filesmanager/internal/api"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Uploader accepts uploads.
type Uploader interface {
	Upload(ctx context.Context, req services.UploadRequest) (*services.UploadResult, error)
}

// Catalog serves reads.
type Catalog interface {
	GetByID(ctx context.Context, id, requesterID string) (*models.File, error)
	List(ctx context.Context, ownerID, parentID string, page, pageSize int) ([]*models.File, error)
	PageSize() int
}

// Users registers accounts and logs them in.
type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type GRPCServer struct {
	address  string
	catalog  Catalog
	uploader Uploader
	queue    jobs.Repository
	users    Users
	auth     auth.Store
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, catalog Catalog, uploader Uploader, queue jobs.Repository, users Users, store auth.Store) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		catalog:  catalog,
		uploader: uploader,
		queue:    queue,
		users:    users,
		auth:     store,
	}
}

func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	srv.RegisterService(&serviceDesc, s)

	hs := health.NewServer()
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
