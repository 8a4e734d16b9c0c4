// Package client is a thin FilesService gRPC client.
package client

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/api"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestError is a rejected request, carrying the server's message
// (for example "Missing name" or "Parent not found").
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	token       string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.TokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.token != "" {
		ctx = withAccessToken(ctx, s.token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewFilesClient prepares a client for endpointURL. The connection is
// established lazily on the first call. Extra options are appended to the
// defaults (insecure transport, JSON codec, token interceptor).
func NewFilesClient(endpointURL, token string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, token: token}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if err := s.conn.Invoke(ctx, method, req, resp, grpc.CallContentSubtype(api.CodecName)); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.InvalidArgument:
		return &RequestError{Message: st.Message()}
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func (s *GRPCClient) PostFile(ctx context.Context, req *api.PostFileRequest) (*api.PostFileResponse, error) {
	resp := &api.PostFileResponse{}
	if err := s.invoke(ctx, api.MethodPostFile, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *GRPCClient) GetFile(ctx context.Context, id string) (*api.File, error) {
	resp := &api.GetFileResponse{}
	if err := s.invoke(ctx, api.MethodGetFile, &api.GetFileRequest{ID: id}, resp); err != nil {
		return nil, err
	}
	return resp.File, nil
}

func (s *GRPCClient) ListFiles(ctx context.Context, parentID, page string) ([]*api.File, error) {
	resp := &api.ListFilesResponse{}
	if err := s.invoke(ctx, api.MethodListFiles, &api.ListFilesRequest{ParentID: parentID, Page: page}, resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (s *GRPCClient) ListDeadJobs(ctx context.Context, limit int) ([]*api.DeadJob, error) {
	resp := &api.ListDeadJobsResponse{}
	if err := s.invoke(ctx, api.MethodListDeadJobs, &api.ListDeadJobsRequest{Limit: limit}, resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// PostUser registers an account. It needs no token.
func (s *GRPCClient) PostUser(ctx context.Context, email, password string) (*api.PostUserResponse, error) {
	resp := &api.PostUserResponse{}
	if err := s.invoke(ctx, api.MethodPostUser, &api.PostUserRequest{Email: email, Password: password}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Login exchanges credentials for an access token.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (string, error) {
	resp := &api.LoginResponse{}
	if err := s.invoke(ctx, api.MethodLogin, &api.LoginRequest{Email: email, Password: password}, resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Health asks the standard health service about FilesService.
func (s *GRPCClient) Health(ctx context.Context) (string, error) {
	resp, err := healthpb.NewHealthClient(s.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GetStatus().String(), nil
}
