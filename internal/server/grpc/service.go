package grpc

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/api"
	"google.golang.org/grpc"
)

// FilesServer is the server API of FilesService.
type FilesServer interface {
	PostFile(context.Context, *api.PostFileRequest) (*api.PostFileResponse, error)
	GetFile(context.Context, *api.GetFileRequest) (*api.GetFileResponse, error)
	ListFiles(context.Context, *api.ListFilesRequest) (*api.ListFilesResponse, error)
	ListDeadJobs(context.Context, *api.ListDeadJobsRequest) (*api.ListDeadJobsResponse, error)
	PostUser(context.Context, *api.PostUserRequest) (*api.PostUserResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.LoginResponse, error)
}

func unaryHandler[Req, Resp any](fullMethod string, call func(FilesServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FilesServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FilesServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*FilesServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PostFile", Handler: unaryHandler(api.MethodPostFile, FilesServer.PostFile)},
		{MethodName: "GetFile", Handler: unaryHandler(api.MethodGetFile, FilesServer.GetFile)},
		{MethodName: "ListFiles", Handler: unaryHandler(api.MethodListFiles, FilesServer.ListFiles)},
		{MethodName: "ListDeadJobs", Handler: unaryHandler(api.MethodListDeadJobs, FilesServer.ListDeadJobs)},
		{MethodName: "PostUser", Handler: unaryHandler(api.MethodPostUser, FilesServer.PostUser)},
		{MethodName: "Login", Handler: unaryHandler(api.MethodLogin, FilesServer.Login)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "filesmanager",
}
