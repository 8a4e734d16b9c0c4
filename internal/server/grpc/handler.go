package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/filesmanager/internal/api"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/pipeline"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC status codes. Unexpected errors are
// reported as Internal without their message.
func toStatus(err error) error {
	switch {
	case errors.Is(err, common.ErrMissingName):
		return status.Error(codes.InvalidArgument, "Missing name")
	case errors.Is(err, common.ErrMissingType):
		return status.Error(codes.InvalidArgument, "Missing type")
	case errors.Is(err, common.ErrMissingData):
		return status.Error(codes.InvalidArgument, "Missing data")
	case errors.Is(err, common.ErrParentNotFound):
		return status.Error(codes.InvalidArgument, "Parent not found")
	case errors.Is(err, common.ErrParentNotFolder):
		return status.Error(codes.InvalidArgument, "Parent is not a folder")
	case errors.Is(err, common.ErrMissingEmail):
		return status.Error(codes.InvalidArgument, "Missing email")
	case errors.Is(err, common.ErrMissingPassword):
		return status.Error(codes.InvalidArgument, "Missing password")
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.InvalidArgument, "Already exist")
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "Not found")
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, "Unauthorized")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Internal, "internal error")
}

func toAPIFile(f *models.File) *api.File {
	return &api.File{
		ID:        f.ID,
		UserID:    f.OwnerID,
		Name:      f.Name,
		Type:      string(f.Type),
		IsPublic:  f.IsPublic,
		ParentID:  f.ParentID,
		LocalPath: f.BlobRef,
		CreatedAt: f.CreatedAt,
	}
}

func (s *GRPCServer) requester(ctx context.Context) (string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "Unauthorized")
	}
	return userID, nil
}

func (s *GRPCServer) PostFile(ctx context.Context, req *api.PostFileRequest) (*api.PostFileResponse, error) {
	userID, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.uploader.Upload(ctx, services.UploadRequest{
		OwnerID:  userID,
		Name:     req.Name,
		Type:     models.FileType(req.Type),
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			s.logger.Error(ctx, "upload failed", "user_id", userID, "error", err)
		}
		return nil, st
	}

	s.logger.Info(ctx, "File uploaded", "file_id", res.File.ID, "type", res.File.Type)
	return &api.PostFileResponse{
		File:            toAPIFile(res.File),
		ThumbnailQueued: res.ThumbnailQueued,
		Warnings:        res.Warnings,
	}, nil
}

func (s *GRPCServer) GetFile(ctx context.Context, req *api.GetFileRequest) (*api.GetFileResponse, error) {
	userID, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}

	f, err := s.catalog.GetByID(ctx, req.ID, userID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.GetFileResponse{File: toAPIFile(f)}, nil
}

func (s *GRPCServer) ListFiles(ctx context.Context, req *api.ListFilesRequest) (*api.ListFilesResponse, error) {
	userID, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}

	page := services.ParsePage(req.Page)
	list, err := s.catalog.List(ctx, userID, req.ParentID, page, s.catalog.PageSize())
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]*api.File, 0, len(list))
	for _, f := range list {
		out = append(out, toAPIFile(f))
	}
	return &api.ListFilesResponse{Files: out}, nil
}

// ListDeadJobs returns the caller's thumbnail jobs that exhausted their
// retry budget.
func (s *GRPCServer) ListDeadJobs(ctx context.Context, req *api.ListDeadJobsRequest) (*api.ListDeadJobsResponse, error) {
	userID, err := s.requester(ctx)
	if err != nil {
		return nil, err
	}

	dead, err := pipeline.DeadJobs(ctx, s.queue, userID, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}

	out := make([]*api.DeadJob, 0, len(dead))
	for _, j := range dead {
		out = append(out, &api.DeadJob{
			ID:        j.ID,
			FileID:    j.Payload.FileID,
			UserID:    j.Payload.OwnerID,
			Attempts:  j.Attempts,
			LastError: j.LastError,
			UpdatedAt: j.UpdatedAt,
		})
	}
	return &api.ListDeadJobsResponse{Jobs: out}, nil
}

func (s *GRPCServer) PostUser(ctx context.Context, req *api.PostUserRequest) (*api.PostUserResponse, error) {
	u, err := s.users.Register(ctx, req.Email, req.Password)
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			s.logger.Error(ctx, "registration failed", "error", err)
		}
		return nil, st
	}

	s.logger.Info(ctx, "User registered", "user_id", u.ID)
	return &api.PostUserResponse{ID: u.ID, Email: u.Email}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	token, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		st := toStatus(err)
		if status.Code(st) == codes.Internal {
			s.logger.Error(ctx, "login failed", "error", err)
		}
		return nil, st
	}

	return &api.LoginResponse{Token: token}, nil
}
