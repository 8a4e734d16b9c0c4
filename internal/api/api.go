// Package api defines the wire contract of the FilesService gRPC service:
// method names and JSON-encoded request/response messages shared by the
// server and the client.
package api

import "time"

const ServiceName = "filesmanager.FilesService"

const (
	MethodPostFile     = "/" + ServiceName + "/PostFile"
	MethodGetFile      = "/" + ServiceName + "/GetFile"
	MethodListFiles    = "/" + ServiceName + "/ListFiles"
	MethodListDeadJobs = "/" + ServiceName + "/ListDeadJobs"
	MethodPostUser     = "/" + ServiceName + "/PostUser"
	MethodLogin        = "/" + ServiceName + "/Login"
)

// PublicMethods are the FilesService calls served without an access token.
var PublicMethods = map[string]bool{
	MethodPostUser: true,
	MethodLogin:    true,
}

type PostUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PostUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the token to send in the x-token header.
type LoginResponse struct {
	Token string `json:"token"`
}

// File is the client view of a catalog record. LocalPath carries the blob
// reference and is omitted for folders.
type File struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	IsPublic  bool      `json:"isPublic"`
	ParentID  string    `json:"parentId"`
	LocalPath string    `json:"localPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostFileRequest uploads a folder, file or image. Data travels as base64 in
// JSON and is required for files and images. An empty ParentID means root.
type PostFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId,omitempty"`
	IsPublic bool   `json:"isPublic"`
	Data     []byte `json:"data,omitempty"`
}

type PostFileResponse struct {
	File            *File    `json:"file"`
	ThumbnailQueued bool     `json:"thumbnailQueued"`
	Warnings        []string `json:"warnings,omitempty"`
}

type GetFileRequest struct {
	ID string `json:"id"`
}

type GetFileResponse struct {
	File *File `json:"file"`
}

// ListFilesRequest mirrors the query string of a listing: Page is parsed
// leniently, anything that is not a non-negative integer means page 0.
type ListFilesRequest struct {
	ParentID string `json:"parentId,omitempty"`
	Page     string `json:"page,omitempty"`
}

type ListFilesResponse struct {
	Files []*File `json:"files"`
}

type ListDeadJobsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type DeadJob struct {
	ID        string    `json:"id"`
	FileID    string    `json:"fileId"`
	UserID    string    `json:"userId"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListDeadJobsResponse struct {
	Jobs []*DeadJob `json:"jobs"`
}
