// Package models defines server-side data models persisted in the database.
package models

import "time"

// FileType enumerates the kinds of catalog records.
type FileType string

const (
	FileTypeFolder FileType = "folder"
	FileTypeFile   FileType = "file"
	FileTypeImage  FileType = "image"
)

// Valid reports whether t is one of the allowed file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

// HasContent reports whether records of this type reference a blob.
func (t FileType) HasContent() bool {
	return t == FileTypeFile || t == FileTypeImage
}

// File is a catalog record describing either a folder or stored content.
// The content itself lives in the blob store and is referenced by BlobRef.
type File struct {
	// ID is assigned once by the catalog and never reused.
	ID string `json:"id"`
	// OwnerID is the user who uploaded the file.
	OwnerID string `json:"userId"`
	Name    string `json:"name"`
	// Type is immutable after creation.
	Type     FileType `json:"type"`
	IsPublic bool     `json:"isPublic"`
	// ParentID is common.RootParentID or the id of an existing folder.
	ParentID string `json:"parentId"`
	// BlobRef is empty for folders and set for files and images.
	BlobRef   string    `json:"localPath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsFolder reports whether the record is a folder.
func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

// VisibleTo reports whether requesterID may read the record.
func (f *File) VisibleTo(requesterID string) bool {
	return f.IsPublic || f.OwnerID == requesterID
}
