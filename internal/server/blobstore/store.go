// Package blobstore persists raw payloads independently of catalog metadata.
// A blob reference is the location of the payload; derived renditions live
// next to it at ref + "_" + suffix.
package blobstore

import "context"

// Store writes and reads blobs. Implementations never retry internally and
// wrap write/read failures in common.ErrIO.
type Store interface {
	// Put stores data under a freshly generated 128-bit random name.
	Put(ctx context.Context, data []byte) (string, error)

	// PutDerived stores data at DerivedRef(ref, suffix), overwriting any
	// previous content.
	PutDerived(ctx context.Context, ref, suffix string, data []byte) (string, error)

	// Get returns common.ErrorNotFound when ref does not exist.
	Get(ctx context.Context, ref string) ([]byte, error)

	// Exists reports whether ref is present.
	Exists(ctx context.Context, ref string) (bool, error)
}

// DerivedRef returns the location of a side artifact of ref.
func DerivedRef(ref, suffix string) string {
	return ref + "_" + suffix
}
