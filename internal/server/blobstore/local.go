package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/filex"
	"github.com/google/uuid"
)

const blobPerm = 0o640

// LocalStore keeps blobs as files under a root directory. References are
// absolute file paths.
type LocalStore struct {
	root string
}

// NewLocalStore returns a store rooted at root. The directory is created
// lazily on the first write.
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve blob root %q: %w", root, err)
	}
	return &LocalStore{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := filex.EnsureDir(s.root); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrIO, err)
	}

	ref := filepath.Join(s.root, uuid.NewString())
	if err := filex.WriteFileAtomic(ref, data, blobPerm); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return ref, nil
}

func (s *LocalStore) PutDerived(ctx context.Context, ref, suffix string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if suffix == "" || strings.ContainsAny(suffix, `/\`) {
		return "", fmt.Errorf("%w: invalid suffix %q", common.ErrValidation, suffix)
	}
	if !s.owns(ref) {
		return "", fmt.Errorf("%w: ref outside blob root", common.ErrorNotFound)
	}

	derived := DerivedRef(ref, suffix)
	if err := filex.WriteFileAtomic(derived, data, blobPerm); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return derived, nil
}

func (s *LocalStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.owns(ref) {
		return nil, common.ErrorNotFound
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return data, nil
}

func (s *LocalStore) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !s.owns(ref) {
		return false, nil
	}

	fi, err := os.Stat(ref)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", common.ErrIO, err)
	}
	return fi.Mode().IsRegular(), nil
}

// owns reports whether ref resolves to a file directly under the root.
func (s *LocalStore) owns(ref string) bool {
	if ref == "" {
		return false
	}
	return filepath.Dir(filepath.Clean(ref)) == s.root
}
