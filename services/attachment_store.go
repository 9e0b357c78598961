package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrInvalidAttachmentPath = errors.New("invalid attachment path")

// AttachmentStore stores and removes named binary blobs.
type AttachmentStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// LocalAttachmentStore keeps attachments under a root directory. Names are
// slash separated and relative to the root, e.g. "data/image_x.png".
type LocalAttachmentStore struct {
	root string
}

func NewLocalAttachmentStore(root string) *LocalAttachmentStore {
	return &LocalAttachmentStore{root: root}
}

// Put writes a new blob. Existing blobs are never overwritten.
func (s *LocalAttachmentStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create attachment directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create attachment %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("failed to write attachment %s: %w", name, err)
	}
	return f.Close()
}

// Delete removes a blob. Missing blobs are not an error.
func (s *LocalAttachmentStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.Resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete attachment %s: %w", name, err)
	}
	return nil
}

// Resolve maps a stored name to a path under the root, rejecting escapes.
func (s *LocalAttachmentStore) Resolve(name string) (string, error) {
	slashed := strings.ReplaceAll(name, "\\", "/")
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidAttachmentPath, name)
		}
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+slashed), "/")
	if cleaned == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAttachmentPath, name)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}
