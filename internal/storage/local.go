package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"familyhub/pkg/types"
)

var ErrInvalidKey = errors.New("invalid storage key")

// LocalBackend keeps files on disk below root.
type LocalBackend struct {
	root string
}

func NewLocalBackend(root string) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}

	for _, f := range folders {
		if err := os.MkdirAll(filepath.Join(abs, string(f)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", f, err)
		}
	}

	return &LocalBackend{root: abs}, nil
}

// resolve maps a key onto a path inside root.
func (b *LocalBackend) resolve(key string) (string, error) {
	if key == "" || filepath.IsAbs(key) {
		return "", ErrInvalidKey
	}

	path := filepath.Join(b.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(b.root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}

	return path, nil
}

func (b *LocalBackend) Put(_ context.Context, key, localPath, _ string) error {
	dst, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(localPath, dst); err == nil {
		return nil
	}

	// rename fails across devices
	if err := copyFile(localPath, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}

	return os.Remove(localPath)
}

func (b *LocalBackend) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := b.resolve(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}

	return f, nil
}

func (b *LocalBackend) Delete(_ context.Context, key string) error {
	path, err := b.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open staged file: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy staged file: %w", err)
	}

	return out.Close()
}
