package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"familyhub/internal/utils"
	"familyhub/pkg/types"

	"github.com/sirupsen/logrus"
)

type Folder string

const (
	FolderReceipts     Folder = "receipts"
	FolderAttachments  Folder = "attachments"
	FolderDocuments    Folder = "documents"
	FolderFamilyPhotos Folder = "family_photos"

	folderTemp = "temp"
)

var folders = []Folder{FolderReceipts, FolderAttachments, FolderDocuments, FolderFamilyPhotos}

// Backend holds committed files under keys such as "receipts/<id>.pdf".
type Backend interface {
	// Put takes ownership of the staged file at localPath.
	Put(ctx context.Context, key, localPath, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete succeeds when the key does not exist.
	Delete(ctx context.Context, key string) error
}

// StagedFile is an upload waiting in the temp folder to be committed.
type StagedFile struct {
	Path        string
	Name        string
	Size        int64
	ContentType string
}

func (f *StagedFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Manager moves uploads from staging into their final folder and removes
// files that are no longer referenced.
type Manager struct {
	tempDir string
	backend Backend
	logger  *logrus.Logger
}

func NewManager(uploadDir string, backend Backend, logger *logrus.Logger) (*Manager, error) {
	tempDir := filepath.Join(uploadDir, folderTemp)
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}

	return &Manager{
		tempDir: tempDir,
		backend: backend,
		logger:  logger,
	}, nil
}

// Stage copies r into the temp folder.
func (m *Manager) Stage(name, contentType string, r io.Reader) (*StagedFile, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	f, err := os.CreateTemp(m.tempDir, "upload-*"+strings.ToLower(filepath.Ext(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &StagedFile{
		Path:        f.Name(),
		Name:        name,
		Size:        size,
		ContentType: contentType,
	}, nil
}

func (m *Manager) StageUpload(header *multipart.FileHeader) (*StagedFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	return m.Stage(header.Filename, header.Header.Get("Content-Type"), file)
}

// Discard removes a staged file that will not be committed.
func (m *Manager) Discard(staged *StagedFile) {
	if staged == nil {
		return
	}
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.logger.WithError(err).WithField("path", staged.Path).Warn("failed to discard staged upload")
	}
}

// Commit moves a staged file into folder under a fresh random name that keeps
// the original extension, and returns its key.
func (m *Manager) Commit(ctx context.Context, staged *StagedFile, folder Folder) (string, error) {
	if !slices.Contains(folders, folder) {
		return "", fmt.Errorf("unknown upload folder %q", folder)
	}

	key := string(folder) + "/" + utils.NanoID() + staged.Ext()
	if err := m.backend.Put(ctx, key, staged.Path, staged.ContentType); err != nil {
		return "", fmt.Errorf("failed to commit %s: %w", staged.Name, err)
	}

	return key, nil
}

// Replace commits staged and hands the new key to persist. When persist fails
// the new file is purged and the old one kept; otherwise the old file is
// purged. A failed purge of the old file is only logged.
func (m *Manager) Replace(ctx context.Context, oldKey string, staged *StagedFile, folder Folder, persist func(newKey string) error) (string, error) {
	newKey, err := m.Commit(ctx, staged, folder)
	if err != nil {
		return "", err
	}

	if err := persist(newKey); err != nil {
		m.PurgeQuietly(ctx, newKey)
		return "", err
	}

	if oldKey != "" && oldKey != newKey {
		m.PurgeQuietly(ctx, oldKey)
	}

	return newKey, nil
}

// Purge deletes a committed file. A missing file is not an error.
func (m *Manager) Purge(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return m.backend.Delete(ctx, key)
}

func (m *Manager) PurgeQuietly(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := m.Purge(ctx, key); err != nil {
			m.logger.WithError(err).WithField("key", key).Error("failed to purge stored file")
		}
	}
}

// Open returns types.ErrNotFound when the file is gone.
func (m *Manager) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if strings.TrimSpace(key) == "" {
		return nil, types.ErrNotFound
	}
	return m.backend.Open(ctx, key)
}

// DownloadName is the file name offered to clients: the logical name plus the
// stored file's extension unless the name already ends with it.
func DownloadName(name, key string) string {
	name = strings.TrimSpace(name)
	ext := filepath.Ext(key)
	if name == "" {
		return filepath.Base(key)
	}
	if ext == "" || strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}
