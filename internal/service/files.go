package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
	"github.com/and161185/pocketfile/internal/storage"
)

// MaxUploadSize caps a single upload at 100 MiB.
const MaxUploadSize int64 = 100 << 20

// PublicPrefix is the URL path under which stored objects are served.
const PublicPrefix = "/uploads/"

const maxExtLen = 16

// Upload is a single incoming file.
type Upload struct {
	Body         io.Reader
	OriginalName string
	Size         int64 // declared size, -1 when unknown
	Version      string
	ProjectID    *int64
	UploaderID   int64
}

// FileService manages file metadata together with the stored bytes.
type FileService interface {
	List(ctx context.Context) ([]model.FileView, error)
	Get(ctx context.Context, id int64) (*model.FileView, error)
	// Delete removes the stored object and then the metadata row.
	Delete(ctx context.Context, id int64) error
	// Upload stores the bytes and records the metadata; no row survives a failed store
	// and no object survives a failed insert.
	Upload(ctx context.Context, in Upload) (*model.File, error)
	// Open streams a stored object by its storage name.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type FileServiceImpl struct {
	files   repository.FileRepository
	store   storage.Store
	log     *zap.Logger
	maxSize int64
	now     func() time.Time
	newID   func() (uuid.UUID, error)
}

// NewFileService constructs FileService over metadata, a blob store and a logger.
func NewFileService(files repository.FileRepository, store storage.Store, log *zap.Logger) *FileServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileServiceImpl{
		files:   files,
		store:   store,
		log:     log,
		maxSize: MaxUploadSize,
		now:     time.Now,
		newID:   uuid.NewV4,
	}
}

// List returns all files with their display fields, newest first.
func (s *FileServiceImpl) List(ctx context.Context) ([]model.FileView, error) {
	return s.files.List(ctx)
}

// Get returns one file with its display fields.
func (s *FileServiceImpl) Get(ctx context.Context, id int64) (*model.FileView, error) {
	if id <= 0 {
		return nil, errs.ErrNotFound
	}
	return s.files.Get(ctx, id)
}

// Delete removes the stored object, then the row. A missing object is not an error.
func (s *FileServiceImpl) Delete(ctx context.Context, id int64) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, f.Filename); err != nil {
		return fmt.Errorf("removing stored object: %w", err)
	}
	if err := s.files.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("file deleted", zap.Int64("id", id), zap.String("name", f.Filename))
	return nil
}

// Open streams a stored object; invalid names are reported as not found.
func (s *FileServiceImpl) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !storage.ValidName(name) {
		return nil, errs.ErrNotFound
	}
	return s.store.Open(ctx, name)
}

// Upload validates the request, streams the bytes into the store and records the row.
func (s *FileServiceImpl) Upload(ctx context.Context, in Upload) (*model.File, error) {
	orig := displayName(in.OriginalName)
	if in.Body == nil || orig == "" {
		return nil, invalid("no file uploaded")
	}
	if len(orig) > maxColumnLen {
		return nil, invalid("file name is too long")
	}
	if in.Size > s.maxSize {
		return nil, s.tooLarge()
	}
	version := strings.TrimSpace(in.Version)
	if version == "" {
		return nil, invalid("version is required")
	}
	if len(version) > maxVersionLen {
		return nil, invalid("version is too long")
	}
	if in.ProjectID != nil && *in.ProjectID <= 0 {
		return nil, invalid("project_id must be a positive integer")
	}

	name, err := s.storageName(orig)
	if err != nil {
		return nil, err
	}

	n, err := s.store.Put(ctx, name, io.LimitReader(in.Body, s.maxSize+1))
	if err != nil {
		s.discard(name)
		return nil, fmt.Errorf("storing upload: %w", err)
	}
	if n > s.maxSize {
		s.discard(name)
		return nil, s.tooLarge()
	}

	rec, err := s.files.Create(ctx, model.File{
		Filename:         name,
		OriginalFilename: orig,
		FilePath:         PublicPrefix + name,
		FileSize:         n,
		ProjectID:        in.ProjectID,
		Version:          version,
		UploadedBy:       &in.UploaderID,
	})
	if err != nil {
		s.discard(name)
		return nil, err
	}

	s.log.Info("file uploaded",
		zap.Int64("id", rec.ID),
		zap.String("name", name),
		zap.Int64("size", n),
		zap.Int64("uploaded_by", in.UploaderID),
	)
	return rec, nil
}

func (s *FileServiceImpl) tooLarge() error {
	return fmt.Errorf("%w: file exceeds the %d MiB limit", errs.ErrTooLarge, s.maxSize>>20)
}

// discard removes an object left behind by a failed upload. It runs on a fresh
// context so a cancelled request still gets cleaned up.
func (s *FileServiceImpl) discard(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.log.Error("orphaned upload", zap.String("name", name), zap.Error(err))
	}
}

// storageName returns <unix-millis>-<uuid><ext> with a lower-cased, alphanumeric extension.
func (s *FileServiceImpl) storageName(orig string) (string, error) {
	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generating name: %w", err)
	}
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), id, cleanExt(orig)), nil
}

// displayName strips any client-side directory from name.
func displayName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
