package repository

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"casedesk/internal/model"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid file name")
	ErrTooLarge    = errors.New("file exceeds size limit")
)

const tempPrefix = ".upload-"

// FileRepository stores uploads as a flat directory. There is no manifest:
// a directory scan is the listing.
type FileRepository struct {
	mu           sync.RWMutex
	root         string
	publicPrefix string
}

func NewFileRepository(root, publicPrefix string) *FileRepository {
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &FileRepository{
		root:         filepath.Clean(root),
		publicPrefix: strings.TrimRight(publicPrefix, "/"),
	}
}

func (r *FileRepository) Root() string {
	return r.root
}

// EnsureRoot creates the storage directory if it is absent.
func (r *FileRepository) EnsureRoot() (string, error) {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir %s failed: %w", r.root, err)
	}
	return r.root, nil
}

// ValidateName rejects anything that is not a single visible path element.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, "/\\\x00"):
		return ErrInvalidName
	case strings.HasPrefix(name, "."):
		return ErrInvalidName
	case filepath.IsAbs(name):
		return ErrInvalidName
	}
	return nil
}

func (r *FileRepository) resolve(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	full := filepath.Join(r.root, name)
	rel, err := filepath.Rel(r.root, full)
	if err != nil || rel != name {
		return "", ErrInvalidName
	}
	return full, nil
}

func (r *FileRepository) List() ([]model.UploadedFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.UploadedFile{}, nil
		}
		return nil, fmt.Errorf("read upload dir failed: %w", err)
	}

	files := make([]model.UploadedFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, r.describe(entry.Name(), info))
	}
	return files, nil
}

func (r *FileRepository) Stat(name string) (model.UploadedFile, error) {
	full, err := r.resolve(name)
	if err != nil {
		return model.UploadedFile{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.UploadedFile{}, ErrNotFound
		}
		return model.UploadedFile{}, fmt.Errorf("stat file failed: %w", err)
	}
	if info.IsDir() {
		return model.UploadedFile{}, ErrNotFound
	}
	return r.describe(name, info), nil
}

// Save streams content into a hidden temp file and renames it over name, so
// readers never see a partial upload. An existing file of the same name is
// replaced.
func (r *FileRepository) Save(name string, content io.Reader, maxBytes int64) (model.UploadedFile, error) {
	full, err := r.resolve(name)
	if err != nil {
		return model.UploadedFile{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.EnsureRoot(); err != nil {
		return model.UploadedFile{}, err
	}

	tmp, err := os.CreateTemp(r.root, tempPrefix+"*")
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("create temp file failed: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	src := content
	if maxBytes > 0 {
		src = io.LimitReader(content, maxBytes+1)
	}
	written, err := io.Copy(tmp, src)
	if err != nil {
		cleanup()
		return model.UploadedFile{}, fmt.Errorf("write upload failed: %w", err)
	}
	if maxBytes > 0 && written > maxBytes {
		cleanup()
		return model.UploadedFile{}, ErrTooLarge
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return model.UploadedFile{}, fmt.Errorf("close temp file failed: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return model.UploadedFile{}, fmt.Errorf("chmod upload failed: %w", err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		_ = os.Remove(tmpName)
		return model.UploadedFile{}, fmt.Errorf("move upload into place failed: %w", err)
	}

	info, err := os.Stat(full)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("stat saved file failed: %w", err)
	}
	return r.describe(name, info), nil
}

func (r *FileRepository) Delete(name string) error {
	full, err := r.resolve(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("stat file failed: %w", err)
	}
	if info.IsDir() {
		return ErrNotFound
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("delete file failed: %w", err)
	}
	return nil
}

// Open returns a reader for a stored file. The caller closes it.
func (r *FileRepository) Open(name string) (*os.File, error) {
	full, err := r.resolve(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file failed: %w", err)
	}
	return f, nil
}

// Writable reports whether the root exists (creating it if needed) and
// accepts new files.
func (r *FileRepository) Writable() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.EnsureRoot(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(r.root, tempPrefix+"probe-*")
	if err != nil {
		return fmt.Errorf("upload dir not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func (r *FileRepository) describe(name string, info fs.FileInfo) model.UploadedFile {
	file := model.UploadedFile{
		Name:         name,
		Path:         path.Join(r.publicPrefix, name),
		Size:         info.Size(),
		LastModified: info.ModTime(),
	}
	if mt, err := mimetype.DetectFile(filepath.Join(r.root, name)); err == nil {
		file.ContentType = mt.String()
	}
	return file
}
