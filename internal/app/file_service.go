package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"casedesk/internal/metrics"
	"casedesk/internal/model"
	"casedesk/internal/pkg/pdfextract"
	"casedesk/internal/repository"
)

type FileService struct {
	fileRepo       *repository.FileRepository
	maxUploadBytes int64
	logger         *slog.Logger
}

type SaveFileInput struct {
	Name    string
	Content io.Reader
	// Size is the declared length; -1 when unknown.
	Size int64
}

type FileText struct {
	FileName string `json:"fileName"`
	Text     string `json:"text"`
}

func NewFileService(fileRepo *repository.FileRepository, maxUploadBytes int64, logger *slog.Logger) *FileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileService{
		fileRepo:       fileRepo,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (s *FileService) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// ResolveStorageRoot makes sure the upload directory exists and returns it.
func (s *FileService) ResolveStorageRoot() (string, error) {
	root, err := s.fileRepo.EnsureRoot()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return root, nil
}

func (s *FileService) ListFiles() ([]model.UploadedFile, error) {
	files, err := s.fileRepo.List()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return files, nil
}

func (s *FileService) SaveFile(input SaveFileInput) (*model.UploadedFile, error) {
	if s.maxUploadBytes > 0 && input.Size > s.maxUploadBytes {
		metrics.Uploads.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrPayloadTooLarge, input.Size, s.maxUploadBytes)
	}
	if err := repository.ValidateName(input.Name); err != nil {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: invalid file name %q", ErrInvalidInput, input.Name)
	}
	if input.Content == nil {
		metrics.Uploads.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: file content is required", ErrInvalidInput)
	}

	saved, err := s.fileRepo.Save(input.Name, input.Content, s.maxUploadBytes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTooLarge):
			metrics.Uploads.WithLabelValues("too_large").Inc()
			return nil, fmt.Errorf("%w: upload exceeds limit of %d bytes", ErrPayloadTooLarge, s.maxUploadBytes)
		case errors.Is(err, repository.ErrInvalidName):
			metrics.Uploads.WithLabelValues("invalid").Inc()
			return nil, fmt.Errorf("%w: invalid file name %q", ErrInvalidInput, input.Name)
		default:
			metrics.Uploads.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: %w", ErrStorage, err)
		}
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	metrics.UploadBytes.Add(float64(saved.Size))
	s.logger.Info("file saved", "name", saved.Name, "size", saved.Size)
	return &saved, nil
}

func (s *FileService) DeleteFile(name string) error {
	if err := s.fileRepo.Delete(name); err != nil {
		return s.mapLookupErr(name, err)
	}
	s.logger.Info("file deleted", "name", name)
	return nil
}

// ExtractText returns the text layer of a stored PDF.
func (s *FileService) ExtractText(name string) (*FileText, error) {
	info, err := s.fileRepo.Stat(name)
	if err != nil {
		return nil, s.mapLookupErr(name, err)
	}
	if !isPDF(info) {
		return nil, fmt.Errorf("%w: %s is not a PDF", ErrUnsupportedType, name)
	}

	f, err := s.fileRepo.Open(name)
	if err != nil {
		return nil, s.mapLookupErr(name, err)
	}
	defer f.Close()

	text, err := pdfextract.ExtractText(f, info.Size)
	if err != nil {
		if errors.Is(err, pdfextract.ErrNotPDF) {
			return nil, fmt.Errorf("%w: %s is not a PDF", ErrUnsupportedType, name)
		}
		return nil, fmt.Errorf("extract text from %s failed: %w", name, err)
	}
	return &FileText{FileName: name, Text: text}, nil
}

// StorageHealthy reports whether uploads can currently be written.
func (s *FileService) StorageHealthy() error {
	if err := s.fileRepo.Writable(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func (s *FileService) mapLookupErr(name string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrFileNotFound
	case errors.Is(err, repository.ErrInvalidName):
		return fmt.Errorf("%w: invalid file name %q", ErrInvalidInput, name)
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}

func isPDF(info model.UploadedFile) bool {
	return info.ContentType == "application/pdf" || strings.HasSuffix(strings.ToLower(info.Name), ".pdf")
}
