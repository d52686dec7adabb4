package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"casedesk/internal/app"
	"casedesk/internal/transport/http/response"
)

const (
	uploadField = "file"
	// Room for multipart boundaries and headers on top of the file itself.
	multipartOverhead = 1 << 20
)

type FileHandler struct {
	fileService  *app.FileService
	exposeErrors bool
}

func NewFileHandler(fileService *app.FileService, exposeErrors bool) *FileHandler {
	return &FileHandler{fileService: fileService, exposeErrors: exposeErrors}
}

func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.fileService.ListFiles()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to list files", err, h.exposeErrors)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"files": files})
}

func (h *FileHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.fileService.MaxUploadBytes()+multipartOverhead)

	header, err := c.FormFile(uploadField)
	if err != nil {
		if isBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, "File too large", err, h.exposeErrors)
			return
		}
		response.Error(c, http.StatusBadRequest, "No files were uploaded.", err, h.exposeErrors)
		return
	}

	content, err := header.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "File upload failed", err, h.exposeErrors)
		return
	}
	defer content.Close()

	saved, err := h.fileService.SaveFile(app.SaveFileInput{
		Name:    header.Filename,
		Content: content,
		Size:    header.Size,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrPayloadTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, "File too large", err, h.exposeErrors)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid file name", err, h.exposeErrors)
		default:
			response.Error(c, http.StatusInternalServerError, "File upload failed", err, h.exposeErrors)
		}
		return
	}

	response.OK(c, http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"fileName": saved.Name,
		"filePath": saved.Path,
	})
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	if err := h.fileService.DeleteFile(c.Param("filename")); err != nil {
		switch {
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, "File not found", err, h.exposeErrors)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid file name", err, h.exposeErrors)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to delete file", err, h.exposeErrors)
		}
		return
	}

	response.Message(c, http.StatusOK, "File deleted successfully")
}

func (h *FileHandler) ExtractText(c *gin.Context) {
	text, err := h.fileService.ExtractText(c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFileNotFound):
			response.Error(c, http.StatusNotFound, "File not found", err, h.exposeErrors)
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "Invalid file name", err, h.exposeErrors)
		case errors.Is(err, app.ErrUnsupportedType):
			response.Error(c, http.StatusUnsupportedMediaType, "Only PDF files have extractable text", err, h.exposeErrors)
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to extract text", err, h.exposeErrors)
		}
		return
	}

	response.OK(c, http.StatusOK, text)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	// multipart does not always wrap the reader error.
	return strings.Contains(err.Error(), "request body too large")
}
