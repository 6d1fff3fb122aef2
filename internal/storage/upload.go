package storage

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadSize = 5 << 20 // 5 MiB

var (
	ErrFileTooLarge    = errors.New("file exceeds the 5MB size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

var allowedContentTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

// kindPrefixes maps an upload kind to its object-key folder. Unknown
// kinds fall back to uploads/.
var kindPrefixes = map[string]string{
	"profile_picture": "profile_pictures",
	"business_logo":   "business_logos",
	"business_cover":  "business_covers",
	"deal_image":      "deal_images",
}

func validateFile(file *multipart.FileHeader) error {
	if file.Size > maxUploadSize {
		return ErrFileTooLarge
	}
	if !allowedContentTypes[file.Header.Get("Content-Type")] {
		return ErrUnsupportedType
	}
	return nil
}

// objectKey builds a collision-free key: <kind folder>/<uuid><ext>.
func objectKey(kind, filename string) string {
	prefix, ok := kindPrefixes[kind]
	if !ok {
		prefix = "uploads"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
}

// Uploader is the storage dependency of the upload handler; satisfied
// by R2Client.
type Uploader interface {
	UploadFile(ctx context.Context, key string, file *multipart.FileHeader) (string, error)
}

type Handler struct {
	uploader Uploader
}

func NewHandler(uploader Uploader) *Handler {
	return &Handler{uploader: uploader}
}

// Upload accepts a multipart file plus an optional "kind" field and
// returns the stored object's public URL.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	if err := validateFile(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := objectKey(c.PostForm("kind"), file.Filename)
	url, err := h.uploader.UploadFile(c.Request.Context(), key, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
