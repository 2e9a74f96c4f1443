package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errcode"
	"resumebuilder/internal/metrics"
)

// ObjectStore is the subset of storage.Client used for self-hosted images.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	PublicURL(objectKey string) string
}

// MinIOUploader 将原图保存到 MinIO，不做裁剪与抠图。
type MinIOUploader struct {
	store  ObjectStore
	folder string
	logger *slog.Logger
}

func NewMinIOUploader(store ObjectStore, folder string, logger *slog.Logger) *MinIOUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &MinIOUploader{store: store, folder: strings.Trim(folder, "/"), logger: logger}
}

// Upload stores the original image and returns its public URL.
func (u *MinIOUploader) Upload(ctx context.Context, img Image) (string, error) {
	if img.RemoveBackground {
		u.logger.Warn("background removal is not supported by the minio image provider")
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := img.Size
	if size <= 0 {
		size = -1
	}

	objectKey := path.Join(u.folder, uuid.NewString()+extensionFor(contentType))
	_, err := u.store.UploadFile(ctx, objectKey, img.File, size, contentType)
	metrics.ObserveImageUpload(config.ImageProviderMinIO, err)
	if err != nil {
		return "", errcode.Wrap(errcode.Provider, "failed to store image", fmt.Errorf("upload %s: %w", objectKey, err))
	}
	return u.store.PublicURL(objectKey), nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
