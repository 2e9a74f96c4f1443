package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dutchcoders/go-clamd"

	"resumebuilder/internal/errcode"
)

// StreamScanner is satisfied by *clamd.Clamd.
type StreamScanner interface {
	ScanStream(r io.Reader, abortChan chan bool) (chan *clamd.ScanResult, error)
}

// Uploader 是头像上传的统一接口。
type Uploader interface {
	Upload(ctx context.Context, img Image) (string, error)
}

// ScanningUploader 在上传前用 clamd 扫描文件，发现病毒时直接拒绝。
type ScanningUploader struct {
	next     Uploader
	scanner  StreamScanner
	maxBytes int64
	logger   *slog.Logger
}

// NewScanningUploader wraps next with a clamd scan. maxBytes caps the
// in-memory copy needed to replay the stream after scanning.
func NewScanningUploader(next Uploader, scanner StreamScanner, maxBytes int64, logger *slog.Logger) *ScanningUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanningUploader{next: next, scanner: scanner, maxBytes: maxBytes, logger: logger}
}

func (u *ScanningUploader) Upload(ctx context.Context, img Image) (string, error) {
	data, err := io.ReadAll(io.LimitReader(img.File, u.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > u.maxBytes {
		return "", errcode.New(errcode.Validation, "image is too large")
	}

	abortChan := make(chan bool)
	defer close(abortChan)

	results, err := u.scanner.ScanStream(bytes.NewReader(data), abortChan)
	if err != nil {
		u.logger.Error("scan image", slog.Any("error", err))
		return "", errcode.Wrap(errcode.Provider, "failed to scan file", err)
	}
	for result := range results {
		if result.Status != clamd.RES_OK {
			u.logger.Warn("image rejected by clamd",
				slog.String("status", result.Status),
				slog.String("description", result.Description),
			)
			return "", errcode.New(errcode.Validation, "malicious file detected")
		}
	}

	img.File = bytes.NewReader(data)
	img.Size = int64(len(data))
	return u.next.Upload(ctx, img)
}
