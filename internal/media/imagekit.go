package media

import (
	"context"
	"strings"
	"time"

	"github.com/imagekit-developer/imagekit-go"
	"github.com/imagekit-developer/imagekit-go/api/uploader"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errcode"
	"resumebuilder/internal/metrics"
)

// imageKitAPI 是 SDK 上传接口的最小子集，测试中替换为假实现。
type imageKitAPI interface {
	Upload(ctx context.Context, file interface{}, param uploader.UploadParam) (*uploader.UploadResponse, error)
}

// ImageKitUploader 通过 ImageKit SDK 存储头像，返回带裁剪/抠图变换的访问地址。
type ImageKitUploader struct {
	api     imageKitAPI
	folder  string
	timeout time.Duration
}

// NewImageKitUploader 根据配置构造上传器。
func NewImageKitUploader(cfg config.ImageConfig) *ImageKitUploader {
	ik := imagekit.NewFromParams(imagekit.NewParams{
		PrivateKey:  cfg.PrivateKey,
		PublicKey:   cfg.PublicKey,
		UrlEndpoint: cfg.URLEndpoint,
	})
	return newImageKitUploader(ik.Uploader, cfg.Folder, cfg.Timeout)
}

func newImageKitUploader(api imageKitAPI, folder string, timeout time.Duration) *ImageKitUploader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ImageKitUploader{api: api, folder: folder, timeout: timeout}
}

// Upload streams img to ImageKit and returns the hosted URL.
func (u *ImageKitUploader) Upload(ctx context.Context, img Image) (string, error) {
	url, err := u.upload(ctx, img)
	metrics.ObserveImageUpload(config.ImageProviderImageKit, err)
	return url, err
}

func (u *ImageKitUploader) upload(ctx context.Context, img Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.api.Upload(ctx, img.File, uploader.UploadParam{
		FileName: uploadFileName,
		Folder:   u.folder,
	})
	if err != nil {
		return "", errcode.Wrap(errcode.Provider, err.Error(), err)
	}
	if resp == nil || resp.Data.Url == "" {
		return "", errcode.New(errcode.Provider, "imagekit response missing url")
	}
	return withTransformation(resp.Data.Url, PreTransformation(img.RemoveBackground)), nil
}

// withTransformation appends an ImageKit "tr" query parameter to a delivery URL.
func withTransformation(raw, chain string) string {
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "tr=" + chain
}
