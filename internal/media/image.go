package media

import (
	"io"
	"strings"
)

// Image 是一次头像上传的输入。
type Image struct {
	File             io.Reader
	Size             int64
	ContentType      string
	RemoveBackground bool
}

const (
	uploadFileName = "resume.jpg"

	// profileTransformation 以人脸为中心裁剪为 300x300。
	profileTransformation = "w-300,h-300,fo-face,z-0.75"
	backgroundRemoval     = "e-bgremove"
)

// PreTransformation returns the ImageKit pre-transformation chain for a profile image.
func PreTransformation(removeBackground bool) string {
	if removeBackground {
		return profileTransformation + "," + backgroundRemoval
	}
	return profileTransformation
}

// ParseTruthy interprets form and JSON flag values such as "yes", "true" or "1".
// Empty values and false, 0, no and off are false.
func ParseTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "0", "no", "off", "null", "undefined":
		return false
	default:
		return true
	}
}
