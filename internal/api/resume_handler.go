package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/media"
	"resumebuilder/internal/resume"
)

const (
	msgResumeCreated = "Resume created successfully"
	msgResumeSaved   = "Saved successfully"
	msgResumeDeleted = "Resume deleted successfully"
	msgInvalidBody   = "Invalid request body"
	msgInvalidData   = "Invalid resume data"
)

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	resumes       *resume.Service
	maxImageBytes int64
}

// NewResumeHandler 构造 ResumeHandler。maxImageBytes <= 0 表示不限制头像大小。
func NewResumeHandler(resumes *resume.Service, maxImageBytes int64) *ResumeHandler {
	return &ResumeHandler{resumes: resumes, maxImageBytes: maxImageBytes}
}

type createResumeRequest struct {
	Title string `json:"title"`
}

// CreateResume 新建一份空白简历。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, msgInvalidBody)
		return
	}

	doc, err := h.resumes.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	h.replyWithResume(c, http.StatusCreated, msgResumeCreated, doc)
}

// GetResume 返回当前用户的一份简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	doc, err := h.resumes.Get(c.Request.Context(), userID, c.Param("resumeId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.replyWithResume(c, http.StatusOK, "", doc)
}

// GetPublicResume 返回已公开的简历，无需登录。
func (h *ResumeHandler) GetPublicResume(c *gin.Context) {
	doc, err := h.resumes.GetPublic(c.Request.Context(), c.Param("resumeId"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.replyWithResume(c, http.StatusOK, "", doc)
}

// ListResumes 返回当前用户的全部简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	docs, err := h.resumes.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		body, err := resume.Present(doc)
		if err != nil {
			respondError(c, err)
			return
		}
		items = append(items, body)
	}
	c.JSON(http.StatusOK, gin.H{"resumes": items})
}

// DeleteResume 删除当前用户的简历；记录不存在时同样返回成功。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	if _, err := h.resumes.Delete(c.Request.Context(), userID, c.Param("resumeId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msgResumeDeleted})
}

type updateResumeRequest struct {
	ResumeID   string          `json:"resumeId"`
	ResumeData json.RawMessage `json:"resumeData"`
}

// UpdateResume 合并简历字段，可选地同时上传头像。
// 支持 JSON 请求体，或带 image 文件的 multipart 表单；removeBackground 只在上传头像时生效。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var (
		resumeID string
		patch    map[string]any
		img      *media.Image
		err      error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		resumeID = c.PostForm("resumeId")
		patch, err = decodeResumeData([]byte(c.PostForm("resumeData")))
		if err != nil {
			BadRequest(c, msgInvalidData)
			return
		}

		header, ferr := c.FormFile("image")
		switch {
		case errors.Is(ferr, http.ErrMissingFile):
		case ferr != nil:
			BadRequest(c, msgInvalidBody)
			return
		default:
			file, oerr := h.openImage(header)
			if oerr != nil {
				BadRequest(c, oerr.Error())
				return
			}
			defer file.Close()
			img = &media.Image{
				File:             file,
				Size:             header.Size,
				ContentType:      header.Header.Get("Content-Type"),
				RemoveBackground: media.ParseTruthy(c.PostForm("removeBackground")),
			}
		}
	} else {
		var req updateResumeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, msgInvalidBody)
			return
		}
		resumeID = req.ResumeID
		patch, err = decodeResumeData(req.ResumeData)
		if err != nil {
			BadRequest(c, msgInvalidData)
			return
		}
	}

	doc, err := h.resumes.Update(c.Request.Context(), userID, resumeID, patch, img)
	if err != nil {
		respondError(c, err)
		return
	}

	h.replyWithResume(c, http.StatusOK, msgResumeSaved, doc)
}

func (h *ResumeHandler) openImage(header *multipart.FileHeader) (multipart.File, error) {
	if h.maxImageBytes > 0 && header.Size > h.maxImageBytes {
		return nil, errors.New("image is too large")
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return file, nil
}

func (h *ResumeHandler) replyWithResume(c *gin.Context, status int, message string, doc resume.Document) {
	body, err := resume.Present(doc)
	if err != nil {
		respondError(c, err)
		return
	}
	payload := gin.H{"resume": body}
	if message != "" {
		payload["message"] = message
	}
	c.JSON(status, payload)
}

// decodeResumeData 接受 JSON 对象，或内容为 JSON 对象的字符串（multipart 表单的写法）。
// 空值视为空补丁。
func decodeResumeData(raw []byte) (map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, err
		}
		return decodeResumeData([]byte(inner))
	}

	var patch map[string]any
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, err
	}
	if patch == nil {
		patch = map[string]any{}
	}
	return patch, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
