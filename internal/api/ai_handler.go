package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/resume"
)

// AIHandler 暴露文本润色与简历解析接口。
type AIHandler struct {
	gateway *ai.Gateway
	resumes *resume.Service
}

// NewAIHandler 构造 AIHandler。
func NewAIHandler(gateway *ai.Gateway, resumes *resume.Service) *AIHandler {
	return &AIHandler{gateway: gateway, resumes: resumes}
}

type enhanceRequest struct {
	UserContent string `json:"userContent"`
}

// EnhanceProfessionalSummary 润色个人简介。
func (h *AIHandler) EnhanceProfessionalSummary(c *gin.Context) {
	h.enhance(c, h.gateway.EnhanceProfessionalSummary)
}

// EnhanceJobDescription 润色单条工作经历描述。
func (h *AIHandler) EnhanceJobDescription(c *gin.Context) {
	h.enhance(c, h.gateway.EnhanceJobDescription)
}

func (h *AIHandler) enhance(c *gin.Context, rewrite func(context.Context, string) (string, error)) {
	var req enhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, msgInvalidBody)
		return
	}

	enhanced, err := rewrite(c.Request.Context(), req.UserContent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enhancedContent": enhanced})
}

type uploadResumeRequest struct {
	ResumeText string `json:"resumeText"`
	Title      string `json:"title"`
}

// UploadResume 将纯文本简历交给模型解析，并保存为当前用户的新简历。
func (h *AIHandler) UploadResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req uploadResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		BadRequest(c, "Resume text is required")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		BadRequest(c, "Resume title is required")
		return
	}

	ctx := c.Request.Context()
	fields, err := h.gateway.ExtractResume(ctx, req.ResumeText)
	if err != nil {
		respondError(c, err)
		return
	}

	id, err := h.resumes.CreateFromExtraction(ctx, userID, req.Title, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumeId": id})
}
