package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errcode"
	"resumebuilder/internal/metrics"
)

const msgMissingFields = "Missing required fields"

// ChatCompleter is satisfied by *openai.Client.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway 封装 chat completion 调用：摘要润色、工作描述润色、简历结构化抽取。
type Gateway struct {
	client ChatCompleter
	model  string
}

// NewClient 基于配置创建 OpenAI 兼容客户端。
func NewClient(cfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	return openai.NewClientWithConfig(clientCfg)
}

func NewGateway(client ChatCompleter, model string) *Gateway {
	return &Gateway{client: client, model: model}
}

// EnhanceProfessionalSummary rewrites a professional summary.
func (g *Gateway) EnhanceProfessionalSummary(ctx context.Context, text string) (string, error) {
	return g.enhance(ctx, "enhance_summary", summarySystemPrompt, text)
}

// EnhanceJobDescription rewrites one experience entry's description.
func (g *Gateway) EnhanceJobDescription(ctx context.Context, text string) (string, error) {
	return g.enhance(ctx, "enhance_job_description", jobDescriptionSystemPrompt, text)
}

// ExtractResume asks the model for a JSON object describing rawText. The
// result uses the internal field names; only JSON-object-ness is checked here.
// resume.Service.CreateFromExtraction coerces scalar slips and rejects
// structural mismatches when it maps the fields onto a resume.
func (g *Gateway) ExtractResume(ctx context.Context, rawText string) (map[string]any, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, errcode.New(errcode.Validation, "Resume text is required")
	}

	content, err := g.complete(ctx, "extract_resume", openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: extractionUserPrompt + rawText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return nil, errcode.Wrap(errcode.Provider, fmt.Sprintf("failed to parse AI response: %v", err), err)
	}
	if fields == nil {
		return nil, errcode.New(errcode.Provider, "failed to parse AI response: expected a JSON object")
	}
	return fields, nil
}

func (g *Gateway) enhance(ctx context.Context, operation, systemPrompt, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errcode.New(errcode.Validation, msgMissingFields)
	}
	return g.complete(ctx, operation, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
}

func (g *Gateway) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (content string, err error) {
	defer func() { metrics.ObserveAIRequest(operation, err) }()

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errcode.Wrap(errcode.Provider, providerMessage(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", errcode.New(errcode.Provider, "AI provider returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func providerMessage(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
