package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumebuilder/internal/ai"
	"resumebuilder/internal/auth"
	"resumebuilder/internal/config"
	"resumebuilder/internal/database"
	"resumebuilder/internal/media"
	"resumebuilder/internal/resume"
)

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

type fakeUploader struct {
	body             string
	removeBackground bool
}

func (f *fakeUploader) Upload(_ context.Context, img media.Image) (string, error) {
	b, _ := io.ReadAll(img.File)
	f.body = string(b)
	f.removeBackground = img.RemoveBackground
	return "https://ik.imagekit.io/demo/resume.jpg", nil
}

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	completer *fakeCompleter
	images    *fakeUploader
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	privatePEM, publicPEM, err := auth.GenerateKeyPairPEM(2048)
	require.NoError(t, err)
	authService, err := auth.NewAuthService(privatePEM, publicPEM, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		db:        newTestDB(t),
		completer: &fakeCompleter{},
		images:    &fakeUploader{},
	}
	env.router = NewRouter(config.APIConfig{AllowOrigin: "*"}, nil)
	RegisterRoutes(env.router, Dependencies{
		DB:            env.db,
		Resumes:       resume.NewService(env.db, env.images, nil),
		AI:            ai.NewGateway(env.completer, "test-model"),
		Auth:          authService,
		MaxImageBytes: 1 << 20,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) register(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": "Ada", "email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decodeBody(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) createResume(t *testing.T, token, title string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/resumes/create", token, gin.H{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Resume created successfully", body["message"])
	id, _ := body["resume"].(map[string]any)["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/resumes/create"},
		{http.MethodPut, "/api/resumes/update"},
		{http.MethodDelete, "/api/resumes/delete/abc"},
		{http.MethodGet, "/api/resumes/get/abc"},
		{http.MethodGet, "/api/users/resumes"},
		{http.MethodGet, "/api/users/data"},
		{http.MethodPost, "/api/ai/upload-resume"},
	} {
		w := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/users/register", "", gin.H{
		"name": "Ada", "email": "ADA@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/login", "", gin.H{"email": "ada@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decodeBody(t, w)["token"].(string)

	w = env.do(t, http.MethodGet, "/api/users/data", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestResumeLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	other := env.register(t, "bob@example.com")
	id := env.createResume(t, token, "Backend Engineer")

	w := env.do(t, http.MethodGet, "/api/resumes/get/"+id, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Resume not found", decodeBody(t, w)["message"])

	w = env.do(t, http.MethodGet, "/api/resumes/public/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/resumes/update", token, gin.H{
		"resumeId": id,
		"resumeData": gin.H{
			"public":               true,
			"accent_color":         "#3B82F6",
			"professional_summary": "Builds services",
			"project":              []gin.H{{"name": "cli", "type": "oss", "description": "tool"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "Saved successfully", body["message"])
	saved := body["resume"].(map[string]any)
	assert.Equal(t, "#3B82F6", saved["accent_color"])
	assert.Equal(t, "Builds services", saved["professional_summary"])
	assert.Len(t, saved["project"], 1)
	for _, key := range []string{"accentColor", "professionalSummary", "projects", "created_at", "updated_at"} {
		assert.NotContains(t, saved, key)
	}

	w = env.do(t, http.MethodGet, "/api/resumes/public/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decodeBody(t, w)["resume"].(map[string]any)
	assert.Equal(t, "Backend Engineer", public["title"])

	w = env.do(t, http.MethodGet, "/api/users/resumes", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["resumes"], 1)

	w = env.do(t, http.MethodDelete, "/api/resumes/delete/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Resume deleted successfully", decodeBody(t, w)["message"])

	w = env.do(t, http.MethodGet, "/api/resumes/get/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/resumes/delete/"+id, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateResumeRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")

	w := env.do(t, http.MethodPost, "/api/resumes/create", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Resume title is required", decodeBody(t, w)["message"])
}

func TestUpdateResumeMultipartWithImage(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createResume(t, token, "Photo")

	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)
	require.NoError(t, form.WriteField("resumeId", id))
	require.NoError(t, form.WriteField("resumeData", `{"personal_info":{"full_name":"Ada Lovelace"}}`))
	require.NoError(t, form.WriteField("removeBackground", "yes"))
	part, err := form.CreateFormFile("image", "me.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/resumes/update", buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	info := decodeBody(t, w)["resume"].(map[string]any)["personal_info"].(map[string]any)
	assert.Equal(t, "Ada Lovelace", info["full_name"])
	assert.Equal(t, "https://ik.imagekit.io/demo/resume.jpg", info["image"])
	assert.Equal(t, "jpeg-bytes", env.images.body)
	assert.True(t, env.images.removeBackground)
}

func TestUpdateResumeRejectsInvalidData(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	id := env.createResume(t, token, "Draft")

	w := env.do(t, http.MethodPut, "/api/resumes/update", token, gin.H{"resumeId": id, "resumeData": "{not json"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid resume data", decodeBody(t, w)["message"])

	w = env.do(t, http.MethodPut, "/api/resumes/update", token, gin.H{"resumeId": uuid.NewString(), "resumeData": gin.H{"title": "x"}})
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, env.db.Model(&database.Resume{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnhanceEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.completer.reply = "Seasoned engineer."

	w := env.do(t, http.MethodPost, "/api/ai/enhance-pro-sum", "", gin.H{"userContent": "i code"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Seasoned engineer.", decodeBody(t, w)["enhancedContent"])

	w = env.do(t, http.MethodPost, "/api/ai/enhance-job-desc", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", decodeBody(t, w)["message"])
}

func TestUploadResumeCreatesExtractedRecord(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.completer.reply = `{"professionalSummary":"Summary","skills":["go"],"personal_info":{"full_name":"Ada"}}`

	w := env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"resumeText": "Ada\nGo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Resume title is required", decodeBody(t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"title": "Imported"})
	assert.Equal(t, "Resume text is required", decodeBody(t, w)["message"])

	w = env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"resumeText": "Ada\nGo", "title": "Imported"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := decodeBody(t, w)["resumeId"].(string)
	require.NotEmpty(t, id)

	w = env.do(t, http.MethodGet, "/api/resumes/get/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decodeBody(t, w)["resume"].(map[string]any)
	assert.Equal(t, "Imported", saved["title"])
	assert.Equal(t, "Summary", saved["professional_summary"])
}

func TestUploadResumeRejectsUnusableModelOutput(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.createResume(t, token, "Existing")

	for _, reply := range []string{"not json", `["a","b"]`, `{"education":{"degree":"BSc"}}`} {
		env.completer.reply = reply
		w := env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"resumeText": "Ada\nGo", "title": "Imported"})
		assert.Equal(t, http.StatusBadRequest, w.Code, reply)
		assert.NotEmpty(t, decodeBody(t, w)["message"], reply)
	}

	env.completer.reply = "not json"
	w := env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"resumeText": "Ada\nGo", "title": "Imported"})
	assert.Contains(t, decodeBody(t, w)["message"], "failed to parse AI response")

	var count int64
	require.NoError(t, env.db.Model(&database.Resume{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUploadResumeCoercesScalarSlips(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ada@example.com")
	env.completer.reply = `{"education":[{"gpa":3.8}],"experience":[{"company":"Acme","is_current":"false"}]}`

	w := env.do(t, http.MethodPost, "/api/ai/upload-resume", token, gin.H{"resumeText": "Ada\nGo", "title": "Imported"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := decodeBody(t, w)["resumeId"].(string)

	w = env.do(t, http.MethodGet, "/api/resumes/get/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	saved := decodeBody(t, w)["resume"].(map[string]any)
	education := saved["education"].([]any)
	require.Len(t, education, 1)
	assert.Equal(t, "3.8", education[0].(map[string]any)["gpa"])
	experience := saved["experience"].([]any)
	require.Len(t, experience, 1)
	assert.Equal(t, false, experience[0].(map[string]any)["is_current"])
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "resumebuilder_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/resumes/create", nil)
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRestrictedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(config.APIConfig{AllowOrigin: "https://app.example.com"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Correlation-Id", w.Header().Get("Access-Control-Expose-Headers"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
