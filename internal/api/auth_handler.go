package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumebuilder/internal/api/middleware"
	"resumebuilder/internal/auth"
	"resumebuilder/internal/database"
)

// AuthHandler 处理注册、登录与当前用户查询。
type AuthHandler struct {
	db          *gorm.DB
	authService *auth.AuthService
	logger      *slog.Logger
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(db *gorm.DB, authService *auth.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		db:          db,
		authService: authService,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserResponse(user database.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

// Register 创建新用户账号并直接返回访问令牌。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Missing required fields")
		return
	}

	ctx := c.Request.Context()
	email := normalizeEmail(req.Email)
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	var existing database.User
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		logger.Info("register conflict: user already exists")
		Conflict(c, "User already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("register lookup failed", slog.Any("error", err))
		BadRequest(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Info("hash password failed", slog.Any("error", err))
		BadRequest(c, err.Error())
		return
	}

	user := database.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := h.db.WithContext(ctx).Create(&user).Error; err != nil {
		logger.Error("create user failed", slog.Any("error", err))
		BadRequest(c, "internal error")
		return
	}

	logger.Info("user registered", slog.Uint64("user_id", uint64(user.ID)))
	h.replyWithToken(c, http.StatusCreated, "User created successfully", user)
}

// Login 校验邮箱与口令并返回访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Missing required fields")
		return
	}

	ctx := c.Request.Context()
	email := normalizeEmail(req.Email)
	logger := h.loggerFromContext(c).With(slog.String("email", email))

	var user database.User
	if err := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info("login failed: user not found")
			Unauthorized(c)
			return
		}
		logger.Error("login query failed", slog.Any("error", err))
		BadRequest(c, "internal error")
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Info("login failed: password mismatch", slog.Uint64("user_id", uint64(user.ID)))
		Unauthorized(c)
		return
	}

	h.replyWithToken(c, http.StatusOK, "Login successful", user)
}

// CurrentUser 返回令牌对应的用户信息。
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var user database.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "User not found")
			return
		}
		h.loggerFromContext(c).Error("load current user failed", slog.Any("error", err))
		BadRequest(c, "internal error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}

func (h *AuthHandler) replyWithToken(c *gin.Context, status int, message string, user database.User) {
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		h.loggerFromContext(c).Error("generate token failed", slog.Any("error", err))
		BadRequest(c, "internal error")
		return
	}

	c.JSON(status, gin.H{
		"message": message,
		"token":   token,
		"user":    newUserResponse(user),
	})
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger, ok := middleware.RequestLogger(c); ok {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
