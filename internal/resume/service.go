package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"resumebuilder/internal/database"
	"resumebuilder/internal/errcode"
	"resumebuilder/internal/media"
)

const (
	msgTitleRequired    = "Resume title is required"
	msgIDRequired       = "Resume id is required"
	msgNotFound         = "Resume not found"
	msgNotFoundOrHidden = "Resume not found or not public"
)

// ImageUploader 上传头像并返回可访问的 URL。
type ImageUploader interface {
	Upload(ctx context.Context, img media.Image) (string, error)
}

// Service 提供按用户隔离的简历读写，以及公开简历的只读访问。
type Service struct {
	db     *gorm.DB
	images ImageUploader
	logger *slog.Logger
}

// NewService 构造 Service。images 为 nil 时拒绝带图片的更新。
func NewService(db *gorm.DB, images ImageUploader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, images: images, logger: logger}
}

// Create 新建一份只包含标题的空白简历。
func (s *Service) Create(ctx context.Context, ownerID uint, title string) (Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, errcode.New(errcode.Validation, msgTitleRequired)
	}

	doc := Document{ID: uuid.NewString(), UserID: ownerID, Title: title}
	if err := s.insert(ctx, doc); err != nil {
		return Document{}, err
	}
	return s.Get(ctx, ownerID, doc.ID)
}

// CreateFromExtraction persists a resume built from AI extraction output.
// fields use the internal naming; owner and title always come from the caller.
// Scalar type slips are coerced, structural mismatches are a Provider error.
func (s *Service) CreateFromExtraction(ctx context.Context, ownerID uint, title string, fields map[string]any) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", errcode.New(errcode.Validation, msgTitleRequired)
	}

	doc := Document{}
	if err := doc.merge(stripImmutable(lenientScalars(fields))); err != nil {
		return "", errcode.Wrap(errcode.Provider, "AI response does not match the resume format", err)
	}
	doc.ID = uuid.NewString()
	doc.UserID = ownerID
	doc.Title = title

	if err := s.insert(ctx, doc); err != nil {
		return "", err
	}
	return doc.ID, nil
}

// Get 返回属于 ownerID 的简历。
func (s *Service) Get(ctx context.Context, ownerID uint, id string) (Document, error) {
	row, err := s.find(ctx, "id = ? AND user_id = ?", id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, errcode.New(errcode.NotFound, msgNotFound)
		}
		return Document{}, fmt.Errorf("query resume: %w", err)
	}
	return toDocument(row), nil
}

// GetPublic 返回公开的简历，不校验所有者。
func (s *Service) GetPublic(ctx context.Context, id string) (Document, error) {
	row, err := s.find(ctx, "id = ? AND public = ?", id, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Document{}, errcode.New(errcode.NotFound, msgNotFoundOrHidden)
		}
		return Document{}, fmt.Errorf("query public resume: %w", err)
	}
	return toDocument(row), nil
}

// List 按最近更新时间倒序返回用户的全部简历。
func (s *Service) List(ctx context.Context, ownerID uint) ([]Document, error) {
	var rows []database.Resume
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, toDocument(row))
	}
	return docs, nil
}

// Update merges patch (external naming) into the owner's resume. When img is
// non-nil the image is uploaded first and personal_info.image points at it.
func (s *Service) Update(ctx context.Context, ownerID uint, id string, patch map[string]any, img *media.Image) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, errcode.New(errcode.Validation, msgIDRequired)
	}

	doc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return Document{}, err
	}

	if err := doc.merge(stripImmutable(ToInternal(patch))); err != nil {
		return Document{}, errcode.Wrap(errcode.Validation, "Invalid resume data", err)
	}
	if doc.Title == "" {
		return Document{}, errcode.New(errcode.Validation, msgTitleRequired)
	}

	if img != nil {
		if s.images == nil {
			return Document{}, errcode.New(errcode.Provider, "image upload is not configured")
		}
		url, err := s.images.Upload(ctx, *img)
		if err != nil {
			return Document{}, err
		}
		doc.PersonalInfo.Image = url
	}

	result := s.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(columns(toRow(doc)))
	if result.Error != nil {
		return Document{}, fmt.Errorf("update resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return Document{}, errcode.New(errcode.NotFound, msgNotFound)
	}

	return s.Get(ctx, ownerID, id)
}

// Delete removes the owner's resume. A missing or foreign id is not an error;
// the returned flag reports whether a row was actually removed.
func (s *Service) Delete(ctx context.Context, ownerID uint, id string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&database.Resume{})
	if result.Error != nil {
		return false, fmt.Errorf("delete resume: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.Info("delete resume matched no rows",
			slog.String("resume_id", id),
			slog.Uint64("user_id", uint64(ownerID)),
		)
	}
	return result.RowsAffected > 0, nil
}

func (s *Service) insert(ctx context.Context, doc Document) error {
	row := toRow(doc)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create resume: %w", err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, query string, args ...any) (database.Resume, error) {
	var row database.Resume
	err := s.db.WithContext(ctx).Where(query, args...).First(&row).Error
	return row, err
}
