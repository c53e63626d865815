package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/config"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func pageFeed(q *dto.FeedQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Order("created_at DESC, id DESC")
		if q == nil {
			return db
		}
		if q.Limit > 0 {
			db = db.Limit(q.Limit)
		}
		if q.Offset > 0 {
			db = db.Offset(q.Offset)
		}
		return db
	}
}

type UpdateService struct {
	db     *gorm.DB
	policy string
	admins *AdminResolver
}

// NewUpdateService builds the campus-updates feed. policy is
// config.DeletePolicyAny or config.DeletePolicyOwner.
func NewUpdateService(db *gorm.DB, policy string, admins *AdminResolver) *UpdateService {
	if policy != config.DeletePolicyOwner {
		policy = config.DeletePolicyAny
	}
	return &UpdateService{db: db, policy: policy, admins: admins}
}

func (s *UpdateService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateUpdateRequest) (*models.Update, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	update := models.Update{
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Type:    strings.TrimSpace(req.Type),
		Details: req.Details,
		Link:    strings.TrimSpace(req.Link),
	}
	if err := s.db.WithContext(ctx).Create(&update).Error; err != nil {
		return nil, fmt.Errorf("failed to create update: %w", err)
	}
	return &update, nil
}

// List returns updates newest first. With no paging the whole feed is returned.
func (s *UpdateService) List(ctx context.Context, q *dto.FeedQuery) ([]models.Update, error) {
	if q != nil {
		if err := validation.Struct(q); err != nil {
			return nil, err
		}
	}
	updates := make([]models.Update, 0)
	if err := s.db.WithContext(ctx).Scopes(pageFeed(q)).Find(&updates).Error; err != nil {
		return nil, fmt.Errorf("failed to list updates: %w", err)
	}
	return updates, nil
}

func (s *UpdateService) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	var update models.Update
	err := s.db.WithContext(ctx).First(&update, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound("Update not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load update: %w", err)
	}

	if s.policy == config.DeletePolicyOwner && update.UserID != callerID {
		isAdmin, err := s.admins.IsAdmin(ctx, callerID)
		if err != nil {
			return fmt.Errorf("failed to check admin: %w", err)
		}
		if !isAdmin {
			return apperror.Forbidden("You can only delete your own updates")
		}
	}

	res := s.db.WithContext(ctx).Delete(&models.Update{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete update: %w", res.Error)
	}
	// Lost a race with another delete or the retention job.
	if res.RowsAffected == 0 {
		return apperror.NotFound("Update not found")
	}
	return nil
}

type TrendService struct {
	db *gorm.DB
}

func NewTrendService(db *gorm.DB) *TrendService {
	return &TrendService{db: db}
}

func (s *TrendService) Create(ctx context.Context, userID uuid.UUID, req *dto.CreateTrendRequest) (*models.Trend, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	trend := models.Trend{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tag:         strings.TrimSpace(req.Tag),
		Link:        strings.TrimSpace(req.Link),
	}
	if userID != uuid.Nil {
		trend.UserID = &userID
	}
	if err := s.db.WithContext(ctx).Create(&trend).Error; err != nil {
		return nil, fmt.Errorf("failed to create trend: %w", err)
	}
	return &trend, nil
}

func (s *TrendService) List(ctx context.Context, q *dto.FeedQuery) ([]models.Trend, error) {
	if q != nil {
		if err := validation.Struct(q); err != nil {
			return nil, err
		}
	}
	trends := make([]models.Trend, 0)
	if err := s.db.WithContext(ctx).Scopes(pageFeed(q)).Find(&trends).Error; err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}
	return trends, nil
}
