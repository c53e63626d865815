package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type DirectoryService struct {
	db *gorm.DB
}

func NewDirectoryService(db *gorm.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// List pages through profiles in creation order. Zero page and limit fall
// back to 1 and 10; limit is capped at 100.
func (s *DirectoryService) List(ctx context.Context, q *dto.DirectoryQuery) (*dto.DirectoryResponse, error) {
	if err := validation.Struct(q); err != nil {
		return nil, err
	}
	page, limit := q.Page, q.Limit
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	filter := func(db *gorm.DB) *gorm.DB {
		if q.CollegeName != "" {
			db = db.Where("college_name = ?", q.CollegeName)
		}
		if q.GraduationYear != 0 {
			db = db.Where("graduation_year = ?", q.GraduationYear)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count profiles: %w", err)
	}

	profiles := make([]models.Profile, 0, limit)
	err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return &dto.DirectoryResponse{
		Total:      total,
		Page:       page,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		Profiles:   profiles,
	}, nil
}
