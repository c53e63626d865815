package services

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminResolver decides admin rights from ADMIN_USER_IDS first, then the
// users.role column.
type AdminResolver struct {
	db  *gorm.DB
	ids map[string]struct{}
}

func NewAdminResolver(db *gorm.DB, ids []string) *AdminResolver {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return &AdminResolver{db: db, ids: set}
}

func (r *AdminResolver) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if _, ok := r.ids[userID.String()]; ok {
		return true, nil
	}
	var user models.User
	err := r.db.WithContext(ctx).Select("id", "role").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}
