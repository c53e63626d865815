package dto

import "github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"

type CreateUpdateRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Type    string `json:"type" validate:"required,max=50"`
	Details string `json:"details" validate:"required"`
	Link    string `json:"link" validate:"omitempty,url"`
}

type CreateTrendRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Tag         string `json:"tag" validate:"required,max=50"`
	Link        string `json:"link" validate:"omitempty,url"`
}

// FeedQuery pages a feed listing. Zero values mean no limit and no offset.
type FeedQuery struct {
	Limit  int `query:"limit" validate:"gte=0"`
	Offset int `query:"offset" validate:"gte=0"`
}

type UpdateResponse struct {
	Message string         `json:"message"`
	Update  *models.Update `json:"update"`
}

type TrendResponse struct {
	Message string        `json:"message"`
	Trend   *models.Trend `json:"trend"`
}
