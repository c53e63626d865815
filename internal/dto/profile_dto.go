package dto

import "github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"

// ProfileForm is the text part of the multipart profile update.
type ProfileForm struct {
	FullName       string `form:"fullName" validate:"required"`
	CollegeName    string `form:"collegeName" validate:"required"`
	CollegeAddress string `form:"collegeAddress" validate:"required"`
	FieldOfStudy   string `form:"fieldOfStudy" validate:"required"`
	GraduationYear string `form:"graduationYear" validate:"required,number"`
	Bio            string `form:"bio"`
	LinkedInURL    string `form:"linkedinUrl"`
	GitHubURL      string `form:"githubUrl"`
	PortfolioURL   string `form:"portfolioUrl"`
}

type ProfileUpdateResponse struct {
	Message string          `json:"message"`
	Profile *models.Profile `json:"profile"`
}

type DirectoryQuery struct {
	Page           int    `query:"page" validate:"gte=0"`
	Limit          int    `query:"limit" validate:"gte=0"`
	CollegeName    string `query:"collegeName"`
	GraduationYear int    `query:"graduationYear" validate:"gte=0"`
}

type DirectoryResponse struct {
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Profiles   []models.Profile `json:"profiles"`
}
