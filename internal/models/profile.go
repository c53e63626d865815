package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the one-to-one student extension of User.
type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	FullName       string    `gorm:"size:255;not null" json:"fullName"`
	CollegeName    string    `gorm:"size:255;not null;index" json:"collegeName"`
	CollegeAddress string    `gorm:"size:512;not null" json:"collegeAddress"`
	FieldOfStudy   string    `gorm:"size:255;not null" json:"fieldOfStudy"`
	GraduationYear int       `gorm:"not null;index" json:"graduationYear"`
	Bio            string    `gorm:"type:text" json:"bio"`

	LinkedInURL  string `gorm:"size:1024" json:"linkedinUrl"`
	GitHubURL    string `gorm:"size:1024" json:"githubUrl"`
	PortfolioURL string `gorm:"size:1024" json:"portfolioUrl"`

	ProfileImageURL string `gorm:"size:1024" json:"profileImageUrl"`
	CollegeImageURL string `gorm:"size:1024" json:"collegeImageUrl"`
	IDCardImageURL  string `gorm:"size:1024" json:"idCardImageUrl"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
