package client

import "time"

type User struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Provider string `json:"provider"`
}

// Session is an issued bearer token. ExpiresAt comes from the token's exp claim.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      User
}

type Profile struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	FullName        string    `json:"fullName"`
	CollegeName     string    `json:"collegeName"`
	CollegeAddress  string    `json:"collegeAddress"`
	FieldOfStudy    string    `json:"fieldOfStudy"`
	GraduationYear  int       `json:"graduationYear"`
	Bio             string    `json:"bio"`
	LinkedInURL     string    `json:"linkedinUrl"`
	GitHubURL       string    `json:"githubUrl"`
	PortfolioURL    string    `json:"portfolioUrl"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CollegeImageURL string    `json:"collegeImageUrl"`
	IDCardImageURL  string    `json:"idCardImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// File is an attachment to upload with a profile update.
type File struct {
	Name string
	Data []byte
}

// ProfileUpdate is sent as multipart form data. Nil optional fields are left
// out of the form so the server keeps their stored values.
type ProfileUpdate struct {
	FullName       string
	CollegeName    string
	CollegeAddress string
	FieldOfStudy   string
	GraduationYear int

	Bio          *string
	LinkedInURL  *string
	GitHubURL    *string
	PortfolioURL *string

	// Keyed by attachment name: profileImage, collegeImage, idCardImage.
	Replace map[string]File
	Clear   []string
}

type DirectoryQuery struct {
	Page           int
	Limit          int
	CollegeName    string
	GraduationYear int
}

type DirectoryPage struct {
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"totalPages"`
	Profiles   []Profile `json:"profiles"`
}

type Update struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Details   string    `json:"details"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewUpdate struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Details string `json:"details"`
	Link    string `json:"link,omitempty"`
}

type Trend struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewTrend struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tag         string `json:"tag"`
	Link        string `json:"link,omitempty"`
}

type Order struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// Payment is the client's view of the caller's payment state.
type Payment struct {
	Status string
	Order  *Order
}
