package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/storage"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentKind string

const (
	AttachmentProfileImage AttachmentKind = "profileImage"
	AttachmentCollegeImage AttachmentKind = "collegeImage"
	AttachmentIDCardImage  AttachmentKind = "idCardImage"
)

// AttachmentKinds lists attachments in the order they are processed.
var AttachmentKinds = []AttachmentKind{
	AttachmentProfileImage,
	AttachmentCollegeImage,
	AttachmentIDCardImage,
}

type PatchOp int

const (
	PatchKeep PatchOp = iota
	PatchReplace
	PatchClear
)

type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentPatch says what happens to one attachment URL. The zero value keeps it.
type AttachmentPatch struct {
	Op   PatchOp
	File *Upload
}

func ReplaceAttachment(u *Upload) AttachmentPatch {
	return AttachmentPatch{Op: PatchReplace, File: u}
}

func ClearAttachment() AttachmentPatch {
	return AttachmentPatch{Op: PatchClear}
}

// ProfileInput is a full profile write. Nil optional fields keep their
// stored value; a pointer to "" clears it.
type ProfileInput struct {
	FullName       string `json:"fullName" validate:"required"`
	CollegeName    string `json:"collegeName" validate:"required"`
	CollegeAddress string `json:"collegeAddress" validate:"required"`
	FieldOfStudy   string `json:"fieldOfStudy" validate:"required"`
	GraduationYear int    `json:"graduationYear" validate:"gte=1900,lte=2100"`

	Bio          *string `json:"-"`
	LinkedInURL  *string `json:"-"`
	GitHubURL    *string `json:"-"`
	PortfolioURL *string `json:"-"`

	Attachments map[AttachmentKind]AttachmentPatch `json:"-"`
}

var allowedUploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type ProfileService struct {
	db    *gorm.DB
	store storage.ObjectStore
}

func NewProfileService(db *gorm.DB, store storage.ObjectStore) *ProfileService {
	return &ProfileService{db: db, store: store}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// Upsert creates or replaces the caller's profile. Attachments are uploaded
// before the row is written; a failed write leaves those objects orphaned.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, in *ProfileInput) (*models.Profile, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Select("id").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var profile models.Profile
	exists := true
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		exists = false
		profile = models.Profile{UserID: userID}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	for _, kind := range AttachmentKinds {
		patch := in.Attachments[kind]
		target := attachmentField(&profile, kind)
		switch patch.Op {
		case PatchReplace:
			url, err := s.upload(ctx, userID, kind, patch.File)
			if err != nil {
				return nil, err
			}
			*target = url
		case PatchClear:
			*target = ""
		}
	}

	profile.FullName = strings.TrimSpace(in.FullName)
	profile.CollegeName = strings.TrimSpace(in.CollegeName)
	profile.CollegeAddress = strings.TrimSpace(in.CollegeAddress)
	profile.FieldOfStudy = strings.TrimSpace(in.FieldOfStudy)
	profile.GraduationYear = in.GraduationYear
	applyOptional(&profile.Bio, in.Bio)
	applyOptional(&profile.LinkedInURL, in.LinkedInURL)
	applyOptional(&profile.GitHubURL, in.GitHubURL)
	applyOptional(&profile.PortfolioURL, in.PortfolioURL)

	if exists {
		err = s.db.WithContext(ctx).Save(&profile).Error
	} else {
		err = s.db.WithContext(ctx).Create(&profile).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return &profile, nil
}

func (s *ProfileService) validate(in *ProfileInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	optional := []struct {
		field string
		value *string
		tag   string
	}{
		{"bio", in.Bio, "max=2000"},
		{"linkedinUrl", in.LinkedInURL, "omitempty,url"},
		{"githubUrl", in.GitHubURL, "omitempty,url"},
		{"portfolioUrl", in.PortfolioURL, "omitempty,url"},
	}
	for _, o := range optional {
		if o.value == nil {
			continue
		}
		if err := validation.Var(o.field, strings.TrimSpace(*o.value), o.tag); err != nil {
			return err
		}
	}
	for kind, patch := range in.Attachments {
		if patch.Op == PatchReplace && (patch.File == nil || len(patch.File.Data) == 0) {
			return apperror.Validation(string(kind), string(kind)+" file is empty")
		}
	}
	return nil
}

func (s *ProfileService) upload(ctx context.Context, userID uuid.UUID, kind AttachmentKind, file *Upload) (string, error) {
	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(file.Data)
	}
	contentType, _, _ = strings.Cut(contentType, ";")
	if !allowedUploadTypes[contentType] {
		return "", apperror.Validation(string(kind), string(kind)+" must be an image or PDF")
	}

	key := fmt.Sprintf("profiles/%s/%s-%s%s", userID, kind, uuid.NewString(), strings.ToLower(filepath.Ext(file.Filename)))
	url, err := s.store.Put(ctx, key, contentType, file.Data)
	if err != nil {
		return "", apperror.Upstream("Failed to upload "+string(kind), err)
	}
	return url, nil
}

func attachmentField(p *models.Profile, kind AttachmentKind) *string {
	switch kind {
	case AttachmentCollegeImage:
		return &p.CollegeImageURL
	case AttachmentIDCardImage:
		return &p.IDCardImageURL
	default:
		return &p.ProfileImageURL
	}
}

func applyOptional(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
