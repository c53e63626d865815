package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/services"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	profiles  *services.ProfileService
	directory *services.DirectoryService
}

func NewProfileHandler(profiles *services.ProfileService, directory *services.DirectoryService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, directory: directory}
}

func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.Get(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// Update accepts multipart/form-data (or urlencoded without files). Optional
// text fields are only touched when present in the form; an attachment is
// replaced by a file part of the same name and cleared by remove_<name>=true.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return err
	}

	var form dto.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return apperror.Validation("", "Invalid form data")
	}
	if err := validation.Struct(&form); err != nil {
		return err
	}
	year, err := strconv.Atoi(form.GraduationYear)
	if err != nil {
		return apperror.Validation("graduationYear", "graduationYear must be a number")
	}

	in := &services.ProfileInput{
		FullName:       form.FullName,
		CollegeName:    form.CollegeName,
		CollegeAddress: form.CollegeAddress,
		FieldOfStudy:   form.FieldOfStudy,
		GraduationYear: year,
		Attachments:    make(map[services.AttachmentKind]services.AttachmentPatch),
	}
	if formHas(c, "bio") {
		in.Bio = &form.Bio
	}
	if formHas(c, "linkedinUrl") {
		in.LinkedInURL = &form.LinkedInURL
	}
	if formHas(c, "githubUrl") {
		in.GitHubURL = &form.GitHubURL
	}
	if formHas(c, "portfolioUrl") {
		in.PortfolioURL = &form.PortfolioURL
	}

	for _, kind := range services.AttachmentKinds {
		name := string(kind)
		if fh := formFile(c, name); fh != nil {
			upload, err := readUpload(fh)
			if err != nil {
				return err
			}
			in.Attachments[kind] = services.ReplaceAttachment(upload)
			continue
		}
		if c.FormValue("remove_"+name) == "true" {
			in.Attachments[kind] = services.ClearAttachment()
		}
	}

	profile, err := h.profiles.Upsert(c.UserContext(), userID, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.ProfileUpdateResponse{Message: "Profile updated successfully", Profile: profile})
}

func (h *ProfileHandler) Directory(c *fiber.Ctx) error {
	var q dto.DirectoryQuery
	if err := c.QueryParser(&q); err != nil {
		return apperror.Validation("", "Invalid query parameters")
	}

	resp, err := h.directory.List(c.UserContext(), &q)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func formHas(c *fiber.Ctx, key string) bool {
	if form, err := c.MultipartForm(); err == nil {
		_, ok := form.Value[key]
		return ok
	}
	return c.Request().PostArgs().Has(key)
}

func formFile(c *fiber.Ctx, key string) *multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	files := form.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func readUpload(fh *multipart.FileHeader) (*services.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
