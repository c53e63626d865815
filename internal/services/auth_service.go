package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/identity"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/session"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/validation"
	"gorm.io/gorm"
)

// AuthService mirrors identity-provider accounts into the users table and
// issues session tokens. Nothing is written locally until the provider has
// accepted the request.
type AuthService struct {
	db      *gorm.DB
	issuer  *session.Issuer
	idp     identity.Provider
	metrics *metrics.Collector
}

func NewAuthService(db *gorm.DB, issuer *session.Issuer, idp identity.Provider, m *metrics.Collector) *AuthService {
	return &AuthService{db: db, issuer: issuer, idp: idp, metrics: m}
}

func (s *AuthService) SignUp(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	ext, err := s.idp.SignUp(ctx, email, req.Password, fullName)
	if err != nil {
		s.metrics.RecordAuth("signup", false)
		return nil, providerError(err, true)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				ExternalID: &ext.ID,
				FullName:   fullName,
				Email:      email,
				Provider:   models.ProviderLocal,
				Role:       models.RoleUser,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		if user.ExternalID != nil && *user.ExternalID != ext.ID {
			return apperror.SignupRejected("User already registered")
		}
		user.ExternalID = &ext.ID
		user.FullName = fullName
		user.Provider = models.ProviderLocal
		return tx.Model(&user).Updates(map[string]any{
			"external_id": ext.ID,
			"full_name":   fullName,
			"provider":    models.ProviderLocal,
		}).Error
	})
	if err != nil {
		s.metrics.RecordAuth("signup", false)
		return nil, wrapDB("failed to create user", err)
	}

	s.metrics.RecordAuth("signup", true)
	return s.respond(&user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	ext, err := s.idp.SignIn(ctx, email, req.Password)
	if err != nil {
		s.metrics.RecordAuth("login", false)
		return nil, providerError(err, false)
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				ExternalID: &ext.ID,
				FullName:   placeholderName(ext),
				Email:      email,
				Provider:   models.ProviderLocal,
				Role:       models.RoleUser,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if user.ExternalID == nil {
			user.ExternalID = &ext.ID
			return tx.Model(&user).Update("external_id", ext.ID).Error
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordAuth("login", false)
		return nil, wrapDB("failed to load user", err)
	}

	s.metrics.RecordAuth("login", true)
	return s.respond(&user)
}

// GoogleSync exchanges a provider access token from the OAuth redirect for a
// session. Repeating it with the same token is a no-op apart from the new token.
func (s *AuthService) GoogleSync(ctx context.Context, req *dto.GoogleSyncRequest) (*dto.AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	ext, err := s.idp.VerifyAccessToken(ctx, req.AccessToken)
	if err != nil {
		s.metrics.RecordAuth("google_sync", false)
		if _, ok := identity.IsRejected(err); ok {
			return nil, apperror.InvalidToken("Invalid or expired access token")
		}
		return nil, apperror.Upstream("Authentication provider unavailable", err)
	}
	if ext.Email == "" {
		s.metrics.RecordAuth("google_sync", false)
		return nil, apperror.InvalidToken("Provider account has no email address")
	}
	email := normalizeEmail(ext.Email)
	fullName := placeholderName(ext)

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("external_id = ?", ext.ID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("email = ?", email).First(&user).Error
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{
				ExternalID: &ext.ID,
				FullName:   fullName,
				Email:      email,
				Provider:   models.ProviderGoogle,
				Role:       models.RoleUser,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}

		user.ExternalID = &ext.ID
		user.FullName = fullName
		user.Provider = models.ProviderGoogle
		return tx.Model(&user).Updates(map[string]any{
			"external_id": ext.ID,
			"full_name":   fullName,
			"provider":    models.ProviderGoogle,
		}).Error
	})
	if err != nil {
		s.metrics.RecordAuth("google_sync", false)
		return nil, wrapDB("failed to sync user", err)
	}

	s.metrics.RecordAuth("google_sync", true)
	return s.respond(&user)
}

func (s *AuthService) respond(user *models.User) (*dto.AuthResponse, error) {
	token, exp, err := s.issuer.Mint(user.ID.String())
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, ExpiresAt: exp, User: dto.NewUserResponse(user)}, nil
}

func providerError(err error, signup bool) error {
	if rej, ok := identity.IsRejected(err); ok {
		if signup {
			return apperror.SignupRejected(rej.Message)
		}
		return apperror.AuthFailure(rej.Message)
	}
	return apperror.Upstream("Authentication provider unavailable", err)
}

// wrapDB passes application errors through and wraps everything else.
func wrapDB(msg string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func placeholderName(ext *identity.ExternalUser) string {
	if name := strings.TrimSpace(ext.FullName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(ext.Email, "@")
	if local == "" {
		return "Student"
	}
	return local
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
