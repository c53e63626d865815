package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LocalProvider keeps bcrypt hashes in the credentials table. It is used when
// no hosted provider is configured and cannot verify OAuth access tokens.
type LocalProvider struct {
	db   *gorm.DB
	cost int
}

func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db, cost: bcrypt.DefaultCost}
}

// WithCost lowers the bcrypt cost, for tests.
func (p *LocalProvider) WithCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password, fullName string) (*ExternalUser, error) {
	email = normalizeEmail(email)

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.Credential{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}
	if count > 0 {
		return nil, &RejectedError{Message: "User already registered", StatusCode: http.StatusUnprocessableEntity}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := models.Credential{Email: email, PasswordHash: string(hash), FullName: fullName}
	if err := p.db.WithContext(ctx).Create(&cred).Error; err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}
	return &ExternalUser{ID: cred.ID.String(), Email: email, FullName: fullName, Provider: "email"}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*ExternalUser, error) {
	var cred models.Credential
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}
	return &ExternalUser{ID: cred.ID.String(), Email: cred.Email, FullName: cred.FullName, Provider: "email"}, nil
}

func (p *LocalProvider) VerifyAccessToken(context.Context, string) (*ExternalUser, error) {
	return nil, &RejectedError{Message: "OAuth sign-in is not configured", StatusCode: http.StatusUnauthorized}
}

func invalidCredentials() error {
	return &RejectedError{Message: "Invalid login credentials", StatusCode: http.StatusBadRequest}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
