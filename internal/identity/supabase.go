package identity

import (
	"context"
	"errors"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/supabase"
)

type SupabaseProvider struct {
	client *supabase.Client
}

func NewSupabaseProvider(client *supabase.Client) *SupabaseProvider {
	return &SupabaseProvider{client: client}
}

func (p *SupabaseProvider) SignUp(ctx context.Context, email, password, fullName string) (*ExternalUser, error) {
	u, err := p.client.SignUp(ctx, email, password, fullName)
	if err != nil {
		return nil, translate(err)
	}
	if u.FullName == "" {
		u.FullName = fullName
	}
	return toExternal(u, "email"), nil
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*ExternalUser, error) {
	u, err := p.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, translate(err)
	}
	return toExternal(u, "email"), nil
}

func (p *SupabaseProvider) VerifyAccessToken(ctx context.Context, accessToken string) (*ExternalUser, error) {
	u, err := p.client.GetUser(ctx, accessToken)
	if err != nil {
		return nil, translate(err)
	}
	return toExternal(u, "google"), nil
}

func toExternal(u *supabase.User, fallbackProvider string) *ExternalUser {
	provider := u.Provider
	if provider == "" {
		provider = fallbackProvider
	}
	return &ExternalUser{ID: u.ID, Email: u.Email, FullName: u.FullName, Provider: provider}
}

func translate(err error) error {
	var sbErr *supabase.Error
	if errors.As(err, &sbErr) && sbErr.ClientError() {
		return &RejectedError{Message: sbErr.Message, StatusCode: sbErr.StatusCode}
	}
	return err
}
