// Package identity puts the hosted auth provider and the built-in
// bcrypt provider behind one interface.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// ExternalUser is an account as the provider knows it.
type ExternalUser struct {
	ID       string
	Email    string
	FullName string
	Provider string
}

type Provider interface {
	SignUp(ctx context.Context, email, password, fullName string) (*ExternalUser, error)
	SignIn(ctx context.Context, email, password string) (*ExternalUser, error)
	VerifyAccessToken(ctx context.Context, accessToken string) (*ExternalUser, error)
}

// RejectedError means the provider answered and refused the request.
// Any other error from a Provider is a transport or server failure.
type RejectedError struct {
	Message    string
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("identity provider rejected request: %s", e.Message)
}

func IsRejected(err error) (*RejectedError, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
