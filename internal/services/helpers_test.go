package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/identity"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/payment"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/session"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeProvider is an in-memory identity.Provider.
type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]fakeAccount
	tokens    map[string]*identity.ExternalUser
	next      int
	transport error
}

type fakeAccount struct {
	user     identity.ExternalUser
	password string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts: make(map[string]fakeAccount),
		tokens:   make(map[string]*identity.ExternalUser),
	}
}

func (f *fakeProvider) SignUp(_ context.Context, email, password, fullName string) (*identity.ExternalUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transport != nil {
		return nil, f.transport
	}
	if _, ok := f.accounts[email]; ok {
		return nil, &identity.RejectedError{Message: "User already registered", StatusCode: 422}
	}
	f.next++
	u := identity.ExternalUser{ID: fmt.Sprintf("ext-%d", f.next), Email: email, FullName: fullName, Provider: "email"}
	f.accounts[email] = fakeAccount{user: u, password: password}
	return &u, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, password string) (*identity.ExternalUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transport != nil {
		return nil, f.transport
	}
	acc, ok := f.accounts[email]
	if !ok || acc.password != password {
		return nil, &identity.RejectedError{Message: "Invalid login credentials", StatusCode: 400}
	}
	u := acc.user
	return &u, nil
}

func (f *fakeProvider) VerifyAccessToken(_ context.Context, token string) (*identity.ExternalUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.transport != nil {
		return nil, f.transport
	}
	u, ok := f.tokens[token]
	if !ok {
		return nil, &identity.RejectedError{Message: "invalid JWT", StatusCode: 401}
	}
	cp := *u
	return &cp, nil
}

func (f *fakeProvider) addAccount(email, password, fullName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.accounts[email] = fakeAccount{
		user:     identity.ExternalUser{ID: fmt.Sprintf("ext-%d", f.next), Email: email, FullName: fullName},
		password: password,
	}
}

var errTransport = errors.New("dial tcp: connection refused")

func testIssuer() *session.Issuer {
	return session.NewIssuer("test-secret-0123456789", time.Hour)
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test " + email, Email: email, Provider: models.ProviderLocal, Role: models.RoleUser}
	require.NoError(t, db.Create(u).Error)
	return u
}

// fakeGateway records orders instead of calling the provider.
type fakeGateway struct {
	err    error
	orders []*payment.Order
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*payment.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	o := &payment.Order{
		ID:       fmt.Sprintf("order_%d", len(g.orders)+1),
		Entity:   "order",
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders = append(g.orders, o)
	return o, nil
}

// memStore is an in-memory storage.ObjectStore.
type memStore struct {
	objects map[string][]byte
	err     error
}

func newMemStore() *memStore { return &memStore{objects: make(map[string][]byte)} }

func (m *memStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.objects[key] = data
	return "https://cdn.test/" + key, nil
}
