package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/config"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateService_CreateAndListNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUpdateService(db, config.DeletePolicyAny, NewAdminResolver(db, nil))
	ctx := context.Background()
	owner := uuid.New()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, owner, &dto.CreateUpdateRequest{Title: title, Type: "event", Details: "d"})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := svc.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)
	assert.Equal(t, "first", all[2].Title)

	page, err := svc.List(ctx, &dto.FeedQuery{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Title)
}

func TestUpdateService_CreateValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUpdateService(db, config.DeletePolicyAny, NewAdminResolver(db, nil))

	_, err := svc.Create(context.Background(), uuid.New(), &dto.CreateUpdateRequest{Title: "t", Type: "event"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.Create(context.Background(), uuid.New(), &dto.CreateUpdateRequest{Title: "t", Type: "e", Details: "d", Link: "nope"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestUpdateService_DeleteAnyPolicy(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewUpdateService(db, "", NewAdminResolver(db, nil))
	ctx := context.Background()

	u, err := svc.Create(ctx, uuid.New(), &dto.CreateUpdateRequest{Title: "t", Type: "e", Details: "d"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, uuid.New(), u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New(), u.ID), apperror.ErrNotFound)
}

func TestUpdateService_DeleteOwnerPolicy(t *testing.T) {
	db := testutil.NewTestDB(t)
	owner := createUser(t, db, "owner@example.com")
	other := createUser(t, db, "other@example.com")
	admin := createUser(t, db, "admin@example.com")
	require.NoError(t, db.Model(admin).Update("role", models.RoleAdmin).Error)

	svc := NewUpdateService(db, config.DeletePolicyOwner, NewAdminResolver(db, nil))
	ctx := context.Background()

	u1, err := svc.Create(ctx, owner.ID, &dto.CreateUpdateRequest{Title: "t", Type: "e", Details: "d"})
	require.NoError(t, err)
	u2, err := svc.Create(ctx, owner.ID, &dto.CreateUpdateRequest{Title: "t2", Type: "e", Details: "d"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, other.ID, u1.ID), apperror.ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, owner.ID, u1.ID))
	assert.NoError(t, svc.Delete(ctx, admin.ID, u2.ID))
}

func TestAdminResolver_ConfiguredIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	id := uuid.New()
	r := NewAdminResolver(db, []string{id.String()})

	ok, err := r.IsAdmin(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAdmin(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTrendService_CreateAndList(t *testing.T) {
	svc := NewTrendService(testutil.NewTestDB(t))
	ctx := context.Background()
	author := uuid.New()

	tr, err := svc.Create(ctx, author, &dto.CreateTrendRequest{Title: "Go 1.24", Description: "generic aliases", Tag: "go", Link: "https://go.dev"})
	require.NoError(t, err)
	require.NotNil(t, tr.UserID)
	assert.Equal(t, author, *tr.UserID)

	_, err = svc.Create(ctx, uuid.Nil, &dto.CreateTrendRequest{Title: "t", Description: "d"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	list, err := svc.List(ctx, &dto.FeedQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
