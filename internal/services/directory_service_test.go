package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/apperror"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/dto"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/models"
	"github.com/ahmetcoskunkizilkaya/campusconnect/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedProfiles(t *testing.T, db *gorm.DB, n int, college string, year int) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < n; i++ {
		p := models.Profile{
			UserID:         uuid.New(),
			FullName:       fmt.Sprintf("Student %d", i),
			CollegeName:    college,
			CollegeAddress: "addr",
			FieldOfStudy:   "CS",
			GraduationYear: year,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&p).Error)
	}
}

func TestDirectoryList_PagesPartitionTheSet(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedProfiles(t, db, 7, "IIT Bombay", 2026)
	svc := NewDirectoryService(db)

	seen := map[uuid.UUID]bool{}
	for page := 1; page <= 3; page++ {
		resp, err := svc.List(context.Background(), &dto.DirectoryQuery{Page: page, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.Total)
		assert.Equal(t, 3, resp.TotalPages)
		assert.Equal(t, page, resp.Page)
		for _, p := range resp.Profiles {
			assert.False(t, seen[p.ID], "profile repeated across pages")
			seen[p.ID] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestDirectoryList_DefaultsAndFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedProfiles(t, db, 12, "IIT Bombay", 2026)
	seedProfiles(t, db, 2, "NIT Trichy", 2025)
	svc := NewDirectoryService(db)

	resp, err := svc.List(context.Background(), &dto.DirectoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Len(t, resp.Profiles, 10)
	assert.Equal(t, 2, resp.TotalPages)

	resp, err = svc.List(context.Background(), &dto.DirectoryQuery{CollegeName: "NIT Trichy"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.List(context.Background(), &dto.DirectoryQuery{GraduationYear: 2026, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.Total)
	assert.Len(t, resp.Profiles, 12)
}

func TestDirectoryList_EmptyAndInvalid(t *testing.T) {
	svc := NewDirectoryService(testutil.NewTestDB(t))

	resp, err := svc.List(context.Background(), &dto.DirectoryQuery{})
	require.NoError(t, err)
	assert.Zero(t, resp.Total)
	assert.Zero(t, resp.TotalPages)
	assert.NotNil(t, resp.Profiles)

	_, err = svc.List(context.Background(), &dto.DirectoryQuery{Page: -1})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
